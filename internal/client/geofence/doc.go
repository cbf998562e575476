// Package geofence arms a monitored circular region for every reminder before
// it is persisted, and turns region-enter callbacks into notifications.
//
// # Ordering
//
// Coordinator.Arm runs permission, then location settings, then region
// registration. Any failure stops the chain and is returned to the caller,
// which must not persist the reminder. A persisted reminder therefore always
// has a live region.
//
// # Platforms
//
// Simulator is an in-process device: it tracks registered regions and the
// current position and raises enter events as the position moves. GRPCServer
// exposes a Simulator to other processes; GRPCClient is the matching
// Platform and Provider.
package geofence
