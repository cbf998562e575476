// Package cli provides the interactive geokeeper command-line client.
//
// NewApp is the composition root: it opens the database, builds the
// reminder repository and the local auth service, connects to the geofence
// daemon (or runs an in-process simulator) and wires the list and save
// view-models. App.Run starts forwarding geofence enter events to the
// coordinator and blocks in the REPL.
//
// The REPL stands in for the screens: "list" is the reminders list, "new",
// "edit", "location" and "save" drive the save screen and its location
// picker, and "show" is the detail view opened by a notification.
package cli
