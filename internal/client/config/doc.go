// Package config loads runtime configuration for the geokeeper binaries.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or GEOKEEPER_CONFIG.
//  3. Command-line flags.
//
// Durations in JSON use timex.Duration, so "24h" and integer nanoseconds are
// both accepted:
//
//	{
//	  "database_driver": "sqlite",
//	  "database_dsn": "geokeeper.db",
//	  "geofence_addr": "127.0.0.1:50061",
//	  "geofence_radius": 150,
//	  "session_ttl": "12h",
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "backups"}
//	}
package config
