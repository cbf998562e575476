package config

import (
	"flag"

	"github.com/dmitrijs2005/geokeeper/internal/dbx"
	"github.com/dmitrijs2005/geokeeper/internal/flagx"
)

var knownFlags = []string{
	"-driver", "-dsn", "-g", "-token", "-radius", "-expire",
	"-secret", "-ttl", "-s3-endpoint", "-s3-bucket", "-log-level", "-log-format",
}

// parseFlags overlays cfg with command-line flags. Unknown arguments are
// filtered out with flagx.FilterArgs so other flag sets can share os.Args.
// It panics on malformed values.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("geokeeper", flag.ContinueOnError)

	driver := fs.String("driver", string(cfg.DatabaseDriver), "database driver (sqlite or postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.GeofenceAddr, "g", cfg.GeofenceAddr, "geofence daemon address; empty runs an in-process simulator")
	fs.StringVar(&cfg.GeofenceToken, "token", cfg.GeofenceToken, "geofence daemon access token")
	fs.Float64Var(&cfg.GeofenceRadius, "radius", cfg.GeofenceRadius, "geofence radius in meters")
	fs.DurationVar(&cfg.GeofenceExpiration, "expire", cfg.GeofenceExpiration, "geofence expiration, 0 never expires")
	fs.StringVar(&cfg.SessionSecret, "secret", cfg.SessionSecret, "session signing secret")
	fs.DurationVar(&cfg.SessionTTL, "ttl", cfg.SessionTTL, "session lifetime")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3 endpoint for backups")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket for backups")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	cfg.DatabaseDriver = dbx.Dialect(*driver)
}
