package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/dbx"
	"github.com/dmitrijs2005/geokeeper/internal/filex"
)

const memoryDSN = ":memory:"

// S3 addresses the bucket used for reminder backups.
type S3 struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Config holds runtime settings for the geokeeper binaries.
//
// GeofenceAddr empty means the CLI runs an in-process simulator instead of
// dialing the geofence daemon.
type Config struct {
	DatabaseDriver dbx.Dialect
	DatabaseDSN    string

	GeofenceAddr       string
	GeofenceToken      string
	GeofenceRadius     float64
	GeofenceExpiration time.Duration

	SessionSecret string
	SessionTTL    time.Duration

	S3               S3
	BackupPassphrase string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with defaults suitable for a local run.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = dbx.DialectSQLite
	c.DatabaseDSN = "geokeeper.db"
	c.GeofenceAddr = ""
	c.GeofenceToken = ""
	c.GeofenceRadius = 100
	c.GeofenceExpiration = 0
	c.SessionSecret = "geokeeper-local-secret"
	c.SessionTTL = 24 * time.Hour
	c.S3 = S3{Region: "us-east-1", Prefix: "reminders"}
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// flags. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// ResolveDataPaths places a relative SQLite database file in the per-user
// data directory, creating it if needed. Other drivers are left alone.
func (c *Config) ResolveDataPaths() error {
	if c.DatabaseDriver != dbx.DialectSQLite || c.DatabaseDSN == memoryDSN || filepath.IsAbs(c.DatabaseDSN) {
		return nil
	}
	dir, err := filex.EnsureDataDir("")
	if err != nil {
		return err
	}
	c.DatabaseDSN = filepath.Join(dir, c.DatabaseDSN)
	return nil
}
