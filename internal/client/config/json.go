package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/geokeeper/internal/dbx"
	"github.com/dmitrijs2005/geokeeper/internal/flagx"
	"github.com/dmitrijs2005/geokeeper/internal/timex"
)

type jsonS3 struct {
	Region    *string `json:"region"`
	Endpoint  *string `json:"endpoint"`
	AccessKey *string `json:"access_key"`
	SecretKey *string `json:"secret_key"`
	Bucket    *string `json:"bucket"`
	Prefix    *string `json:"prefix"`
}

// JsonConfig is the on-disk shape of the configuration file. Absent keys
// leave the current value untouched.
type JsonConfig struct {
	DatabaseDriver     *string         `json:"database_driver"`
	DatabaseDSN        *string         `json:"database_dsn"`
	GeofenceAddr       *string         `json:"geofence_addr"`
	GeofenceToken      *string         `json:"geofence_token"`
	GeofenceRadius     *float64        `json:"geofence_radius"`
	GeofenceExpiration *timex.Duration `json:"geofence_expiration"`
	SessionSecret      *string         `json:"session_secret"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	S3                 *jsonS3         `json:"s3"`
	BackupPassphrase   *string         `json:"backup_passphrase"`
	LogLevel           *string         `json:"log_level"`
	LogFormat          *string         `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config (or
// GEOKEEPER_CONFIG). It panics on read or decode errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.DatabaseDriver != nil {
		cfg.DatabaseDriver = dbx.Dialect(*jc.DatabaseDriver)
	}
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.GeofenceAddr, jc.GeofenceAddr)
	set(&cfg.GeofenceToken, jc.GeofenceToken)
	set(&cfg.GeofenceRadius, jc.GeofenceRadius)
	if jc.GeofenceExpiration != nil {
		cfg.GeofenceExpiration = jc.GeofenceExpiration.Duration
	}
	set(&cfg.SessionSecret, jc.SessionSecret)
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if s := jc.S3; s != nil {
		set(&cfg.S3.Region, s.Region)
		set(&cfg.S3.Endpoint, s.Endpoint)
		set(&cfg.S3.AccessKey, s.AccessKey)
		set(&cfg.S3.SecretKey, s.SecretKey)
		set(&cfg.S3.Bucket, s.Bucket)
		set(&cfg.S3.Prefix, s.Prefix)
	}
	set(&cfg.BackupPassphrase, jc.BackupPassphrase)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
