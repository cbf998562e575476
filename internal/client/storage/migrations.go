package storage

import "embed"

// Migrations holds the goose migrations, one directory per dialect.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS
