package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/geokeeper/internal/client/config"
	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/client/mcpserver"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/client/storage"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.ResolveDataPaths(); err != nil {
		log.Fatalf("%v", err)
	}

	// stdout carries the protocol
	logger := logging.New(os.Stderr, "json", cfg.LogLevel)

	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer db.Close()

	store, err := reminders.NewStore(cfg.DatabaseDriver, db)
	if err != nil {
		log.Fatalf("%v", err)
	}
	repo := services.NewReminderRepository(store, logger)

	var (
		platform geofence.Platform
		provider geofence.Provider
	)
	if cfg.GeofenceAddr != "" {
		client, err := geofence.Dial(cfg.GeofenceAddr, cfg.GeofenceToken)
		if err != nil {
			log.Fatalf("error connecting to geofence daemon: %v", err)
		}
		defer client.Close()
		platform, provider = client, client
	} else {
		logger.Warn(ctx, "no geofence daemon configured, regions live only as long as this process")
		sim := geofence.NewSimulator()
		platform, provider = sim, sim
	}

	coord := geofence.NewCoordinator(platform, provider, repo, geofence.NewLogNotifier(logger),
		geofence.Options{Radius: cfg.GeofenceRadius, Expiration: cfg.GeofenceExpiration}, logger)

	s := mcpserver.NewServer(repo, coord, logger)
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		logger.Error(ctx, "mcp server stopped", "error", err)
		os.Exit(1)
	}
}
