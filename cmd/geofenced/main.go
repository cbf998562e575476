package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/geokeeper/internal/buildinfo"
	"github.com/dmitrijs2005/geokeeper/internal/client/config"
	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

const defaultAddr = "127.0.0.1:50061"

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	addr := cfg.GeofenceAddr
	if addr == "" {
		addr = defaultAddr
	}

	srv := geofence.NewGRPCServer(addr, geofence.NewSimulator(), cfg.GeofenceToken, logger)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
