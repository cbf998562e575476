package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/geokeeper/internal/buildinfo"
	"github.com/dmitrijs2005/geokeeper/internal/client/cli"
	"github.com/dmitrijs2005/geokeeper/internal/client/config"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if err := cfg.ResolveDataPaths(); err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
