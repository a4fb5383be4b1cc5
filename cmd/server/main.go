package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/unicampus/internal/buildinfo"
	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/dmitrijs2005/unicampus/internal/server"
	"github.com/dmitrijs2005/unicampus/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
