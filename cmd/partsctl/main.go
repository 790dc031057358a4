package main

import (
	"context"
	"fmt"
	"os"

	cliAdapter "parts-inventory/internal/adapters/cli"
	"parts-inventory/internal/app"
	"parts-inventory/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	cfg.SetupLogging()

	open := func(ctx context.Context) (app.ApplicationService, func(), error) {
		return app.Open(ctx, cfg)
	}
	if err := cliAdapter.New(cfg, open).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
