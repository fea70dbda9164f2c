package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/api"
	"dev.helix.quantum/internal/config"
	"dev.helix.quantum/internal/server"
	"dev.helix.quantum/internal/service"
)

func main() {
	httpMode := flag.Bool("http", false, "serve the HTTP API instead of the stdio tool server")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	svc := service.New(cfg, logger)

	if *httpMode {
		router := api.Router(svc, cfg, logger)
		addr := ":" + cfg.Server.Port
		logger.WithField("addr", addr).Info("Starting HTTP API")
		if err := router.Run(addr); err != nil {
			logger.WithError(err).Fatal("HTTP server failed")
		}
		return
	}

	logger.Info("Starting stdio tool server")
	if err := server.New(svc, logger).Run(context.Background()); err != nil {
		logger.WithError(err).Fatal("Stdio server failed")
	}
}
