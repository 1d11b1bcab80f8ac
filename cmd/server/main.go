package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitas-games/armory/internal/config"
	"github.com/gravitas-games/armory/internal/logging"
	"github.com/gravitas-games/armory/internal/server"
	"github.com/gravitas-games/armory/pkg/inventory"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	log.WithField("path", configPath).Info("Configuration loaded")

	catalog, err := inventory.LoadCatalog(cfg.Inventory.CatalogPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load item catalog")
	}
	log.WithFields(logrus.Fields{
		"path":  cfg.Inventory.CatalogPath,
		"items": catalog.Len(),
	}).Info("Item catalog loaded")

	srv, err := server.New(cfg, catalog, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create server")
	}

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Start(addr); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.WithError(err).Fatal("Server error")
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutting down...")
	}

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	log.Info("Server stopped")
}
