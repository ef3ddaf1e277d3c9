// cmd/keeper/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/kpay-backend/internal/config"
	"github.com/javajoker/kpay-backend/internal/keeper"
	"github.com/javajoker/kpay-backend/pkg/kpayclient"
)

// The keeper is the external trigger of recurring purchases: it logs in as
// the order owner and calls execute whenever the order is due.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadKeeperConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load keeper configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	client := kpayclient.NewClient(cfg.APIURL, cfg.Address, cfg.APIKey, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if err := client.Login(ctx); err != nil {
		cancel()
		logger.WithError(err).Fatal("Failed to log in to kpay API")
	}
	cancel()

	jobs := keeper.NewJobs(client, logger, timeout)
	scheduler := keeper.NewScheduler(jobs, logger, cfg.Schedule)

	ctx, cancel = context.WithTimeout(context.Background(), timeout)
	err = scheduler.Start(ctx)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to start keeper")
	}
	logger.WithField("address", cfg.Address).Info("Keeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received, stopping keeper")
	<-scheduler.Stop().Done()
	logger.Info("Keeper stopped")
}
