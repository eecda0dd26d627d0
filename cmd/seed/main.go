package main

import (
	"context"

	"contentcheckout/internal/config"
	"contentcheckout/internal/db"
	"contentcheckout/internal/logging"
	"contentcheckout/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField("component", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool); err != nil {
		logger.WithError(err).Fatal("seed apply")
	}

	logger.Info("seed applied")
}
