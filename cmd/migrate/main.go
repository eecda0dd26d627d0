package main

import (
	"context"
	"flag"

	"contentcheckout/internal/config"
	"contentcheckout/internal/db"
	"contentcheckout/internal/logging"
	"contentcheckout/internal/migrate"
)

func main() {
	down := flag.Bool("down", false, "Roll back the most recent migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").WithError(err).Fatal("load config")
	}
	base := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger := base.WithField("component", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			logger.WithError(err).Fatal("roll back migration")
		}
		logger.Info("last migration rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}
	logger.Info("migrations applied")
}
