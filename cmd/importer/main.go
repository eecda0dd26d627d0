package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"contentcheckout/internal/config"
	"contentcheckout/internal/db"
	"contentcheckout/internal/importer"
	"contentcheckout/internal/logging"
	"contentcheckout/internal/repository/content"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to content catalog CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").WithError(err).Fatal("load config")
	}
	base := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger := base.WithField("component", "importer")
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.WithError(err).Fatal("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, content.NewPostgres(pool, base))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.WithError(err).WithField("imported", count).Fatal("import failed")
	}

	logger.WithFields(logrus.Fields{
		"imported": count,
		"file":     filePath,
		"took":     time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("content import finished")
}
