package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"contentcheckout/internal/config"
	"contentcheckout/internal/db"
	"contentcheckout/internal/httpserver"
	"contentcheckout/internal/logging"
	"contentcheckout/internal/remoteconfig"
	contentrepo "contentcheckout/internal/repository/content"
	ledgerrepo "contentcheckout/internal/repository/ledger"
	purchaserepo "contentcheckout/internal/repository/purchase"
	settingrepo "contentcheckout/internal/repository/setting"
	buyersvc "contentcheckout/internal/service/buyer"
	checkoutsvc "contentcheckout/internal/service/checkout"
	contentsvc "contentcheckout/internal/service/content"
	fundssvc "contentcheckout/internal/service/funds"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").WithError(err).Fatal("load config")
	}
	base := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger := base.WithField("component", "api")
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer dbpool.Close()

	remote := remoteconfig.New(settingrepo.NewPostgres(dbpool), cfg.RemoteDefaults, base)
	if err := remote.Refresh(ctx); err != nil {
		logger.WithError(err).Warn("initial remote config load failed, using defaults")
	}
	go remote.Run(ctx, cfg.RemoteConfigRefresh)

	contentRepo := contentrepo.NewPostgres(dbpool, base)
	ledgerRepo := ledgerrepo.NewPostgres(dbpool)
	purchaseRepo := purchaserepo.NewPostgres(dbpool)

	contentService := contentsvc.New(contentRepo)
	fundsService := fundssvc.New(purchaseRepo, base)
	buyerService := buyersvc.New(ledgerRepo, purchaseRepo)
	checkoutService := checkoutsvc.New(contentService, fundsService, ledgerRepo, remote, checkoutsvc.Options{
		BalancePollInterval:    cfg.BalancePollInterval,
		SubmitTimeout:          cfg.SubmitTimeout,
		StandaloneTransferPage: cfg.StandaloneTransferPage,
	}, base)

	srv, err := httpserver.New(cfg.HTTPAddr, base, dbpool, httpserver.Deps{
		CheckoutSvc:  checkoutService,
		ContentSvc:   contentService,
		BuyerSvc:     buyerService,
		RemoteConfig: remote,
	}, cfg.CORSAllowedOrigins)
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if err := checkoutService.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("checkout sessions did not stop in time")
	}
	stop()
	logger.Info("server stopped")
}
