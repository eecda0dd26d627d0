package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/domain"
	"contentcheckout/internal/metrics"
	checkoutsvc "contentcheckout/internal/service/checkout"
)

type checkoutService interface {
	Open(ctx context.Context, in checkoutsvc.OpenInput) (checkoutsvc.View, error)
	Get(ctx context.Context, id string) (checkoutsvc.View, error)
	SelectMethod(ctx context.Context, id string, method domain.PurchaseMethod) (checkoutsvc.View, error)
	SetExtraAmount(ctx context.Context, id string, preset domain.PayExtraPreset, customCents int64) (checkoutsvc.View, error)
	SetVendorPreference(ctx context.Context, id string, vendor domain.PurchaseVendor) (checkoutsvc.View, error)
	Continue(ctx context.Context, id string) (checkoutsvc.View, error)
	CompleteTransfer(ctx context.Context, id string) (checkoutsvc.View, error)
	GoBack(ctx context.Context, id string) (checkoutsvc.View, error)
	Submit(ctx context.Context, id string) (checkoutsvc.View, error)
	ChangeTarget(ctx context.Context, id, contentID string) (checkoutsvc.View, error)
	Close(ctx context.Context, id string) error
}

type contentService interface {
	List(ctx context.Context) ([]domain.Content, error)
	Get(ctx context.Context, idOrKey string) (*domain.Content, error)
}

type buyerService interface {
	Balance(ctx context.Context, buyerID string) (domain.Balance, error)
	Credit(ctx context.Context, buyerID string, cents int64) (domain.Balance, error)
	Purchases(ctx context.Context, buyerID string) ([]domain.Purchase, error)
}

type configStatus interface {
	Loaded() bool
}

// Deps are the services behind the API.
type Deps struct {
	CheckoutSvc checkoutService
	ContentSvc  contentService
	BuyerSvc    buyerService
	// RemoteConfig gates readiness until flags are loaded. Optional.
	RemoteConfig configStatus
}

// buildRouter wires routes for the API.
func buildRouter(logger *logrus.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.CheckoutSvc == nil {
		return nil, errors.New("checkout service required")
	}
	if deps.ContentSvc == nil {
		return nil, errors.New("content service required")
	}
	if deps.BuyerSvc == nil {
		return nil, errors.New("buyer service required")
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.RemoteConfig))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	contents := &contentHandler{svc: deps.ContentSvc, logger: logger}
	router.GET("/contents", contents.list)
	router.GET("/contents/:id", contents.get)

	buyers := &buyerHandler{svc: deps.BuyerSvc, logger: logger}
	router.GET("/buyers/:buyerId/balance", buyers.balance)
	router.POST("/buyers/:buyerId/balance/credit", buyers.credit)
	router.GET("/buyers/:buyerId/purchases", buyers.purchases)

	h := &checkoutHandler{svc: deps.CheckoutSvc, logger: logger}
	checkouts := router.Group("/checkouts")
	checkouts.POST("", h.open)
	checkouts.GET("/:id", h.get)
	checkouts.DELETE("/:id", h.close)
	checkouts.PUT("/:id/target", h.changeTarget)
	checkouts.POST("/:id/method", h.selectMethod)
	checkouts.POST("/:id/extra", h.setExtra)
	checkouts.POST("/:id/vendor", h.setVendor)
	checkouts.POST("/:id/continue", h.intent(deps.CheckoutSvc.Continue))
	checkouts.POST("/:id/transfer/complete", h.intent(deps.CheckoutSvc.CompleteTransfer))
	checkouts.POST("/:id/back", h.intent(deps.CheckoutSvc.GoBack))
	checkouts.POST("/:id/submit", h.intent(deps.CheckoutSvc.Submit))

	return router, nil
}
