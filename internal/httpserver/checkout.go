package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	core "contentcheckout/internal/checkout"
	"contentcheckout/internal/domain"
	checkoutsvc "contentcheckout/internal/service/checkout"
)

type checkoutHandler struct {
	svc    checkoutService
	logger logrus.FieldLogger
}

type openCheckoutRequest struct {
	BuyerID             string `json:"buyerId"`
	ContentID           string `json:"contentId"`
	Platform            string `json:"platform"`
	ShowExistingBalance *bool  `json:"showExistingBalance"`
}

type selectMethodRequest struct {
	Method string `json:"method"`
}

type extraAmountRequest struct {
	Preset      string `json:"preset"`
	CustomCents int64  `json:"customCents"`
}

type vendorRequest struct {
	Vendor string `json:"vendor"`
}

type changeTargetRequest struct {
	ContentID string `json:"contentId"`
}

func (h *checkoutHandler) open(c *gin.Context) {
	var req openCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	showBalance := true
	if req.ShowExistingBalance != nil {
		showBalance = *req.ShowExistingBalance
	}
	v, err := h.svc.Open(c.Request.Context(), checkoutsvc.OpenInput{
		BuyerID:             req.BuyerID,
		ContentID:           req.ContentID,
		Platform:            req.Platform,
		ShowExistingBalance: showBalance,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCheckoutResponse(v))
}

func (h *checkoutHandler) get(c *gin.Context) {
	h.respond(c, h.svc.Get)
}

func (h *checkoutHandler) selectMethod(c *gin.Context) {
	var req selectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	method := domain.PurchaseMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown method"})
		return
	}
	h.respond(c, func(ctx context.Context, id string) (checkoutsvc.View, error) {
		return h.svc.SelectMethod(ctx, id, method)
	})
}

func (h *checkoutHandler) setExtra(c *gin.Context) {
	var req extraAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	preset := domain.PayExtraPreset(strings.ToLower(strings.TrimSpace(req.Preset)))
	h.respond(c, func(ctx context.Context, id string) (checkoutsvc.View, error) {
		return h.svc.SetExtraAmount(ctx, id, preset, req.CustomCents)
	})
}

func (h *checkoutHandler) setVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	vendor := domain.PurchaseVendor(strings.ToLower(strings.TrimSpace(req.Vendor)))
	h.respond(c, func(ctx context.Context, id string) (checkoutsvc.View, error) {
		return h.svc.SetVendorPreference(ctx, id, vendor)
	})
}

func (h *checkoutHandler) changeTarget(c *gin.Context) {
	var req changeTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.respond(c, func(ctx context.Context, id string) (checkoutsvc.View, error) {
		return h.svc.ChangeTarget(ctx, id, req.ContentID)
	})
}

func (h *checkoutHandler) close(c *gin.Context) {
	if err := h.svc.Close(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intent adapts a body-less checkout intent into a handler.
func (h *checkoutHandler) intent(fn func(ctx context.Context, id string) (checkoutsvc.View, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.respond(c, fn)
	}
}

func (h *checkoutHandler) respond(c *gin.Context, fn func(ctx context.Context, id string) (checkoutsvc.View, error)) {
	v, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCheckoutResponse(v))
}

func (h *checkoutHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, checkoutsvc.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidExtraAmount),
		errors.Is(err, core.ErrInvalidVendor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionExists),
		errors.Is(err, core.ErrCloseBlocked),
		errors.Is(err, core.ErrInvalidTransition),
		errors.Is(err, core.ErrMethodUnavailable),
		errors.Is(err, core.ErrNotSubmittable),
		errors.Is(err, core.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timeout"})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("checkout request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
