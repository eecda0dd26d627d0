package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/domain"
	buyersvc "contentcheckout/internal/service/buyer"
)

type buyerHandler struct {
	svc    buyerService
	logger logrus.FieldLogger
}

type creditRequest struct {
	Cents int64 `json:"cents"`
}

func (h *buyerHandler) balance(c *gin.Context) {
	b, err := h.svc.Balance(c.Request.Context(), c.Param("buyerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMoney(b.Cents))
}

func (h *buyerHandler) credit(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	b, err := h.svc.Credit(c.Request.Context(), c.Param("buyerId"), req.Cents)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMoney(b.Cents))
}

func (h *buyerHandler) purchases(c *gin.Context) {
	items, err := h.svc.Purchases(c.Request.Context(), c.Param("buyerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := make([]purchaseResponse, 0, len(items))
	for _, p := range items {
		results = append(results, toPurchaseResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *buyerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, buyersvc.ErrInvalidCredit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("buyer request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
