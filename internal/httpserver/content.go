package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"contentcheckout/internal/domain"
)

type contentHandler struct {
	svc    contentService
	logger logrus.FieldLogger
}

func (h *contentHandler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("list contents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	results := make([]contentResponse, 0, len(items))
	for _, item := range items {
		results = append(results, toContentResponse(item))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (h *contentHandler) get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.logger.WithError(err).Error("get content")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toContentResponse(*item))
}
