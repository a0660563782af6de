package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 1 << 20

// HandlePaymentWebhook acknowledges every notification for a known order
// with 200 so the gateway stops retrying, duplicates included.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		AbortWithError(c, ErrPayloadTooLarge)
		return
	}

	result, err := s.webhookSvc.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("order_id", result.Donation.OrderID)
	c.JSON(http.StatusOK, gin.H{"donorId": result.Donation.ID})
}
