package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appwebhook "github.com/erp/optilog-connector/internal/application/webhook"
	"github.com/erp/optilog-connector/internal/interfaces/http/dto"
)

// Form field and header names fixed by the provider contract
const (
	eventFormField = "Event"
	clefHeader     = "Clef"
)

// WebhookHandler receives the provider's change notifications. Responses
// always go out with HTTP 200; the business outcome travels in the
// statut/statutText body.
type WebhookHandler struct {
	processor *appwebhook.Processor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(processor *appwebhook.Processor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// RegisterRoutes registers webhook routes. Only POST is accepted; the
// router answers other methods at the protocol level.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.Receive)
}

// Receive handles one webhook delivery
func (h *WebhookHandler) Receive(c *gin.Context) {
	// an absent Event field and an empty one are different cases: the
	// processor refuses the former and decodes the latter
	var payload *string
	if value, ok := c.GetPostForm(eventFormField); ok {
		payload = &value
	}

	result := h.processor.Handle(c.Request.Context(), c.GetHeader(clefHeader), payload)

	c.JSON(http.StatusOK, dto.NewWebhookResponse(result.OK, result.Message))
}
