package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stocker/inventory/internal/domain/shared"
	"github.com/stocker/inventory/internal/interfaces/http/dto"
	"github.com/stocker/inventory/internal/interfaces/http/middleware"
)

// EventDecoder rebuilds typed integration events from their wire form.
type EventDecoder interface {
	IsRegistered(eventType string) bool
	RegisteredTypes() []string
	Deserialize(eventType string, data []byte) (shared.DomainEvent, error)
}

// IntegrationEventHandler ingests events published by upstream services
// (sales orders, won deals) and hands them to the event bus, where the
// reservation consumers pick them up.
type IntegrationEventHandler struct {
	BaseHandler
	decoder   EventDecoder
	publisher shared.EventPublisher
}

func NewIntegrationEventHandler(decoder EventDecoder, publisher shared.EventPublisher) *IntegrationEventHandler {
	return &IntegrationEventHandler{decoder: decoder, publisher: publisher}
}

// IntegrationEventRequest is the envelope upstream services post.
type IntegrationEventRequest struct {
	EventType string          `json:"event_type" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

// Ingest handles POST /integration/events. The event is dispatched
// synchronously; 202 means every subscribed consumer has seen it.
func (h *IntegrationEventHandler) Ingest(c *gin.Context) {
	var req IntegrationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, err.Error())
		return
	}

	if !h.decoder.IsRegistered(req.EventType) {
		h.BadRequest(c, fmt.Sprintf("unknown event type %q, accepted: %s",
			req.EventType, strings.Join(h.decoder.RegisteredTypes(), ", ")))
		return
	}

	evt, err := h.decoder.Deserialize(req.EventType, req.Payload)
	if err != nil {
		h.BadRequest(c, "Malformed event payload")
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), evt); err != nil {
		h.InternalError(c, "Failed to dispatch event")
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{
		"event_id":   evt.EventID(),
		"event_type": evt.EventType(),
	}))
}
