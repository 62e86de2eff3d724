// Package webhooks receives payment-provider notifications.
package webhooks

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
)

// WebhooksHandler holds the dependencies for the webhook endpoint.
type WebhooksHandler struct {
	Processor *subscription.Processor
}

// NewWebhooksHandler creates a new WebhooksHandler.
func NewWebhooksHandler(processor *subscription.Processor) *WebhooksHandler {
	return &WebhooksHandler{Processor: processor}
}

// HandleEvent handles a webhook delivery. Any non-2xx response makes the
// provider retry, so only processing failures return one; duplicates and
// unknown event types are acknowledged.
func (h *WebhooksHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event payments.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		handlers.RespondBadRequest(w, "invalid event body")
		return
	}
	if event.Id == "" || event.EventType == "" {
		handlers.RespondBadRequest(w, "event id and type are required")
		return
	}

	if err := h.Processor.Process(r.Context(), &event); err != nil {
		slog.Error("failed to process webhook event", "event_id", event.Id, "event_type", event.EventType, "error", err)
		handlers.RespondError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
