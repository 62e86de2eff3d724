package storage

import (
	"context"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// EventStore defines the interface for the processed-webhook-event log.
type EventStore interface {
	// RecordEvent stores a processed event keyed by the provider's event id.
	// Returns ErrEventAlreadyProcessed if the id was recorded before, which
	// gives webhook handling its at-most-once guarantee.
	RecordEvent(ctx context.Context, event *models.WebhookEvent) error
}
