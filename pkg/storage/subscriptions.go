package storage

import (
	"context"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// SubscriptionReader defines the interface for reading subscription data.
type SubscriptionReader interface {
	// GetSubscription retrieves a subscription by its ID.
	GetSubscription(ctx context.Context, subID string) (*models.Subscription, error)

	// GetSubscriptionByProviderId retrieves a subscription by the payment
	// provider's correlation key. Webhook handlers use this to map provider
	// events back onto local state.
	GetSubscriptionByProviderId(ctx context.Context, providerSubID string) (*models.Subscription, error)

	// ListSubscriptionsByUser retrieves all of a user's subscriptions.
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)

	// ListLapsedCancelled retrieves Cancelled subscriptions whose
	// next-billing-date has passed, for the expiry sweep.
	ListLapsedCancelled(ctx context.Context, now time.Time) ([]models.Subscription, error)
}

// SubscriptionWriter defines the interface for creating and updating
// subscriptions.
type SubscriptionWriter interface {
	// PutSubscription creates or replaces a subscription record.
	PutSubscription(ctx context.Context, sub *models.Subscription) error
}

// SubscriptionStore combines the reader and writer interfaces.
type SubscriptionStore interface {
	SubscriptionReader
	SubscriptionWriter
}
