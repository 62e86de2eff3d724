package payments

import (
	"context"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// Order is a one-off payment order at the provider (tier upgrade deltas).
type Order struct {
	Id         string       `json:"id"`
	Status     string       `json:"status"`
	Price      models.Price `json:"price"`
	ApproveURL string       `json:"approve_url,omitempty"`
}

// ProviderSubscription is the provider-side record of a recurring
// subscription. Its Id is the correlation key carried on webhook events.
type ProviderSubscription struct {
	Id         string `json:"id"`
	Status     string `json:"status"`
	ApproveURL string `json:"approve_url,omitempty"`
}

// Provider defines the external payment collaborator. Calls are blocking with
// ordinary error propagation; no retries happen at this layer.
type Provider interface {
	// CreateOrder creates a one-off order for the given price.
	CreateOrder(ctx context.Context, price models.Price) (*Order, error)

	// CaptureOrder captures a previously approved order.
	CaptureOrder(ctx context.Context, orderID string) (*Order, error)

	// CreateSubscription creates a recurring subscription for a tier.
	CreateSubscription(ctx context.Context, tier *models.DashiFanTier, userID, returnURL, cancelURL string) (*ProviderSubscription, error)

	// CancelSubscription cancels a provider subscription.
	CancelSubscription(ctx context.Context, providerSubID, reason string) error

	// SuspendSubscription suspends a provider subscription.
	SuspendSubscription(ctx context.Context, providerSubID, reason string) error

	// ReactivateSubscription resumes a suspended provider subscription.
	ReactivateSubscription(ctx context.Context, providerSubID, reason string) error

	// PayoutRevenue sends a payout to an author's provider account.
	PayoutRevenue(ctx context.Context, accountID string, price models.Price) error

	// ConvertPrice converts a price into the target currency.
	ConvertPrice(ctx context.Context, price models.Price, targetCurrency string) (models.Price, error)
}
