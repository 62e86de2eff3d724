package storage

import (
	"context"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// RateStore defines the interface for the admin-editable rate tables.
type RateStore interface {
	// GetCommissionRate retrieves the commission rate for a revenue source.
	GetCommissionRate(ctx context.Context, t models.CommissionType) (*models.CommissionRate, error)

	// PutCommissionRate stores a commission rate.
	PutCommissionRate(ctx context.Context, rate *models.CommissionRate) error

	// GetExchangeRate retrieves the single active kana exchange rate.
	GetExchangeRate(ctx context.Context) (*models.KanaExchangeRate, error)

	// PutExchangeRate stores the active kana exchange rate.
	PutExchangeRate(ctx context.Context, rate *models.KanaExchangeRate) error
}
