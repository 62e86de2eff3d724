package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/shopspring/decimal"
)

var (
	// ErrRateOutOfRange indicates a commission percentage outside 0-100.
	ErrRateOutOfRange = errors.New("commission rate must be between 0 and 100")

	// ErrExchangeRateNotPositive indicates a non-positive kana exchange rate.
	ErrExchangeRateNotPositive = errors.New("exchange rate must be positive")
)

// Service manages the admin-editable commission and exchange rates.
type Service struct {
	store storage.RateStore
}

// NewService creates a new rates Service.
func NewService(store storage.RateStore) *Service {
	return &Service{store: store}
}

// GetCommissionRate returns the current commission rate for a revenue source.
func (s *Service) GetCommissionRate(ctx context.Context, t models.CommissionType) (*models.CommissionRate, error) {
	return s.store.GetCommissionRate(ctx, t)
}

// SetCommissionRate validates and stores a commission rate.
func (s *Service) SetCommissionRate(ctx context.Context, t models.CommissionType, percentage int64) (*models.CommissionRate, error) {
	if percentage < 0 || percentage > 100 {
		return nil, ErrRateOutOfRange
	}

	rate := &models.CommissionRate{
		Type:           t,
		RatePercentage: percentage,
	}
	if err := s.store.PutCommissionRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to store commission rate: %w", err)
	}
	return rate, nil
}

// GetExchangeRate returns the active kana-to-currency exchange rate.
func (s *Service) GetExchangeRate(ctx context.Context) (*models.KanaExchangeRate, error) {
	return s.store.GetExchangeRate(ctx)
}

// SetExchangeRate validates and stores the active kana exchange rate.
func (s *Service) SetExchangeRate(ctx context.Context, rate decimal.Decimal, currency string) (*models.KanaExchangeRate, error) {
	if !rate.IsPositive() {
		return nil, ErrExchangeRateNotPositive
	}

	exchange := &models.KanaExchangeRate{
		Rate:         rate,
		CurrencyCode: currency,
	}
	if err := s.store.PutExchangeRate(ctx, exchange); err != nil {
		return nil, fmt.Errorf("failed to store exchange rate: %w", err)
	}
	return exchange, nil
}
