package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

// The rates table holds both commission rows (keyed by commission type) and
// the single exchange-rate row under a fixed key.
const exchangeRateKey = "KANA_EXCHANGE_RATE"

type commissionRecord struct {
	Key            string                `dynamodbav:"rate_key"`
	Type           models.CommissionType `dynamodbav:"type"`
	RatePercentage int64                 `dynamodbav:"rate_percentage"`
}

type exchangeRecord struct {
	Key          string        `dynamodbav:"rate_key"`
	CurrencyCode string        `dynamodbav:"currency_code"`
	Rate         dynamoDecimal `dynamodbav:"rate"`
}

// GetCommissionRate retrieves the commission rate for a revenue source.
func (s *Store) GetCommissionRate(ctx context.Context, t models.CommissionType) (*models.CommissionRate, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"rate_key": string(t)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal commission key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Rates),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get commission rate: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("commission rate %s: %w", t, storage.ErrNotFound)
	}

	var record commissionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal commission rate: %w", err)
	}

	return &models.CommissionRate{Type: record.Type, RatePercentage: record.RatePercentage}, nil
}

// PutCommissionRate stores a commission rate.
func (s *Store) PutCommissionRate(ctx context.Context, rate *models.CommissionRate) error {
	item, err := attributevalue.MarshalMap(commissionRecord{
		Key:            string(rate.Type),
		Type:           rate.Type,
		RatePercentage: rate.RatePercentage,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal commission rate: %w", err)
	}

	if _, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Rates),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put commission rate: %w", err)
	}

	return nil
}

// GetExchangeRate retrieves the single active kana exchange rate.
func (s *Store) GetExchangeRate(ctx context.Context) (*models.KanaExchangeRate, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"rate_key": exchangeRateKey})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exchange key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Rates),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("kana exchange rate: %w", storage.ErrNotFound)
	}

	var record exchangeRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exchange rate: %w", err)
	}

	return &models.KanaExchangeRate{CurrencyCode: record.CurrencyCode, Rate: record.Rate.Decimal}, nil
}

// PutExchangeRate stores the active kana exchange rate.
func (s *Store) PutExchangeRate(ctx context.Context, rate *models.KanaExchangeRate) error {
	item, err := attributevalue.MarshalMap(exchangeRecord{
		Key:          exchangeRateKey,
		CurrencyCode: rate.CurrencyCode,
		Rate:         dynamoDecimal{rate.Rate},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal exchange rate: %w", err)
	}

	if _, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Rates),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put exchange rate: %w", err)
	}

	return nil
}
