package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

// walletRecord is the storage shape of a wallet. Revenue is wrapped so it is
// stored as an exact DynamoDB number and stays usable in update expressions.
type walletRecord struct {
	UserId      string        `dynamodbav:"user_id"`
	CoinBalance int64         `dynamodbav:"coin_balance"`
	GoldBalance int64         `dynamodbav:"gold_balance"`
	Revenue     dynamoDecimal `dynamodbav:"revenue"`
	Version     int64         `dynamodbav:"version"`
	CreatedAt   time.Time     `dynamodbav:"created_at"`
}

func toWalletRecord(w *models.Wallet) *walletRecord {
	return &walletRecord{
		UserId:      w.UserId,
		CoinBalance: w.CoinBalance,
		GoldBalance: w.GoldBalance,
		Revenue:     dynamoDecimal{w.Revenue},
		Version:     w.Version,
		CreatedAt:   w.CreatedAt,
	}
}

func (r *walletRecord) toModel() *models.Wallet {
	return &models.Wallet{
		UserId:      r.UserId,
		CoinBalance: r.CoinBalance,
		GoldBalance: r.GoldBalance,
		Revenue:     r.Revenue.Decimal,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
	}
}

// GetWallet retrieves a user's wallet from DynamoDB by their user ID.
func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Wallets),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, storage.ErrNotFound)
	}

	var record walletRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return record.toModel(), nil
}

// CreateWallet creates a new wallet, failing if the user already has one.
func (s *Store) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	item, err := attributevalue.MarshalMap(toWalletRecord(wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Wallets),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if failed, _ := conditionFailed(err); failed {
			return nil, fmt.Errorf("wallet for user ID %s: %w", wallet.UserId, storage.ErrWalletExists)
		}
		return nil, fmt.Errorf("failed to create wallet in DynamoDB: %w", err)
	}

	return wallet, nil
}

// ListWallets retrieves all wallets.
func (s *Store) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.Tables.Wallets),
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallets: %w", err)
	}

	var records []walletRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallets: %w", err)
	}

	wallets := make([]models.Wallet, len(records))
	for i := range records {
		wallets[i] = *records[i].toModel()
	}
	return wallets, nil
}
