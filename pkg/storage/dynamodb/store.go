package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/shopspring/decimal"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
// Declared here so tests can substitute a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables names every DynamoDB table the store reads and writes.
type Tables struct {
	Wallets       string
	KanaLedger    string
	RevenueLedger string
	Unlocks       string
	Subscriptions string
	Chapters      string
	Series        string
	Tiers         string
	Rates         string
	Events        string
	Connections   string
}

// Store implements the storage interfaces using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{Client: client, Tables: tables}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// conditionFailed reports whether err is a conditional-check failure, either
// on a single-item write or inside a TransactWriteItems cancellation. For
// transactions it returns the per-item cancellation codes so callers can tell
// which condition failed.
func conditionFailed(err error) (bool, []string) {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true, nil
	}
	var txc *types.TransactionCanceledException
	if errors.As(err, &txc) {
		codes := make([]string, len(txc.CancellationReasons))
		failed := false
		for i, reason := range txc.CancellationReasons {
			if reason.Code != nil {
				codes[i] = *reason.Code
				if codes[i] == "ConditionalCheckFailed" {
					failed = true
				}
			}
		}
		return failed, codes
	}
	return false, nil
}

// dynamoDecimal wraps decimal.Decimal so it round-trips as a DynamoDB number
// instead of reflecting into the struct's unexported fields.
type dynamoDecimal struct {
	decimal.Decimal
}

func (d dynamoDecimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: d.String()}, nil
}

func (d *dynamoDecimal) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		parsed, err := decimal.NewFromString(v.Value)
		if err != nil {
			return fmt.Errorf("failed to parse decimal attribute: %w", err)
		}
		d.Decimal = parsed
		return nil
	case *types.AttributeValueMemberS:
		parsed, err := decimal.NewFromString(v.Value)
		if err != nil {
			return fmt.Errorf("failed to parse decimal attribute: %w", err)
		}
		d.Decimal = parsed
		return nil
	default:
		return fmt.Errorf("unexpected attribute type %T for decimal", av)
	}
}
