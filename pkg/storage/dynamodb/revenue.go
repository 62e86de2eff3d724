package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

const revenueLedgerAuthorIndex = "author_id-timestamp-index"

// revenueTxRecord is the storage shape of a revenue ledger entry.
type revenueTxRecord struct {
	Id          string                        `dynamodbav:"id"`
	AuthorId    string                        `dynamodbav:"author_id"`
	RevenueType models.RevenueType            `dynamodbav:"revenue_type"`
	Type        models.RevenueTransactionType `dynamodbav:"type"`
	Amount      dynamoDecimal                 `dynamodbav:"amount"`
	Reason      string                        `dynamodbav:"reason"`
	SeriesId    string                        `dynamodbav:"series_id,omitempty"`
	Timestamp   time.Time                     `dynamodbav:"timestamp"`
}

func toRevenueRecord(tx *models.RevenueTransaction) *revenueTxRecord {
	return &revenueTxRecord{
		Id:          tx.Id,
		AuthorId:    tx.AuthorId,
		RevenueType: tx.RevenueType,
		Type:        tx.Type,
		Amount:      dynamoDecimal{tx.Amount},
		Reason:      tx.Reason,
		SeriesId:    tx.SeriesId,
		Timestamp:   tx.Timestamp,
	}
}

func (r *revenueTxRecord) toModel() models.RevenueTransaction {
	return models.RevenueTransaction{
		Id:          r.Id,
		AuthorId:    r.AuthorId,
		RevenueType: r.RevenueType,
		Type:        r.Type,
		Amount:      r.Amount.Decimal,
		Reason:      r.Reason,
		SeriesId:    r.SeriesId,
		Timestamp:   r.Timestamp,
	}
}

// ApplyRevenueTransaction atomically appends a revenue ledger entry and
// adjusts the author's revenue running total. A withdrawal (negative amount)
// is guarded by a balance condition so revenue can never go negative.
func (s *Store) ApplyRevenueTransaction(ctx context.Context, tx *models.RevenueTransaction, expectedVersion int64) (*models.Wallet, error) {
	txAV, err := attributevalue.MarshalMap(toRevenueRecord(tx))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal revenue transaction: %w", err)
	}

	condition := "version = :version"
	values := map[string]types.AttributeValue{
		":amount":  &types.AttributeValueMemberN{Value: tx.Amount.String()},
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		":inc":     &types.AttributeValueMemberN{Value: "1"},
	}
	if tx.Amount.IsNegative() {
		condition = "revenue >= :withdrawal AND version = :version"
		values[":withdrawal"] = &types.AttributeValueMemberN{Value: tx.Amount.Neg().String()}
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Adjust the author's revenue total.
				Update: &types.Update{
					TableName: aws.String(s.Tables.Wallets),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: tx.AuthorId},
					},
					UpdateExpression:          aws.String("SET revenue = revenue + :amount, version = version + :inc"),
					ConditionExpression:       aws.String(condition),
					ExpressionAttributeValues: values,
				},
			},
			{
				// Operation 2: Append the revenue ledger entry.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.RevenueLedger),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, _ := conditionFailed(err); failed {
			if tx.Amount.IsNegative() {
				return nil, fmt.Errorf("revenue withdrawal for author %s: %w", tx.AuthorId, storage.ErrInsufficientFunds)
			}
			return nil, fmt.Errorf("revenue append for author %s: %w", tx.AuthorId, storage.ErrVersionConflict)
		}
		return nil, fmt.Errorf("failed to execute revenue ledger transaction: %w", err)
	}

	return s.GetWallet(ctx, tx.AuthorId)
}

// ListRevenueTransactions retrieves all revenue ledger entries for an author.
func (s *Store) ListRevenueTransactions(ctx context.Context, authorID string) ([]models.RevenueTransaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.RevenueLedger),
		IndexName:              aws.String(revenueLedgerAuthorIndex),
		KeyConditionExpression: aws.String("author_id = :authorID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":authorID": &types.AttributeValueMemberS{Value: authorID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue ledger: %w", err)
	}

	var records []revenueTxRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal revenue ledger entries: %w", err)
	}

	entries := make([]models.RevenueTransaction, len(records))
	for i := range records {
		entries[i] = records[i].toModel()
	}
	return entries, nil
}
