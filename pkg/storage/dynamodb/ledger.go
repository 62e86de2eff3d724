package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

const kanaLedgerUserIndex = "user_id-timestamp-index"

// balanceColumn maps a kana currency onto its wallet attribute.
func balanceColumn(c models.KanaCurrency) string {
	if c == models.Gold {
		return "gold_balance"
	}
	return "coin_balance"
}

// ApplyKanaTransaction atomically appends a kana ledger entry and adjusts the
// wallet's running total for the affected currency. A spend is guarded by a
// balance condition so the total can never go negative; every write is guarded
// by the wallet version so concurrent appends for one user serialize.
func (s *Store) ApplyKanaTransaction(ctx context.Context, tx *models.KanaTransaction, expectedVersion int64) (*models.Wallet, error) {
	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal kana transaction: %w", err)
	}

	column := balanceColumn(tx.Currency)
	condition := "version = :version"
	values := map[string]types.AttributeValue{
		":amount":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tx.Amount)},
		":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		":inc":     &types.AttributeValueMemberN{Value: "1"},
	}
	if tx.Amount < 0 {
		condition = fmt.Sprintf("%s >= :spend AND version = :version", column)
		values[":spend"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", -tx.Amount)}
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Adjust the wallet's running total.
				Update: &types.Update{
					TableName: aws.String(s.Tables.Wallets),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: tx.UserId},
					},
					UpdateExpression:          aws.String(fmt.Sprintf("SET %s = %s + :amount, version = version + :inc", column, column)),
					ConditionExpression:       aws.String(condition),
					ExpressionAttributeValues: values,
				},
			},
			{
				// Operation 2: Append the ledger entry.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.KanaLedger),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, _ := conditionFailed(err); failed {
			if tx.Amount < 0 {
				return nil, fmt.Errorf("kana spend for user %s: %w", tx.UserId, storage.ErrInsufficientFunds)
			}
			return nil, fmt.Errorf("kana append for user %s: %w", tx.UserId, storage.ErrVersionConflict)
		}
		return nil, fmt.Errorf("failed to execute kana ledger transaction: %w", err)
	}

	return s.GetWallet(ctx, tx.UserId)
}

// ListKanaTransactions retrieves all kana ledger entries for a user.
func (s *Store) ListKanaTransactions(ctx context.Context, userID string) ([]models.KanaTransaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.KanaLedger),
		IndexName:              aws.String(kanaLedgerUserIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query kana ledger: %w", err)
	}

	var entries []models.KanaTransaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kana ledger entries: %w", err)
	}

	return entries, nil
}
