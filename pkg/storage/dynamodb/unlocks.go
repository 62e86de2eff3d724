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

// UnlockChapter performs the atomic chapter purchase: wallet debit, spend
// ledger entry and unlocked-chapter record commit together or not at all.
// The transaction item order is fixed; cancellation codes are inspected by
// position to map the failed condition onto a domain error.
func (s *Store) UnlockChapter(ctx context.Context, spend *models.KanaTransaction, unlock *models.UnlockedChapter, expectedVersion int64) (*models.Wallet, error) {
	if spend.Amount >= 0 {
		return nil, fmt.Errorf("unlock spend amount must be negative, got %d", spend.Amount)
	}

	spendAV, err := attributevalue.MarshalMap(spend)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spend entry: %w", err)
	}
	unlockAV, err := attributevalue.MarshalMap(unlock)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unlock record: %w", err)
	}

	column := balanceColumn(spend.Currency)

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Debit the wallet.
				Update: &types.Update{
					TableName: aws.String(s.Tables.Wallets),
					Key: map[string]types.AttributeValue{
						"user_id": &types.AttributeValueMemberS{Value: spend.UserId},
					},
					UpdateExpression:    aws.String(fmt.Sprintf("SET %s = %s - :price, version = version + :inc", column, column)),
					ConditionExpression: aws.String(fmt.Sprintf("%s >= :price AND version = :version", column)),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":price":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", -spend.Amount)},
						":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
						":inc":     &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
			{
				// Operation 2: Append the spend ledger entry.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.KanaLedger),
					Item:                spendAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 3: Record the unlock. Fails if already unlocked.
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Unlocks),
					Item:                unlockAV,
					ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(chapter_id)"),
				},
			},
		},
	}

	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		if failed, codes := conditionFailed(err); failed {
			if len(codes) == 3 && codes[2] == "ConditionalCheckFailed" {
				return nil, fmt.Errorf("chapter %s for user %s: %w", unlock.ChapterId, unlock.UserId, storage.ErrAlreadyUnlocked)
			}
			return nil, fmt.Errorf("unlock debit for user %s: %w", spend.UserId, storage.ErrInsufficientFunds)
		}
		return nil, fmt.Errorf("failed to execute unlock transaction: %w", err)
	}

	return s.GetWallet(ctx, spend.UserId)
}

// IsChapterUnlocked reports whether the chapter is in the user's unlocked set.
func (s *Store) IsChapterUnlocked(ctx context.Context, userID, chapterID string) (bool, error) {
	key, err := attributevalue.MarshalMap(map[string]string{
		"user_id":    userID,
		"chapter_id": chapterID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal unlock key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Unlocks),
		Key:       key,
	})
	if err != nil {
		return false, fmt.Errorf("failed to get unlock record: %w", err)
	}

	return result.Item != nil, nil
}

// ListUnlockedChapters retrieves a user's unlocked-chapter records.
func (s *Store) ListUnlockedChapters(ctx context.Context, userID string) ([]models.UnlockedChapter, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Unlocks),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlocked chapters: %w", err)
	}

	var unlocks []models.UnlockedChapter
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &unlocks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unlocked chapters: %w", err)
	}

	return unlocks, nil
}
