package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/storage/dynamodb/mocks"
)

func testTables() Tables {
	return Tables{
		Wallets:    "wallets",
		KanaLedger: "kana-ledger",
		Unlocks:    "unlocks",
	}
}

func TestUnlockChapter(t *testing.T) {
	spend := &models.KanaTransaction{
		Id:        "tx1",
		UserId:    "user1",
		Currency:  models.Coin,
		Type:      models.KanaSpend,
		Amount:    -60,
		ChapterId: "ch1",
		Timestamp: time.Now(),
	}
	unlock := &models.UnlockedChapter{
		UserId:     "user1",
		ChapterId:  "ch1",
		SeriesId:   "s1",
		UnlockedAt: time.Now(),
	}
	wallet := &models.Wallet{UserId: "user1", CoinBalance: 40, Version: 2}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		walletAV, _ := attributevalue.MarshalMap(toWalletRecord(wallet))
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: walletAV}, nil)

		result, err := store.UnlockChapter(context.Background(), spend, unlock, 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(40), result.CoinBalance)
		mockClient.AssertExpectations(t)
	})

	t.Run("Positive Spend Amount Rejected", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		bad := *spend
		bad.Amount = 60

		_, err := store.UnlockChapter(context.Background(), &bad, unlock, 1)

		assert.Error(t, err)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Already Unlocked", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		// The third transact item is the unlock record's uniqueness condition.
		reasons := []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})

		_, err := store.UnlockChapter(context.Background(), spend, unlock, 1)

		assert.ErrorIs(t, err, storage.ErrAlreadyUnlocked)
		mockClient.AssertExpectations(t)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		reasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})

		_, err := store.UnlockChapter(context.Background(), spend, unlock, 1)

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := store.UnlockChapter(context.Background(), spend, unlock, 1)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute unlock transaction")
	})
}

func TestIsChapterUnlocked(t *testing.T) {
	t.Run("Unlocked", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		record, _ := attributevalue.MarshalMap(&models.UnlockedChapter{UserId: "user1", ChapterId: "ch1"})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: record}, nil)

		unlocked, err := store.IsChapterUnlocked(context.Background(), "user1", "ch1")

		assert.NoError(t, err)
		assert.True(t, unlocked)
	})

	t.Run("Not Unlocked", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, Tables: testTables()}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		unlocked, err := store.IsChapterUnlocked(context.Background(), "user1", "ch1")

		assert.NoError(t, err)
		assert.False(t, unlocked)
	})
}
