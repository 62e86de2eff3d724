package storage

import (
	"context"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// UnlockStore defines the interface for a user's unlocked-chapter set and the
// atomic purchase path.
type UnlockStore interface {
	// UnlockChapter atomically debits the wallet, appends the spend ledger
	// entry and records the unlocked chapter. The unlock record put is
	// conditional on the chapter not being unlocked already
	// (ErrAlreadyUnlocked); the wallet update is conditional on the balance
	// covering the spend (ErrInsufficientFunds) and on expectedVersion
	// (ErrVersionConflict).
	UnlockChapter(ctx context.Context, spend *models.KanaTransaction, unlock *models.UnlockedChapter, expectedVersion int64) (*models.Wallet, error)

	// IsChapterUnlocked reports whether the chapter is in the user's
	// unlocked set.
	IsChapterUnlocked(ctx context.Context, userID, chapterID string) (bool, error)

	// ListUnlockedChapters retrieves a user's unlocked-chapter records.
	ListUnlockedChapters(ctx context.Context, userID string) ([]models.UnlockedChapter, error)
}
