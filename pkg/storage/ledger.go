package storage

import (
	"context"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// KanaLedgerStore defines the interface for the per-user kana ledger.
// Appends are atomic with the wallet running-total update: either both land
// or neither does.
type KanaLedgerStore interface {
	// ApplyKanaTransaction appends a kana ledger entry and adjusts the
	// wallet's running total for the entry's currency in the same write.
	// A spend that would take the balance negative fails with
	// ErrInsufficientFunds and appends nothing. The wallet's version field
	// must match expectedVersion or the write fails with ErrVersionConflict.
	ApplyKanaTransaction(ctx context.Context, tx *models.KanaTransaction, expectedVersion int64) (*models.Wallet, error)

	// ListKanaTransactions retrieves all kana ledger entries for a user.
	ListKanaTransactions(ctx context.Context, userID string) ([]models.KanaTransaction, error)
}

// RevenueLedgerStore defines the interface for the per-author revenue ledger.
type RevenueLedgerStore interface {
	// ApplyRevenueTransaction appends a revenue ledger entry and adjusts the
	// wallet's revenue running total in the same write. A withdrawal that
	// would take the revenue negative fails with ErrInsufficientFunds and
	// appends nothing.
	ApplyRevenueTransaction(ctx context.Context, tx *models.RevenueTransaction, expectedVersion int64) (*models.Wallet, error)

	// ListRevenueTransactions retrieves all revenue ledger entries for an author.
	ListRevenueTransactions(ctx context.Context, authorID string) ([]models.RevenueTransaction, error)
}
