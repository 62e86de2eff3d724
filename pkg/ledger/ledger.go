package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrAmountSign is returned when a ledger entry's amount sign does not match
// its type: spends and withdrawals are negative, earns are positive.
var ErrAmountSign = errors.New("amount sign does not match transaction type")

// ErrAdvanceNotPurchasable is returned when a reader tries to unlock an
// advance chapter. Advance chapters are subscription-gated only.
var ErrAdvanceNotPurchasable = errors.New("advance chapters cannot be unlocked")

// ErrChapterFree is returned when a reader tries to unlock a chapter with no
// price.
var ErrChapterFree = errors.New("chapter is free")

// ErrChapterNotPublished is returned when a reader tries to unlock a chapter
// with no published version or a release date still in the future.
var ErrChapterNotPublished = errors.New("chapter is not published")

// Store is the storage surface the ledger service needs.
type Store interface {
	storage.WalletStore
	storage.KanaLedgerStore
	storage.RevenueLedgerStore
	storage.UnlockStore
}

// Service owns all mutations of the kana and revenue ledgers. Balances are
// never written directly anywhere else; every change goes through an append.
type Service struct {
	store Store
	locks *userLocks
	now   func() time.Time
}

// New creates a new ledger Service.
func New(store Store) *Service {
	return &Service{
		store: store,
		locks: newUserLocks(),
		now:   time.Now,
	}
}

// AddTransaction validates and appends a kana ledger entry, updating the
// user's running balance in the same write. The entry's id and timestamp are
// filled in server-side.
func (s *Service) AddTransaction(ctx context.Context, tx *models.KanaTransaction) (*models.Wallet, error) {
	if err := validateKanaTransaction(tx); err != nil {
		return nil, err
	}

	mu := s.locks.get(tx.UserId)
	mu.Lock()
	defer mu.Unlock()

	wallet, err := s.store.GetWallet(ctx, tx.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if tx.Amount < 0 && wallet.KanaBalance(tx.Currency)+tx.Amount < 0 {
		return nil, fmt.Errorf("spend of %d %s for user %s: %w", -tx.Amount, tx.Currency, tx.UserId, storage.ErrInsufficientFunds)
	}

	tx.Id = uuid.New().String()
	tx.Timestamp = s.now()

	return s.store.ApplyKanaTransaction(ctx, tx, wallet.Version)
}

// AddRevenueTransaction validates and appends a revenue ledger entry. A
// withdrawal larger than the running revenue balance fails and appends
// nothing.
func (s *Service) AddRevenueTransaction(ctx context.Context, tx *models.RevenueTransaction) (*models.Wallet, error) {
	if err := validateRevenueTransaction(tx); err != nil {
		return nil, err
	}

	mu := s.locks.get(tx.AuthorId)
	mu.Lock()
	defer mu.Unlock()

	wallet, err := s.store.GetWallet(ctx, tx.AuthorId)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if tx.Amount.IsNegative() && wallet.Revenue.Add(tx.Amount).IsNegative() {
		return nil, fmt.Errorf("withdrawal of %s for author %s: %w", tx.Amount.Neg(), tx.AuthorId, storage.ErrInsufficientFunds)
	}

	tx.Id = uuid.New().String()
	tx.Timestamp = s.now()

	return s.store.ApplyRevenueTransaction(ctx, tx, wallet.Version)
}

// UnlockChapter purchases a chapter for a user: debits coin first, then gold,
// appends the spend entry and records the unlock, all in one atomic write.
// The per-user lock serializes concurrent unlock attempts so only one can
// pass the balance check.
func (s *Service) UnlockChapter(ctx context.Context, userID string, chapter *models.Chapter) (*models.Wallet, error) {
	now := s.now()
	if !chapter.Published(now) {
		return nil, fmt.Errorf("chapter %s: %w", chapter.Id, ErrChapterNotPublished)
	}
	if chapter.IsAdvance {
		return nil, fmt.Errorf("chapter %s: %w", chapter.Id, ErrAdvanceNotPurchasable)
	}
	if chapter.Free() {
		return nil, fmt.Errorf("chapter %s: %w", chapter.Id, ErrChapterFree)
	}

	mu := s.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	unlocked, err := s.store.IsChapterUnlocked(ctx, userID, chapter.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to check unlocked set: %w", err)
	}
	if unlocked {
		return nil, fmt.Errorf("chapter %s for user %s: %w", chapter.Id, userID, storage.ErrAlreadyUnlocked)
	}

	wallet, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	// Coin is spent before gold; a purchase never splits across currencies.
	var currency models.KanaCurrency
	switch {
	case wallet.CoinBalance >= chapter.KanaPrice:
		currency = models.Coin
	case wallet.GoldBalance >= chapter.KanaPrice:
		currency = models.Gold
	default:
		return nil, fmt.Errorf("unlock of chapter %s for user %s: %w", chapter.Id, userID, storage.ErrInsufficientFunds)
	}

	spend := &models.KanaTransaction{
		Id:        uuid.New().String(),
		UserId:    userID,
		Currency:  currency,
		Type:      models.KanaSpend,
		Amount:    -chapter.KanaPrice,
		Reason:    fmt.Sprintf("Unlocked chapter %s", chapter.Id),
		ChapterId: chapter.Id,
		Timestamp: now,
	}
	unlock := &models.UnlockedChapter{
		UserId:     userID,
		ChapterId:  chapter.Id,
		SeriesId:   chapter.SeriesId,
		UnlockedAt: now,
	}

	return s.store.UnlockChapter(ctx, spend, unlock, wallet.Version)
}

// Drift is the difference between a wallet's stored running totals and the
// sums of its ledger entries.
type Drift struct {
	Coin    int64
	Gold    int64
	Revenue decimal.Decimal
}

// Zero reports whether the stored totals match the ledger sums exactly.
func (d *Drift) Zero() bool {
	return d.Coin == 0 && d.Gold == 0 && d.Revenue.IsZero()
}

// AuditBalances recomputes a user's balances by summing their ledger entries
// and reports the drift from the stored running totals. A non-zero drift
// means a balance was mutated outside the ledger.
func (s *Service) AuditBalances(ctx context.Context, userID string) (*Drift, error) {
	wallet, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	kana, err := s.store.ListKanaTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kana entries: %w", err)
	}
	var coin, gold int64
	for _, tx := range kana {
		if tx.Currency == models.Gold {
			gold += tx.Amount
		} else {
			coin += tx.Amount
		}
	}

	rev, err := s.store.ListRevenueTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revenue entries: %w", err)
	}
	revenue := decimal.Zero
	for _, tx := range rev {
		revenue = revenue.Add(tx.Amount)
	}

	return &Drift{
		Coin:    wallet.CoinBalance - coin,
		Gold:    wallet.GoldBalance - gold,
		Revenue: wallet.Revenue.Sub(revenue),
	}, nil
}

func validateKanaTransaction(tx *models.KanaTransaction) error {
	if tx.Amount == 0 {
		return fmt.Errorf("zero amount: %w", ErrAmountSign)
	}
	if tx.Type.Earns() && tx.Amount < 0 {
		return fmt.Errorf("%s entries must be positive: %w", tx.Type, ErrAmountSign)
	}
	if !tx.Type.Earns() && tx.Amount > 0 {
		return fmt.Errorf("%s entries must be negative: %w", tx.Type, ErrAmountSign)
	}
	return nil
}

func validateRevenueTransaction(tx *models.RevenueTransaction) error {
	if tx.Amount.IsZero() {
		return fmt.Errorf("zero amount: %w", ErrAmountSign)
	}
	if tx.Type == models.RevenueEarn && tx.Amount.IsNegative() {
		return fmt.Errorf("earn entries must be positive: %w", ErrAmountSign)
	}
	if tx.Type == models.RevenueWithdraw && tx.Amount.IsPositive() {
		return fmt.Errorf("withdraw entries must be negative: %w", ErrAmountSign)
	}
	return nil
}
