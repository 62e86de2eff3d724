package revenue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	"github.com/shopspring/decimal"
)

// ErrCommissionTypeMismatch is returned when a revenue computation is handed
// a commission rate configured for a different revenue source.
var ErrCommissionTypeMismatch = errors.New("commission rate type mismatch")

// ErrInvalidAmount is returned for negative withdrawal requests.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientRevenue is returned when a withdrawal exceeds the author's
// running revenue balance.
var ErrInsufficientRevenue = errors.New("insufficient revenue balance")

var hundred = decimal.NewFromInt(100)

// Ledger is the append surface the revenue service writes through. All
// revenue mutations are ledger appends; nothing here touches balances
// directly.
type Ledger interface {
	AddRevenueTransaction(ctx context.Context, tx *models.RevenueTransaction) (*models.Wallet, error)
}

// Wallets reads the author's current revenue balance for the withdrawal
// precondition.
type Wallets interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
}

// Service computes author earnings and appends them to the revenue ledger.
// All currency rounding is floor at two decimals; the platform never rounds
// a fractional cent in the author's favor.
type Service struct {
	ledger   Ledger
	wallets  Wallets
	provider payments.Provider
}

// New creates a new revenue Service. provider may be nil when payouts are
// handled out of band.
func New(ledger Ledger, wallets Wallets, provider payments.Provider) *Service {
	return &Service{ledger: ledger, wallets: wallets, provider: provider}
}

// ReceiveKanaRevenue credits an author for a chapter unlock. The chapter
// price is cut by the kana commission in whole kana units, then converted to
// currency at the exchange rate.
func (s *Service) ReceiveKanaRevenue(ctx context.Context, authorID string, chapter *models.Chapter, rate *models.CommissionRate, fx *models.KanaExchangeRate) (*models.RevenueTransaction, error) {
	if rate.Type != models.KanaCommission {
		return nil, fmt.Errorf("got %s rate for kana revenue: %w", rate.Type, ErrCommissionTypeMismatch)
	}

	// Integer division floors the kana share before conversion.
	kanaAmount := chapter.KanaPrice * (100 - rate.RatePercentage) / 100
	amount := decimal.NewFromInt(kanaAmount).Mul(fx.Rate).RoundFloor(2)

	tx := &models.RevenueTransaction{
		AuthorId:    authorID,
		RevenueType: models.KanaRevenue,
		Type:        models.RevenueEarn,
		Amount:      amount,
		Reason:      fmt.Sprintf("Chapter %s unlocked", chapter.Id),
		SeriesId:    chapter.SeriesId,
	}
	if _, err := s.ledger.AddRevenueTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append kana revenue: %w", err)
	}
	return tx, nil
}

// ReceiveDashiFanRevenue credits an author for a subscription payment.
func (s *Service) ReceiveDashiFanRevenue(ctx context.Context, authorID string, sub *models.Subscription, orderPrice models.Price, rate *models.CommissionRate) (*models.RevenueTransaction, error) {
	if rate.Type != models.DashiFanCommission {
		return nil, fmt.Errorf("got %s rate for dashifan revenue: %w", rate.Type, ErrCommissionTypeMismatch)
	}

	share := hundred.Sub(decimal.NewFromInt(rate.RatePercentage))
	amount := orderPrice.Amount.Mul(share).Div(hundred).RoundFloor(2)

	tx := &models.RevenueTransaction{
		AuthorId:    authorID,
		RevenueType: models.DashiFanRevenue,
		Type:        models.RevenueEarn,
		Amount:      amount,
		Reason:      fmt.Sprintf("DashiFan payment for subscription %s", sub.Id),
		SeriesId:    sub.SeriesId,
	}
	if _, err := s.ledger.AddRevenueTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append dashifan revenue: %w", err)
	}
	return tx, nil
}

// WithdrawRevenue debits an author's revenue balance and requests a payout.
// The withdrawal is refused outright when the amount is negative or exceeds
// the running balance; the ledger's own guard backs this up atomically.
func (s *Service) WithdrawRevenue(ctx context.Context, authorID string, amount decimal.Decimal, payoutAccount string) (*models.RevenueTransaction, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("withdrawal of %s: %w", amount, ErrInvalidAmount)
	}

	wallet, err := s.wallets.GetWallet(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if amount.GreaterThan(wallet.Revenue) {
		return nil, fmt.Errorf("withdrawal of %s with balance %s: %w", amount, wallet.Revenue, ErrInsufficientRevenue)
	}

	tx := &models.RevenueTransaction{
		AuthorId:    authorID,
		RevenueType: models.WithdrawalRevenue,
		Type:        models.RevenueWithdraw,
		Amount:      amount.Neg(),
		Reason:      "Revenue withdrawal",
	}
	if _, err := s.ledger.AddRevenueTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append withdrawal: %w", err)
	}

	if s.provider != nil && payoutAccount != "" {
		price := models.Price{Amount: amount, Currency: "USD"}
		if err := s.provider.PayoutRevenue(ctx, payoutAccount, price); err != nil {
			// The ledger entry stands; the payout is retried out of band.
			slog.Error("payout request failed", "author_id", authorID, "amount", amount.String(), "error", err)
		}
	}

	return tx, nil
}
