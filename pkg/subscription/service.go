package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/google/uuid"
)

// ErrAlreadySubscribed is returned when the user already holds an Active or
// in-grace Cancelled subscription to the series.
var ErrAlreadySubscribed = errors.New("already subscribed to this series")

// ErrInvalidTierChange is returned when an upgrade or downgrade is not legal:
// the subscription is not Active, the currencies differ, or the price does
// not move in the required direction.
var ErrInvalidTierChange = errors.New("invalid tier change")

// ErrInvalidTransition is returned when a lifecycle operation is applied to a
// subscription in the wrong state.
var ErrInvalidTransition = errors.New("invalid subscription state transition")

// ErrTierInactive is returned when subscribing to a retired tier.
var ErrTierInactive = errors.New("tier is not active")

// Store is the storage surface the subscription service needs.
type Store interface {
	storage.SubscriptionStore
	storage.TierStore
}

// Service drives the subscription lifecycle. Webhook-triggered transitions
// arrive through Processor, user-triggered ones through the methods here.
type Service struct {
	store    Store
	provider payments.Provider
	now      func() time.Time
}

// New creates a new subscription Service.
func New(store Store, provider payments.Provider) *Service {
	return &Service{store: store, provider: provider, now: time.Now}
}

// CreateResult is a freshly created subscription plus the provider approval
// URL the user must visit to confirm payment.
type CreateResult struct {
	Subscription *models.Subscription
	ApproveURL   string
}

// Create starts a new subscription in Pending state and registers it with the
// payment provider. A stale Pending subscription for the same series is
// cancelled first; an Active or in-grace Cancelled one blocks creation.
func (s *Service) Create(ctx context.Context, userID, tierID, returnURL, cancelURL string) (*CreateResult, error) {
	tier, err := s.store.GetTier(ctx, tierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}
	if !tier.Active {
		return nil, fmt.Errorf("tier %s: %w", tierID, ErrTierInactive)
	}

	now := s.now()
	subs, err := s.store.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	for i := range subs {
		existing := &subs[i]
		if existing.SeriesId != tier.SeriesId {
			continue
		}
		if existing.CountsAsSubscribed(now) {
			return nil, fmt.Errorf("user %s, series %s: %w", userID, tier.SeriesId, ErrAlreadySubscribed)
		}
		if existing.Status == models.SubscriptionPending {
			existing.Status = models.SubscriptionCancelled
			existing.UpdatedAt = now
			if err := s.store.PutSubscription(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to cancel stale pending subscription: %w", err)
			}
		}
	}

	providerSub, err := s.provider.CreateSubscription(ctx, tier, userID, returnURL, cancelURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider subscription: %w", err)
	}

	sub := &models.Subscription{
		Id:            uuid.New().String(),
		UserId:        userID,
		TierId:        tier.Id,
		SeriesId:      tier.SeriesId,
		Status:        models.SubscriptionPending,
		ProviderSubId: providerSub.Id,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store subscription: %w", err)
	}

	return &CreateResult{Subscription: sub, ApproveURL: providerSub.ApproveURL}, nil
}

// Activate moves a Pending subscription to Active and sets its billing date.
// Activating an already-Active subscription is a no-op so duplicate
// confirmations are harmless.
func (s *Service) Activate(ctx context.Context, subID string, nextBillingAt time.Time) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	return s.activate(ctx, sub, nextBillingAt)
}

func (s *Service) activate(ctx context.Context, sub *models.Subscription, nextBillingAt time.Time) (*models.Subscription, error) {
	if sub.Status == models.SubscriptionActive {
		return sub, nil
	}
	if sub.Status != models.SubscriptionPending {
		return nil, fmt.Errorf("cannot activate subscription in state %s: %w", sub.Status, ErrInvalidTransition)
	}

	sub.Status = models.SubscriptionActive
	sub.NextBillingAt = &nextBillingAt
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store activated subscription: %w", err)
	}
	return sub, nil
}

// Cancel moves an Active or Pending subscription to Cancelled and cancels it
// at the provider. A cancelled subscription keeps granting access until its
// next billing date.
func (s *Service) Cancel(ctx context.Context, subID, reason string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionPending {
		return nil, fmt.Errorf("cannot cancel subscription in state %s: %w", sub.Status, ErrInvalidTransition)
	}

	if err := s.provider.CancelSubscription(ctx, sub.ProviderSubId, reason); err != nil {
		return nil, fmt.Errorf("failed to cancel provider subscription: %w", err)
	}

	sub.Status = models.SubscriptionCancelled
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store cancelled subscription: %w", err)
	}
	return sub, nil
}

// Suspend moves an Active subscription to Suspended.
func (s *Service) Suspend(ctx context.Context, subID, reason string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	return s.suspend(ctx, sub, reason)
}

func (s *Service) suspend(ctx context.Context, sub *models.Subscription, reason string) (*models.Subscription, error) {
	if sub.Status == models.SubscriptionSuspended {
		return sub, nil
	}
	if sub.Status != models.SubscriptionActive {
		return nil, fmt.Errorf("cannot suspend subscription in state %s: %w", sub.Status, ErrInvalidTransition)
	}

	sub.Status = models.SubscriptionSuspended
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store suspended subscription: %w", err)
	}
	slog.Info("subscription suspended", "subscription_id", sub.Id, "reason", reason)
	return sub, nil
}

// Reactivate moves a Suspended subscription back to Active and resumes it at
// the provider.
func (s *Service) Reactivate(ctx context.Context, subID, reason string) (*models.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionSuspended {
		return nil, fmt.Errorf("cannot reactivate subscription in state %s: %w", sub.Status, ErrInvalidTransition)
	}

	if err := s.provider.ReactivateSubscription(ctx, sub.ProviderSubId, reason); err != nil {
		return nil, fmt.Errorf("failed to reactivate provider subscription: %w", err)
	}

	sub.Status = models.SubscriptionActive
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store reactivated subscription: %w", err)
	}
	return sub, nil
}

// UpgradeTier moves an Active subscription to a more expensive tier of the
// same series and currency, charging the price delta immediately.
func (s *Service) UpgradeTier(ctx context.Context, subID, newTierID string) (*models.Subscription, error) {
	sub, cur, next, err := s.tierChange(ctx, subID, newTierID)
	if err != nil {
		return nil, err
	}
	if next.Price.Currency != cur.Price.Currency || !next.Price.Amount.GreaterThan(cur.Price.Amount) {
		return nil, fmt.Errorf("upgrade from %s to %s: %w", cur.Id, next.Id, ErrInvalidTierChange)
	}

	delta := models.Price{
		Amount:   next.Price.Amount.Sub(cur.Price.Amount),
		Currency: cur.Price.Currency,
	}
	order, err := s.provider.CreateOrder(ctx, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to create upgrade order: %w", err)
	}
	if _, err := s.provider.CaptureOrder(ctx, order.Id); err != nil {
		return nil, fmt.Errorf("failed to capture upgrade order: %w", err)
	}

	sub.TierId = next.Id
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store upgraded subscription: %w", err)
	}
	return sub, nil
}

// DowngradeTier moves an Active subscription to a cheaper tier of the same
// series. It takes effect at once; no charge and no refund.
func (s *Service) DowngradeTier(ctx context.Context, subID, newTierID string) (*models.Subscription, error) {
	sub, cur, next, err := s.tierChange(ctx, subID, newTierID)
	if err != nil {
		return nil, err
	}
	if next.Price.Currency != cur.Price.Currency || !next.Price.Amount.LessThan(cur.Price.Amount) {
		return nil, fmt.Errorf("downgrade from %s to %s: %w", cur.Id, next.Id, ErrInvalidTierChange)
	}

	sub.TierId = next.Id
	sub.UpdatedAt = s.now()
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store downgraded subscription: %w", err)
	}
	return sub, nil
}

// tierChange loads and validates the shared preconditions of upgrade and
// downgrade: the subscription is Active and the new tier belongs to the same
// series.
func (s *Service) tierChange(ctx context.Context, subID, newTierID string) (*models.Subscription, *models.DashiFanTier, *models.DashiFanTier, error) {
	sub, err := s.store.GetSubscription(ctx, subID)
	if err != nil {
		return nil, nil, nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, nil, nil, fmt.Errorf("subscription %s is %s: %w", sub.Id, sub.Status, ErrInvalidTierChange)
	}

	cur, err := s.store.GetTier(ctx, sub.TierId)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get current tier: %w", err)
	}
	next, err := s.store.GetTier(ctx, newTierID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get new tier: %w", err)
	}
	if next.SeriesId != sub.SeriesId {
		return nil, nil, nil, fmt.Errorf("tier %s belongs to another series: %w", next.Id, ErrInvalidTierChange)
	}

	return sub, cur, next, nil
}

// IsSubscribed reports whether the user currently counts as subscribed to the
// series: an Active subscription, or a Cancelled one inside its grace period.
func (s *Service) IsSubscribed(ctx context.Context, userID, seriesID string) (bool, error) {
	subs, err := s.store.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	now := s.now()
	for i := range subs {
		if subs[i].SeriesId == seriesID && subs[i].CountsAsSubscribed(now) {
			return true, nil
		}
	}
	return false, nil
}

// ExpireLapsed moves Cancelled subscriptions whose grace period has run out
// to Expired. Returns the number of subscriptions expired.
func (s *Service) ExpireLapsed(ctx context.Context) (int, error) {
	lapsed, err := s.store.ListLapsedCancelled(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed subscriptions: %w", err)
	}

	expired := 0
	for i := range lapsed {
		sub := &lapsed[i]
		sub.Status = models.SubscriptionExpired
		sub.UpdatedAt = s.now()
		if err := s.store.PutSubscription(ctx, sub); err != nil {
			slog.Error("failed to expire subscription", "subscription_id", sub.Id, "error", err)
			continue
		}
		expired++
	}
	return expired, nil
}
