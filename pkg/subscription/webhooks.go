package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/shopspring/decimal"
)

// Creditor credits authors for subscription payments. Implemented by the
// revenue service.
type Creditor interface {
	ReceiveDashiFanRevenue(ctx context.Context, authorID string, sub *models.Subscription, orderPrice models.Price, rate *models.CommissionRate) (*models.RevenueTransaction, error)
}

// ProcessorStore is the storage surface the webhook processor needs beyond
// the subscription service itself.
type ProcessorStore interface {
	storage.EventStore
	storage.RateStore
	storage.SeriesStore
	storage.TierStore
}

// Processor maps payment-provider webhook events onto subscription
// transitions and revenue credits. Events dispatch by type through a handler
// map; each event id is recorded before handling, so a redelivered event is
// recognized and skipped.
type Processor struct {
	svc      *Service
	store    ProcessorStore
	creditor Creditor
	handlers map[string]func(ctx context.Context, event *payments.Event) error
}

// NewProcessor creates a new webhook Processor.
func NewProcessor(svc *Service, store ProcessorStore, creditor Creditor) *Processor {
	p := &Processor{svc: svc, store: store, creditor: creditor}
	p.handlers = map[string]func(ctx context.Context, event *payments.Event) error{
		payments.EventSubscriptionActivated: p.handleActivated,
		payments.EventSubscriptionCancelled: p.handleCancelled,
		payments.EventSubscriptionSuspended: p.handleSuspended,
		payments.EventSubscriptionExpired:   p.handleExpired,
		payments.EventSubscriptionPayFailed: p.handlePaymentFailed,
		payments.EventPaymentCompleted:      p.handlePaymentCompleted,
	}
	return p
}

// Process handles one webhook delivery with at-most-once effect.
func (p *Processor) Process(ctx context.Context, event *payments.Event) error {
	handler, ok := p.handlers[event.EventType]
	if !ok {
		slog.Info("ignoring webhook event", "event_type", event.EventType, "event_id", event.Id)
		return nil
	}

	record := &models.WebhookEvent{
		EventId:     event.Id,
		EventType:   event.EventType,
		Resource:    string(event.Resource),
		ProcessedAt: time.Now(),
	}
	if err := p.store.RecordEvent(ctx, record); err != nil {
		if errors.Is(err, storage.ErrEventAlreadyProcessed) {
			slog.Info("skipping duplicate webhook event", "event_id", event.Id)
			return nil
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return handler(ctx, event)
}

func (p *Processor) subscriptionFor(ctx context.Context, event *payments.Event) (*models.Subscription, *payments.SubscriptionResource, error) {
	var resource payments.SubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return nil, nil, fmt.Errorf("failed to decode subscription resource: %w", err)
	}
	sub, err := p.svc.store.GetSubscriptionByProviderId(ctx, resource.Id)
	if err != nil {
		return nil, nil, err
	}
	return sub, &resource, nil
}

func (p *Processor) handleActivated(ctx context.Context, event *payments.Event) error {
	sub, resource, err := p.subscriptionFor(ctx, event)
	if err != nil {
		return err
	}

	nextBilling := time.Now().AddDate(0, 1, 0)
	if resource.BillingInfo != nil {
		nextBilling = resource.BillingInfo.NextBillingTime
	}
	activated, err := p.svc.activate(ctx, sub, nextBilling)
	if err != nil {
		return err
	}

	// The first cycle's payment is part of the activation event.
	tier, err := p.store.GetTier(ctx, activated.TierId)
	if err != nil {
		return fmt.Errorf("failed to get tier for revenue credit: %w", err)
	}
	return p.credit(ctx, activated, tier.Price)
}

func (p *Processor) handleCancelled(ctx context.Context, event *payments.Event) error {
	sub, _, err := p.subscriptionFor(ctx, event)
	if err != nil {
		return err
	}
	if sub.Status == models.SubscriptionCancelled || sub.Status == models.SubscriptionExpired {
		return nil
	}

	sub.Status = models.SubscriptionCancelled
	sub.UpdatedAt = time.Now()
	if err := p.svc.store.PutSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to store cancelled subscription: %w", err)
	}
	return nil
}

func (p *Processor) handleSuspended(ctx context.Context, event *payments.Event) error {
	sub, _, err := p.subscriptionFor(ctx, event)
	if err != nil {
		return err
	}
	_, err = p.svc.suspend(ctx, sub, "provider suspension event")
	return err
}

func (p *Processor) handleExpired(ctx context.Context, event *payments.Event) error {
	sub, _, err := p.subscriptionFor(ctx, event)
	if err != nil {
		return err
	}
	if sub.Status == models.SubscriptionExpired {
		return nil
	}

	sub.Status = models.SubscriptionExpired
	sub.UpdatedAt = time.Now()
	if err := p.svc.store.PutSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to store expired subscription: %w", err)
	}
	return nil
}

func (p *Processor) handlePaymentFailed(ctx context.Context, event *payments.Event) error {
	sub, _, err := p.subscriptionFor(ctx, event)
	if err != nil {
		return err
	}
	_, err = p.svc.suspend(ctx, sub, "subscription payment failed")
	return err
}

// handlePaymentCompleted processes a recurring billing cycle: the billing
// date rolls forward and the author is credited for the payment.
func (p *Processor) handlePaymentCompleted(ctx context.Context, event *payments.Event) error {
	var resource payments.SaleResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		return fmt.Errorf("failed to decode sale resource: %w", err)
	}
	if resource.BillingAgreementId == "" {
		// One-off orders (tier upgrade deltas) are charged inline; nothing
		// to do here.
		return nil
	}

	sub, err := p.svc.store.GetSubscriptionByProviderId(ctx, resource.BillingAgreementId)
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(resource.Amount.Total)
	if err != nil {
		return fmt.Errorf("failed to parse sale amount: %w", err)
	}

	next := time.Now().AddDate(0, 1, 0)
	sub.NextBillingAt = &next
	sub.UpdatedAt = time.Now()
	if err := p.svc.store.PutSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to roll billing date: %w", err)
	}

	return p.credit(ctx, sub, models.Price{Amount: amount, Currency: resource.Amount.Currency})
}

// credit routes a subscription payment to the series' author through the
// revenue service, reading the commission rate fresh.
func (p *Processor) credit(ctx context.Context, sub *models.Subscription, orderPrice models.Price) error {
	series, err := p.store.GetSeries(ctx, sub.SeriesId)
	if err != nil {
		return fmt.Errorf("failed to get series for revenue credit: %w", err)
	}
	rate, err := p.store.GetCommissionRate(ctx, models.DashiFanCommission)
	if err != nil {
		return fmt.Errorf("failed to get dashifan commission rate: %w", err)
	}
	if _, err := p.creditor.ReceiveDashiFanRevenue(ctx, series.AuthorId, sub, orderPrice, rate); err != nil {
		return fmt.Errorf("failed to credit dashifan revenue: %w", err)
	}
	return nil
}
