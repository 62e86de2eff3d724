package payments

import (
	"encoding/json"
	"time"
)

// Webhook event types delivered by the provider.
const (
	EventPaymentCompleted      = "PAYMENT.SALE.COMPLETED"
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	EventSubscriptionExpired   = "BILLING.SUBSCRIPTION.EXPIRED"
	EventSubscriptionPayFailed = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

// Event is a webhook notification from the payment provider. Id is unique per
// delivery attempt's logical event and is the idempotency key.
type Event struct {
	Id        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

// SubscriptionResource is the resource payload on subscription lifecycle
// events.
type SubscriptionResource struct {
	Id          string       `json:"id"`
	Status      string       `json:"status"`
	BillingInfo *BillingInfo `json:"billing_info,omitempty"`
}

// BillingInfo carries the provider's view of the billing cycle.
type BillingInfo struct {
	NextBillingTime time.Time `json:"next_billing_time"`
}

// SaleResource is the resource payload on payment-completed events. The
// billing agreement id correlates a recurring payment back to its
// subscription.
type SaleResource struct {
	Id                 string `json:"id"`
	BillingAgreementId string `json:"billing_agreement_id"`
	Amount             Amount `json:"amount"`
}

// Amount is the provider's money representation: decimal string plus
// currency code.
type Amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}
