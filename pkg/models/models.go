package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// KanaCurrency identifies one of the platform's two virtual currencies.
// Coin is earned through engagement (check-ins, missions); gold is purchased.
type KanaCurrency string

const (
	Coin KanaCurrency = "COIN"
	Gold KanaCurrency = "GOLD"
)

// KanaTransactionType classifies a kana ledger entry.
type KanaTransactionType string

const (
	KanaTopUp   KanaTransactionType = "TOPUP"
	KanaSpend   KanaTransactionType = "SPEND"
	KanaCheckin KanaTransactionType = "CHECKIN"
	KanaMission KanaTransactionType = "MISSION"
)

// Earns reports whether entries of this type must carry a positive amount.
// Spend entries carry a negative amount; everything else is an earn.
func (t KanaTransactionType) Earns() bool {
	return t != KanaSpend
}

// KanaTransaction is a single immutable entry in a user's kana ledger.
// Balances are derived by summing entries; entries are never updated or deleted.
type KanaTransaction struct {
	Id        string              `dynamodbav:"id"`
	UserId    string              `dynamodbav:"user_id"`
	Currency  KanaCurrency        `dynamodbav:"currency"`
	Type      KanaTransactionType `dynamodbav:"type"`
	Amount    int64               `dynamodbav:"amount"`
	Reason    string              `dynamodbav:"reason"`
	ChapterId string              `dynamodbav:"chapter_id,omitempty"`
	Timestamp time.Time           `dynamodbav:"timestamp"`
}

// RevenueType classifies the source of an author revenue entry.
type RevenueType string

const (
	KanaRevenue       RevenueType = "KANA"
	DashiFanRevenue   RevenueType = "DASHIFAN"
	WithdrawalRevenue RevenueType = "WITHDRAWAL"
)

// RevenueTransactionType is the direction of a revenue ledger entry.
type RevenueTransactionType string

const (
	RevenueEarn     RevenueTransactionType = "EARN"
	RevenueWithdraw RevenueTransactionType = "WITHDRAW"
)

// RevenueTransaction is a single immutable entry in an author's revenue ledger.
type RevenueTransaction struct {
	Id          string                 `dynamodbav:"id"`
	AuthorId    string                 `dynamodbav:"author_id"`
	RevenueType RevenueType            `dynamodbav:"revenue_type"`
	Type        RevenueTransactionType `dynamodbav:"type"`
	Amount      decimal.Decimal        `dynamodbav:"amount"`
	Reason      string                 `dynamodbav:"reason"`
	SeriesId    string                 `dynamodbav:"series_id,omitempty"`
	Timestamp   time.Time              `dynamodbav:"timestamp"`
}

// Wallet holds a user's derived balances. The stored values are running
// totals maintained in the same write as each ledger append; the ledger
// entries remain the source of truth.
type Wallet struct {
	UserId      string          `json:"user_id" dynamodbav:"user_id"`
	CoinBalance int64           `json:"coin_balance" dynamodbav:"coin_balance"`
	GoldBalance int64           `json:"gold_balance" dynamodbav:"gold_balance"`
	Revenue     decimal.Decimal `json:"revenue" dynamodbav:"revenue"`
	Version     int64           `json:"version" dynamodbav:"version"`
	CreatedAt   time.Time       `json:"created_at" dynamodbav:"created_at"`
}

// KanaBalance returns the wallet balance for the given currency.
func (w *Wallet) KanaBalance(c KanaCurrency) int64 {
	if c == Gold {
		return w.GoldBalance
	}
	return w.CoinBalance
}

// Chapter is the access-control view of a chapter: ordering keys,
// publication state, pricing and the advance flag.
type Chapter struct {
	Id                 string     `dynamodbav:"id"`
	SeriesId           string     `dynamodbav:"series_id"`
	VolumeNumber       int        `dynamodbav:"volume_number"`
	ChapterNumber      int        `dynamodbav:"chapter_number"`
	PublishedVersionId string     `dynamodbav:"published_version_id,omitempty"`
	PublishedAt        *time.Time `dynamodbav:"published_at,omitempty"`
	KanaPrice          int64      `dynamodbav:"kana_price"`
	IsAdvance          bool       `dynamodbav:"is_advance"`
}

// Published reports whether the chapter is visible to readers at the given
// time: a published version exists and its release date has arrived. The same
// gate applies to listing and to read access.
func (c *Chapter) Published(now time.Time) bool {
	return c.PublishedVersionId != "" && c.PublishedAt != nil && !c.PublishedAt.After(now)
}

// Free reports whether the chapter carries no kana price.
func (c *Chapter) Free() bool {
	return c.KanaPrice <= 0
}

// Before orders chapters by volume number, then chapter number.
func (c *Chapter) Before(other *Chapter) bool {
	if c.VolumeNumber != other.VolumeNumber {
		return c.VolumeNumber < other.VolumeNumber
	}
	return c.ChapterNumber < other.ChapterNumber
}

// Price is a decimal amount in a real-world currency.
type Price struct {
	Amount   decimal.Decimal `json:"amount" dynamodbav:"amount"`
	Currency string          `json:"currency" dynamodbav:"currency"`
}

// DashiFanTier is a per-series subscription tier. Perks is the number of
// advance chapters the tier unlocks, counted from the start of the series'
// advance-chapter list.
type DashiFanTier struct {
	Id          string    `dynamodbav:"id"`
	SeriesId    string    `dynamodbav:"series_id"`
	Name        string    `dynamodbav:"name"`
	Description string    `dynamodbav:"description"`
	Price       Price     `dynamodbav:"price"`
	Perks       int       `dynamodbav:"perks"`
	Active      bool      `dynamodbav:"active"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

// SubscriptionStatus defines the possible states of a subscription.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "PENDING"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
)

// Subscription is one user's subscription to one DashiFan tier.
// SeriesId is denormalized from the tier so the one-subscription-per-series
// rule can be checked without loading tiers.
type Subscription struct {
	Id            string             `dynamodbav:"id"`
	UserId        string             `dynamodbav:"user_id"`
	TierId        string             `dynamodbav:"tier_id"`
	SeriesId      string             `dynamodbav:"series_id"`
	Status        SubscriptionStatus `dynamodbav:"status"`
	NextBillingAt *time.Time         `dynamodbav:"next_billing_at,omitempty"`
	ProviderSubId string             `dynamodbav:"provider_sub_id,omitempty"`
	CreatedAt     time.Time          `dynamodbav:"created_at"`
	UpdatedAt     time.Time          `dynamodbav:"updated_at"`
}

// CountsAsSubscribed reports whether the subscription grants series access at
// the given time: Active, or Cancelled inside the paid-for grace period.
func (s *Subscription) CountsAsSubscribed(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive:
		return true
	case SubscriptionCancelled:
		return s.NextBillingAt != nil && now.Before(*s.NextBillingAt)
	default:
		return false
	}
}

// CommissionType selects which commission rate applies to a revenue source.
type CommissionType string

const (
	KanaCommission     CommissionType = "KANA"
	DashiFanCommission CommissionType = "DASHIFAN"
)

// CommissionRate is the platform's percentage cut for one revenue source.
// Admin-editable; read on every revenue computation, never cached.
type CommissionRate struct {
	Type           CommissionType `dynamodbav:"type"`
	RatePercentage int64          `dynamodbav:"rate_percentage"`
}

// KanaExchangeRate converts kana-gold units into a real-world currency.
type KanaExchangeRate struct {
	CurrencyCode string          `dynamodbav:"currency_code"`
	Rate         decimal.Decimal `dynamodbav:"rate"`
}

/// Series is the monetization view of a series: just enough to route revenue
// to its author. Series CRUD lives elsewhere.
type Series struct {
	Id       string `dynamodbav:"id"`
	AuthorId string `dynamodbav:"author_id"`
	Title    string `dynamodbav:"title"`
}

// UnlockedChapter records a chapter purchase in a user's unlocked set.
type UnlockedChapter struct {
	UserId     string    `dynamodbav:"user_id"`
	ChapterId  string    `dynamodbav:"chapter_id"`
	SeriesId   string    `dynamodbav:"series_id"`
	UnlockedAt time.Time `dynamodbav:"unlocked_at"`
}

// WebhookEvent records a processed payment-provider event. The provider event
// id is the idempotency key: recording the same id twice fails, which is how
// duplicate webhook deliveries are detected.
type WebhookEvent struct {
	EventId     string    `dynamodbav:"event_id"`
	EventType   string    `dynamodbav:"event_type"`
	Resource    string    `dynamodbav:"resource,omitempty"`
	ProcessedAt time.Time `dynamodbav:"processed_at"`
}
