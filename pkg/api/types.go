// Package api defines the JSON types of the HTTP surface. Money amounts
// cross the wire as decimal strings; kana amounts are integers.
package api

import "time"

// Wallet is a user's wallet as returned by the API.
type Wallet struct {
	UserId      string    `json:"user_id"`
	CoinBalance int64     `json:"coin_balance"`
	GoldBalance int64     `json:"gold_balance"`
	Revenue     string    `json:"revenue"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewWallet is the request body for creating a wallet.
type NewWallet struct {
	UserId string `json:"user_id"`
}

// KanaTransaction is one kana ledger entry.
type KanaTransaction struct {
	Id        string    `json:"id"`
	UserId    string    `json:"user_id"`
	Currency  string    `json:"currency"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	ChapterId string    `json:"chapter_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewKanaTransaction is the request body for appending a kana ledger entry.
type NewKanaTransaction struct {
	Currency string `json:"currency"`
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	Reason   string `json:"reason,omitempty"`
}

// RevenueTransaction is one author revenue ledger entry.
type RevenueTransaction struct {
	Id          string    `json:"id"`
	AuthorId    string    `json:"author_id"`
	RevenueType string    `json:"revenue_type"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Reason      string    `json:"reason,omitempty"`
	SeriesId    string    `json:"series_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// WithdrawRequest is the request body for withdrawing author revenue.
type WithdrawRequest struct {
	Amount    string `json:"amount"`
	AccountId string `json:"account_id"`
}

// Chapter is the reader-facing view of a chapter.
type Chapter struct {
	Id            string     `json:"id"`
	SeriesId      string     `json:"series_id"`
	VolumeNumber  int        `json:"volume_number"`
	ChapterNumber int        `json:"chapter_number"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	KanaPrice     int64      `json:"kana_price"`
	IsAdvance     bool       `json:"is_advance"`
}

// AccessDecision is the result of a chapter read-access check.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// UnlockedChapter records a chapter purchase.
type UnlockedChapter struct {
	UserId     string    `json:"user_id"`
	ChapterId  string    `json:"chapter_id"`
	SeriesId   string    `json:"series_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ScheduleReleaseRequest is the request body for scheduling a chapter release.
type ScheduleReleaseRequest struct {
	VersionId string    `json:"version_id"`
	PublishAt time.Time `json:"publish_at"`
}

// DashiFanTier is a per-series subscription tier.
type DashiFanTier struct {
	Id          string `json:"id"`
	SeriesId    string `json:"series_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Price  `json:"price"`
	Perks       int    `json:"perks"`
	Active      bool   `json:"active"`
}

// Price is a decimal amount in a real-world currency.
type Price struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Subscription is one user's subscription to a DashiFan tier.
type Subscription struct {
	Id            string     `json:"id"`
	UserId        string     `json:"user_id"`
	TierId        string     `json:"tier_id"`
	SeriesId      string     `json:"series_id"`
	Status        string     `json:"status"`
	NextBillingAt *time.Time `json:"next_billing_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewSubscription is the request body for starting a subscription.
type NewSubscription struct {
	TierId    string `json:"tier_id"`
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// SubscriptionCreated is returned when a subscription is started; the caller
// redirects the user to ApproveUrl to confirm payment.
type SubscriptionCreated struct {
	Subscription *Subscription `json:"subscription"`
	ApproveUrl   string        `json:"approve_url"`
}

// ChangeTierRequest is the request body for upgrading or downgrading a
// subscription's tier.
type ChangeTierRequest struct {
	TierId string `json:"tier_id"`
}

// CommissionRate is the platform's cut for one revenue source.
type CommissionRate struct {
	Type           string `json:"type"`
	RatePercentage int64  `json:"rate_percentage"`
}

// KanaExchangeRate converts kana-gold units into a real-world currency.
type KanaExchangeRate struct {
	CurrencyCode string `json:"currency_code"`
	Rate         string `json:"rate"`
}

// Error is the uniform error response body.
type Error struct {
	Message string `json:"message"`
}
