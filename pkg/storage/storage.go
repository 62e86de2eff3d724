package storage

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on
// the more granular interfaces (WalletStore, SubscriptionStore, etc.) instead
// of this one.
type Storage interface {
	WalletStore
	KanaLedgerStore
	RevenueLedgerStore
	UnlockStore
	SubscriptionStore
	ChapterStore
	SeriesStore
	TierStore
	RateStore
	EventStore
	ConnectionStore
}
