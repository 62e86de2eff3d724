package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeWalletUpdate is for messages that update kana balances.
	MessageTypeWalletUpdate MessageType = "walletUpdate"

	// MessageTypeRevenueUpdate is for messages that update author revenue.
	MessageTypeRevenueUpdate MessageType = "revenueUpdate"

	// MessageTypeChapterUnlocked is for messages announcing a chapter unlock.
	MessageTypeChapterUnlocked MessageType = "chapterUnlocked"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// WalletUpdatePayload is the payload for a walletUpdate message.
type WalletUpdatePayload struct {
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	Currency      string `json:"currency"`
	Change        int64  `json:"change"`
	NewBalance    int64  `json:"new_balance"`
}

// RevenueUpdatePayload is the payload for a revenueUpdate message.
type RevenueUpdatePayload struct {
	AuthorID      string `json:"author_id"`
	TransactionID string `json:"transaction_id"`
	Change        string `json:"change"`
	NewRevenue    string `json:"new_revenue"`
}

// ChapterUnlockedPayload is the payload for a chapterUnlocked message.
type ChapterUnlockedPayload struct {
	UserID    string `json:"user_id"`
	ChapterID string `json:"chapter_id"`
	SeriesID  string `json:"series_id"`
}
