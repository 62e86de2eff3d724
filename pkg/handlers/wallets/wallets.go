package wallets

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/mapping"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/websockets"
)

// Ledger is the slice of the ledger service the wallet handlers need.
type Ledger interface {
	AddTransaction(ctx context.Context, tx *models.KanaTransaction) (*models.Wallet, error)
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Store     storage.WalletStore
	TxStore   storage.KanaLedgerStore
	Ledger    Ledger
	Publisher websockets.Publisher
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(store storage.WalletStore, txStore storage.KanaLedgerStore, ledger Ledger, publisher websockets.Publisher) *WalletsHandler {
	return &WalletsHandler{Store: store, TxStore: txStore, Ledger: ledger, Publisher: publisher}
}

// CreateWallet handles the logic for creating a new wallet.
func (h *WalletsHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var newWallet api.NewWallet
	if err := json.NewDecoder(r.Body).Decode(&newWallet); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}
	if newWallet.UserId == "" {
		handlers.RespondBadRequest(w, "user_id is required")
		return
	}

	createdWallet, err := h.Store.CreateWallet(r.Context(), &models.Wallet{
		UserId:    newWallet.UserId,
		Version:   1,
		CreatedAt: time.Now(),
	})
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiWallet(createdWallet))
}

// GetWallet handles the logic for retrieving the caller's wallet.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	domainWallet, err := h.Store.GetWallet(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiWallet(domainWallet))
}

// ListTransactions handles the logic for listing the caller's kana ledger,
// most recent first.
func (h *WalletsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	domainTxs, err := h.TxStore.ListKanaTransactions(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiTxs := make([]*api.KanaTransaction, len(domainTxs))
	for i, tx := range domainTxs {
		apiTxs[i] = mapping.ToApiKanaTransaction(&tx)
	}

	handlers.RespondJSON(w, http.StatusOK, apiTxs)
}

// AddTransaction handles the logic for appending an earn entry to the
// caller's kana ledger: top-ups, check-in rewards and mission rewards.
// Spend entries only come from chapter unlocks.
func (h *WalletsHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	var newTx api.NewKanaTransaction
	if err := json.NewDecoder(r.Body).Decode(&newTx); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}

	domainTx := mapping.ToDomainNewKanaTransaction(userID, &newTx)
	if !domainTx.Type.Earns() {
		handlers.RespondForbidden(w, "spend entries are created by chapter unlocks")
		return
	}

	updatedWallet, err := h.Ledger.AddTransaction(r.Context(), domainTx)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	// The ledger write already succeeded; a lost dashboard update is not
	// worth failing the request over.
	if err := h.Publisher.Publish(r.Context(), websockets.Message{
		Type: websockets.MessageTypeWalletUpdate,
		Payload: websockets.WalletUpdatePayload{
			UserID:        userID,
			TransactionID: domainTx.Id,
			Currency:      string(domainTx.Currency),
			Change:        domainTx.Amount,
			NewBalance:    updatedWallet.KanaBalance(domainTx.Currency),
		},
	}); err != nil {
		slog.Error("failed to publish wallet update", "error", err)
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiWallet(updatedWallet))
}
