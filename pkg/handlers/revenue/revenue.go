// Package revenue serves the author-facing revenue surface: ledger listing
// and withdrawals.
package revenue

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/mapping"
	"github.com/dashibook/chapter-monetization/pkg/revenue"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/websockets"
)

// RevenueHandler holds the dependencies for revenue-related handlers.
type RevenueHandler struct {
	Service   *revenue.Service
	Store     storage.RevenueLedgerStore
	Wallets   storage.WalletStore
	Publisher websockets.Publisher
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(service *revenue.Service, store storage.RevenueLedgerStore, wallets storage.WalletStore, publisher websockets.Publisher) *RevenueHandler {
	return &RevenueHandler{Service: service, Store: store, Wallets: wallets, Publisher: publisher}
}

// ListTransactions handles the logic for listing the caller's revenue
// ledger, most recent first.
func (h *RevenueHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	authorID := handlers.UserID(r)
	if authorID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	domainTxs, err := h.Store.ListRevenueTransactions(r.Context(), authorID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiTxs := make([]*api.RevenueTransaction, len(domainTxs))
	for i := range domainTxs {
		apiTxs[i] = mapping.ToApiRevenueTransaction(&domainTxs[i])
	}

	handlers.RespondJSON(w, http.StatusOK, apiTxs)
}

// Withdraw handles the logic for withdrawing revenue to the caller's payout
// account.
func (h *RevenueHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	authorID := handlers.UserID(r)
	if authorID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	var req api.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		handlers.RespondBadRequest(w, "invalid amount")
		return
	}
	if req.AccountId == "" {
		handlers.RespondBadRequest(w, "account_id is required")
		return
	}

	tx, err := h.Service.WithdrawRevenue(r.Context(), authorID, amount, req.AccountId)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	wallet, err := h.Wallets.GetWallet(r.Context(), authorID)
	if err == nil {
		if err := h.Publisher.Publish(r.Context(), websockets.Message{
			Type: websockets.MessageTypeRevenueUpdate,
			Payload: websockets.RevenueUpdatePayload{
				AuthorID:      authorID,
				TransactionID: tx.Id,
				Change:        tx.Amount.StringFixed(2),
				NewRevenue:    wallet.Revenue.StringFixed(2),
			},
		}); err != nil {
			slog.Error("failed to publish revenue update", "error", err)
		}
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiRevenueTransaction(tx))
}
