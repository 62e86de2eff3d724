// Package subscriptions serves the DashiFan subscription surface: tier
// listing, signup, lifecycle actions and tier changes.
package subscriptions

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/mapping"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
)

// SubscriptionsHandler holds the dependencies for subscription handlers.
type SubscriptionsHandler struct {
	Service *subscription.Service
	Store   storage.SubscriptionStore
	Tiers   storage.TierStore
}

// NewSubscriptionsHandler creates a new SubscriptionsHandler.
func NewSubscriptionsHandler(service *subscription.Service, store storage.SubscriptionStore, tiers storage.TierStore) *SubscriptionsHandler {
	return &SubscriptionsHandler{Service: service, Store: store, Tiers: tiers}
}

// ListTiers handles the logic for listing a series' active tiers.
func (h *SubscriptionsHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesId")

	domainTiers, err := h.Tiers.ListTiersBySeries(r.Context(), seriesID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiTiers := make([]*api.DashiFanTier, 0, len(domainTiers))
	for i := range domainTiers {
		if !domainTiers[i].Active {
			continue
		}
		apiTiers = append(apiTiers, mapping.ToApiTier(&domainTiers[i]))
	}

	handlers.RespondJSON(w, http.StatusOK, apiTiers)
}

// ListSubscriptions handles the logic for listing the caller's subscriptions.
func (h *SubscriptionsHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	domainSubs, err := h.Store.ListSubscriptionsByUser(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiSubs := make([]*api.Subscription, len(domainSubs))
	for i := range domainSubs {
		apiSubs[i] = mapping.ToApiSubscription(&domainSubs[i])
	}

	handlers.RespondJSON(w, http.StatusOK, apiSubs)
}

// CreateSubscription handles the logic for starting a subscription. The
// response carries the provider's approval URL; the subscription stays
// Pending until the provider's activation webhook lands.
func (h *SubscriptionsHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	var req api.NewSubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}
	if req.TierId == "" {
		handlers.RespondBadRequest(w, "tier_id is required")
		return
	}

	result, err := h.Service.Create(r.Context(), userID, req.TierId, req.ReturnURL, req.CancelURL)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, api.SubscriptionCreated{
		Subscription: mapping.ToApiSubscription(result.Subscription),
		ApproveUrl:   result.ApproveURL,
	})
}

// owned loads the addressed subscription and checks it belongs to the
// caller. Someone else's subscription looks like a missing one.
func (h *SubscriptionsHandler) owned(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return "", false
	}

	subID := chi.URLParam(r, "subscriptionId")
	sub, err := h.Store.GetSubscription(r.Context(), subID)
	if err != nil {
		handlers.RespondError(w, err)
		return "", false
	}
	if sub.UserId != userID {
		handlers.RespondError(w, storage.ErrNotFound)
		return "", false
	}
	return subID, true
}

// CancelSubscription handles the logic for cancelling a subscription. Access
// continues through the already-paid period.
func (h *SubscriptionsHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	subID, ok := h.owned(w, r)
	if !ok {
		return
	}

	sub, err := h.Service.Cancel(r.Context(), subID, "cancelled by subscriber")
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiSubscription(sub))
}

// ReactivateSubscription handles the logic for resuming a suspended
// subscription.
func (h *SubscriptionsHandler) ReactivateSubscription(w http.ResponseWriter, r *http.Request) {
	subID, ok := h.owned(w, r)
	if !ok {
		return
	}

	sub, err := h.Service.Reactivate(r.Context(), subID, "reactivated by subscriber")
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiSubscription(sub))
}

// UpgradeTier handles the logic for moving a subscription to a pricier tier
// in the same series. The price difference is charged immediately.
func (h *SubscriptionsHandler) UpgradeTier(w http.ResponseWriter, r *http.Request) {
	subID, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req api.ChangeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}

	sub, err := h.Service.UpgradeTier(r.Context(), subID, req.TierId)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiSubscription(sub))
}

// DowngradeTier handles the logic for moving a subscription to a cheaper
// tier in the same series. Takes effect without an extra charge.
func (h *SubscriptionsHandler) DowngradeTier(w http.ResponseWriter, r *http.Request) {
	subID, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req api.ChangeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}

	sub, err := h.Service.DowngradeTier(r.Context(), subID, req.TierId)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiSubscription(sub))
}
