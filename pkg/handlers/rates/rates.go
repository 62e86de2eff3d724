// Package rates serves the admin surface for commission and exchange rates.
package rates

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/mapping"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/rates"
)

// RatesHandler holds the dependencies for rate administration handlers.
type RatesHandler struct {
	Service *rates.Service
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(service *rates.Service) *RatesHandler {
	return &RatesHandler{Service: service}
}

// GetCommissionRate handles the logic for reading one commission rate.
func (h *RatesHandler) GetCommissionRate(w http.ResponseWriter, r *http.Request) {
	commissionType := models.CommissionType(chi.URLParam(r, "type"))

	rate, err := h.Service.GetCommissionRate(r.Context(), commissionType)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiCommissionRate(rate))
}

// PutCommissionRate handles the logic for updating one commission rate.
func (h *RatesHandler) PutCommissionRate(w http.ResponseWriter, r *http.Request) {
	commissionType := models.CommissionType(chi.URLParam(r, "type"))
	if commissionType != models.KanaCommission && commissionType != models.DashiFanCommission {
		handlers.RespondBadRequest(w, "unknown commission type")
		return
	}

	var req api.CommissionRate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}

	rate, err := h.Service.SetCommissionRate(r.Context(), commissionType, req.RatePercentage)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiCommissionRate(rate))
}

// GetExchangeRate handles the logic for reading the kana exchange rate.
func (h *RatesHandler) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Service.GetExchangeRate(r.Context())
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiExchangeRate(rate))
}

// PutExchangeRate handles the logic for updating the kana exchange rate.
func (h *RatesHandler) PutExchangeRate(w http.ResponseWriter, r *http.Request) {
	var req api.KanaExchangeRate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}
	rateValue, err := decimal.NewFromString(req.Rate)
	if err != nil {
		handlers.RespondBadRequest(w, "invalid rate")
		return
	}

	rate, err := h.Service.SetExchangeRate(r.Context(), rateValue, req.CurrencyCode)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, mapping.ToApiExchangeRate(rate))
}
