package subscriptions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/handlers/subscriptions"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	paymocks "github.com/dashibook/chapter-monetization/pkg/payments/mocks"
	"github.com/dashibook/chapter-monetization/pkg/storage/mocks"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
)

func newHandler(store *mocks.Storage, provider *paymocks.Provider) *subscriptions.SubscriptionsHandler {
	svc := subscription.New(store, provider)
	return subscriptions.NewSubscriptionsHandler(svc, store, store)
}

func asUser(req *http.Request, userID string) *http.Request {
	req.Header.Set(handlers.UserIDHeader, userID)
	return req
}

func withSubscriptionID(req *http.Request, subID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("subscriptionId", subID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestListTiers(t *testing.T) {
	mockStorage := new(mocks.Storage)
	mockStorage.On("ListTiersBySeries", mock.Anything, "s1").Return([]models.DashiFanTier{
		{Id: "tier1", SeriesId: "s1", Name: "Supporter", Active: true},
		{Id: "tier0", SeriesId: "s1", Name: "Retired", Active: false},
	}, nil)

	h := newHandler(mockStorage, new(paymocks.Provider))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("seriesId", "s1")
	req := httptest.NewRequest(http.MethodGet, "/series/s1/tiers", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rr := httptest.NewRecorder()

	h.ListTiers(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []api.DashiFanTier
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "tier1", got[0].Id)
}

func TestCreateSubscription(t *testing.T) {
	tier := &models.DashiFanTier{
		Id:       "tier1",
		SeriesId: "s1",
		Price:    models.Price{Amount: decimal.NewFromFloat(4.99), Currency: "USD"},
		Active:   true,
	}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		provider := new(paymocks.Provider)
		mockStorage.On("GetTier", mock.Anything, "tier1").Return(tier, nil)
		mockStorage.On("ListSubscriptionsByUser", mock.Anything, "user-c").Return(nil, nil)
		provider.On("CreateSubscription", mock.Anything, mock.Anything, "user-c", mock.Anything, mock.Anything).
			Return(&payments.ProviderSubscription{Id: "psub1", ApproveURL: "http://approve"}, nil)
		mockStorage.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		h := newHandler(mockStorage, provider)

		body, _ := json.Marshal(api.NewSubscription{TierId: "tier1", ReturnURL: "http://r", CancelURL: "http://c"})
		req := asUser(httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.CreateSubscription(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got api.SubscriptionCreated
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "http://approve", got.ApproveUrl)
		assert.Equal(t, string(models.SubscriptionPending), got.Subscription.Status)
	})

	t.Run("Guest", func(t *testing.T) {
		h := newHandler(new(mocks.Storage), new(paymocks.Provider))

		body, _ := json.Marshal(api.NewSubscription{TierId: "tier1"})
		req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateSubscription(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Missing TierId", func(t *testing.T) {
		h := newHandler(new(mocks.Storage), new(paymocks.Provider))

		body, _ := json.Marshal(api.NewSubscription{})
		req := asUser(httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.CreateSubscription(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Already Subscribed", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetTier", mock.Anything, "tier1").Return(tier, nil)
		mockStorage.On("ListSubscriptionsByUser", mock.Anything, "user-c").Return([]models.Subscription{
			{Id: "sub0", UserId: "user-c", SeriesId: "s1", Status: models.SubscriptionActive},
		}, nil)

		h := newHandler(mockStorage, new(paymocks.Provider))

		body, _ := json.Marshal(api.NewSubscription{TierId: "tier1"})
		req := asUser(httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.CreateSubscription(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestCancelSubscription(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		provider := new(paymocks.Provider)
		sub := &models.Subscription{Id: "sub1", UserId: "user-c", ProviderSubId: "psub1", Status: models.SubscriptionActive}
		mockStorage.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		provider.On("CancelSubscription", mock.Anything, "psub1", mock.Anything).Return(nil)
		mockStorage.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		h := newHandler(mockStorage, provider)

		req := asUser(withSubscriptionID(httptest.NewRequest(http.MethodPost, "/subscriptions/sub1/cancel", nil), "sub1"), "user-c")
		rr := httptest.NewRecorder()

		h.CancelSubscription(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got api.Subscription
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, string(models.SubscriptionCancelled), got.Status)
	})

	t.Run("Someone Elses Subscription Looks Missing", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		sub := &models.Subscription{Id: "sub1", UserId: "user-other", Status: models.SubscriptionActive}
		mockStorage.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		h := newHandler(mockStorage, new(paymocks.Provider))

		req := asUser(withSubscriptionID(httptest.NewRequest(http.MethodPost, "/subscriptions/sub1/cancel", nil), "sub1"), "user-c")
		rr := httptest.NewRecorder()

		h.CancelSubscription(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Expired Subscription Conflicts", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		sub := &models.Subscription{Id: "sub1", UserId: "user-c", Status: models.SubscriptionExpired}
		mockStorage.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		h := newHandler(mockStorage, new(paymocks.Provider))

		req := asUser(withSubscriptionID(httptest.NewRequest(http.MethodPost, "/subscriptions/sub1/cancel", nil), "sub1"), "user-c")
		rr := httptest.NewRecorder()

		h.CancelSubscription(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestUpgradeTier(t *testing.T) {
	t.Run("Cheaper Tier Rejected", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		sub := &models.Subscription{Id: "sub1", UserId: "user-c", TierId: "tier2", SeriesId: "s1", Status: models.SubscriptionActive}
		mockStorage.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		mockStorage.On("GetTier", mock.Anything, "tier2").Return(&models.DashiFanTier{
			Id: "tier2", SeriesId: "s1", Price: models.Price{Amount: decimal.NewFromFloat(9.99), Currency: "USD"},
		}, nil)
		mockStorage.On("GetTier", mock.Anything, "tier1").Return(&models.DashiFanTier{
			Id: "tier1", SeriesId: "s1", Price: models.Price{Amount: decimal.NewFromFloat(4.99), Currency: "USD"},
		}, nil)

		h := newHandler(mockStorage, new(paymocks.Provider))

		body, _ := json.Marshal(api.ChangeTierRequest{TierId: "tier1"})
		req := asUser(withSubscriptionID(httptest.NewRequest(http.MethodPost, "/subscriptions/sub1/upgrade", bytes.NewReader(body)), "sub1"), "user-c")
		rr := httptest.NewRecorder()

		h.UpgradeTier(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
