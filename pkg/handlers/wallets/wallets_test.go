package wallets_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/handlers/wallets"
	"github.com/dashibook/chapter-monetization/pkg/ledger"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/storage/mocks"
	"github.com/dashibook/chapter-monetization/pkg/websockets"
)

type fakeLedger struct {
	wallet *models.Wallet
	err    error
}

func (f *fakeLedger) AddTransaction(ctx context.Context, tx *models.KanaTransaction) (*models.Wallet, error) {
	if f.err != nil {
		return nil, f.err
	}
	tx.Id = "tx1"
	return f.wallet, nil
}

func newHandler(store *mocks.Storage, l wallets.Ledger) *wallets.WalletsHandler {
	return wallets.NewWalletsHandler(store, store, l, &websockets.NoOpPublisher{})
}

func asUser(req *http.Request, userID string) *http.Request {
	req.Header.Set(handlers.UserIDHeader, userID)
	return req
}

func TestCreateWallet(t *testing.T) {
	expectedWallet := &models.Wallet{UserId: "user-c", Version: 1}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateWallet", mock.Anything, mock.Anything).Return(expectedWallet, nil)

		h := newHandler(mockStorage, &fakeLedger{})

		body, _ := json.Marshal(api.NewWallet{UserId: "user-c"})
		req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateWallet(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Missing UserId", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		h := newHandler(mockStorage, &fakeLedger{})

		body, _ := json.Marshal(api.NewWallet{})
		req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateWallet(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockStorage.AssertNotCalled(t, "CreateWallet", mock.Anything, mock.Anything)
	})

	t.Run("Already Exists", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("CreateWallet", mock.Anything, mock.Anything).Return(nil, storage.ErrWalletExists)

		h := newHandler(mockStorage, &fakeLedger{})

		body, _ := json.Marshal(api.NewWallet{UserId: "user-c"})
		req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.CreateWallet(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestGetWallet(t *testing.T) {
	expectedWallet := &models.Wallet{UserId: "user-c", CoinBalance: 100, GoldBalance: 50, Version: 2}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("GetWallet", mock.Anything, "user-c").Return(expectedWallet, nil)

		h := newHandler(mockStorage, &fakeLedger{})

		req := asUser(httptest.NewRequest(http.MethodGet, "/wallet", nil), "user-c")
		rr := httptest.NewRecorder()

		h.GetWallet(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var got api.Wallet
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(100), got.CoinBalance)
		assert.Equal(t, int64(50), got.GoldBalance)
		mockStorage.AssertExpectations(t)
	})

	t.Run("Guest", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		h := newHandler(mockStorage, &fakeLedger{})

		req := httptest.NewRequest(http.MethodGet, "/wallet", nil)
		rr := httptest.NewRecorder()

		h.GetWallet(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockStorage.AssertNotCalled(t, "GetWallet", mock.Anything, mock.Anything)
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		mockStorage.On("ListKanaTransactions", mock.Anything, "user-c").Return([]models.KanaTransaction{
			{Id: "tx1", UserId: "user-c", Currency: models.Coin, Type: models.KanaCheckin, Amount: 10},
		}, nil)

		h := newHandler(mockStorage, &fakeLedger{})

		req := asUser(httptest.NewRequest(http.MethodGet, "/wallet/transactions", nil), "user-c")
		rr := httptest.NewRecorder()

		h.ListTransactions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockStorage.AssertExpectations(t)
	})
}

func TestAddTransaction(t *testing.T) {
	newTx := api.NewKanaTransaction{Currency: "GOLD", Type: "TOPUP", Amount: 500, Reason: "gold purchase"}

	t.Run("Success", func(t *testing.T) {
		mockStorage := new(mocks.Storage)
		l := &fakeLedger{wallet: &models.Wallet{UserId: "user-c", GoldBalance: 500}}
		h := newHandler(mockStorage, l)

		body, _ := json.Marshal(newTx)
		req := asUser(httptest.NewRequest(http.MethodPost, "/wallet/transactions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.AddTransaction(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var got api.Wallet
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(500), got.GoldBalance)
	})

	t.Run("Guest", func(t *testing.T) {
		h := newHandler(new(mocks.Storage), &fakeLedger{})

		body, _ := json.Marshal(newTx)
		req := httptest.NewRequest(http.MethodPost, "/wallet/transactions", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		h.AddTransaction(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Spend Entries Rejected", func(t *testing.T) {
		h := newHandler(new(mocks.Storage), &fakeLedger{})

		spend := api.NewKanaTransaction{Currency: "COIN", Type: "SPEND", Amount: -60, Reason: "chapter unlock"}
		body, _ := json.Marshal(spend)
		req := asUser(httptest.NewRequest(http.MethodPost, "/wallet/transactions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.AddTransaction(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Bad Amount", func(t *testing.T) {
		l := &fakeLedger{err: ledger.ErrAmountSign}
		h := newHandler(new(mocks.Storage), l)

		bad := api.NewKanaTransaction{Currency: "COIN", Type: "CHECKIN", Amount: -5, Reason: "check-in"}
		body, _ := json.Marshal(bad)
		req := asUser(httptest.NewRequest(http.MethodPost, "/wallet/transactions", bytes.NewReader(body)), "user-c")
		rr := httptest.NewRecorder()

		h.AddTransaction(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
