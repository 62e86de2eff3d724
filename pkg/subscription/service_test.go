package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	paymocks "github.com/dashibook/chapter-monetization/pkg/payments/mocks"
	"github.com/dashibook/chapter-monetization/pkg/storage/mocks"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *mocks.Storage, provider *paymocks.Provider) *Service {
	svc := New(store, provider)
	svc.now = func() time.Time { return testNow }
	return svc
}

func testTier() *models.DashiFanTier {
	return &models.DashiFanTier{
		Id:       "tier1",
		SeriesId: "s1",
		Name:     "Supporter",
		Price:    models.Price{Amount: decimal.NewFromFloat(4.99), Currency: "USD"},
		Perks:    2,
		Active:   true,
	}
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		store.On("GetTier", mock.Anything, "tier1").Return(testTier(), nil)
		store.On("ListSubscriptionsByUser", mock.Anything, "u1").Return(nil, nil)
		provider.On("CreateSubscription", mock.Anything, mock.Anything, "u1", "http://r", "http://c").
			Return(&payments.ProviderSubscription{Id: "psub1", ApproveURL: "http://approve"}, nil)
		store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Create(context.Background(), "u1", "tier1", "http://r", "http://c")

		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionPending, result.Subscription.Status)
		assert.Equal(t, "psub1", result.Subscription.ProviderSubId)
		assert.Equal(t, "s1", result.Subscription.SeriesId)
		assert.Equal(t, "http://approve", result.ApproveURL)
		store.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("Blocked By Active Subscription", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		existing := []models.Subscription{{Id: "sub0", UserId: "u1", SeriesId: "s1", Status: models.SubscriptionActive}}
		store.On("GetTier", mock.Anything, "tier1").Return(testTier(), nil)
		store.On("ListSubscriptionsByUser", mock.Anything, "u1").Return(existing, nil)

		_, err := svc.Create(context.Background(), "u1", "tier1", "", "")

		assert.ErrorIs(t, err, ErrAlreadySubscribed)
		provider.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Blocked By Cancelled In Grace Period", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		billing := testNow.Add(time.Hour)
		existing := []models.Subscription{{Id: "sub0", UserId: "u1", SeriesId: "s1", Status: models.SubscriptionCancelled, NextBillingAt: &billing}}
		store.On("GetTier", mock.Anything, "tier1").Return(testTier(), nil)
		store.On("ListSubscriptionsByUser", mock.Anything, "u1").Return(existing, nil)

		_, err := svc.Create(context.Background(), "u1", "tier1", "", "")

		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})

	t.Run("Cancels Stale Pending", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		existing := []models.Subscription{{Id: "sub0", UserId: "u1", SeriesId: "s1", Status: models.SubscriptionPending}}
		store.On("GetTier", mock.Anything, "tier1").Return(testTier(), nil)
		store.On("ListSubscriptionsByUser", mock.Anything, "u1").Return(existing, nil)
		store.On("PutSubscription", mock.Anything, mock.MatchedBy(func(sub *models.Subscription) bool {
			return sub.Id == "sub0" && sub.Status == models.SubscriptionCancelled
		})).Once().Return(nil)
		provider.On("CreateSubscription", mock.Anything, mock.Anything, "u1", "", "").
			Return(&payments.ProviderSubscription{Id: "psub2"}, nil)
		store.On("PutSubscription", mock.Anything, mock.MatchedBy(func(sub *models.Subscription) bool {
			return sub.Status == models.SubscriptionPending
		})).Once().Return(nil)

		_, err := svc.Create(context.Background(), "u1", "tier1", "", "")

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("Rejects Inactive Tier", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		retired := testTier()
		retired.Active = false
		store.On("GetTier", mock.Anything, "tier1").Return(retired, nil)

		_, err := svc.Create(context.Background(), "u1", "tier1", "", "")

		assert.ErrorIs(t, err, ErrTierInactive)
	})
}

func TestActivate(t *testing.T) {
	t.Run("Pending To Active", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		sub := &models.Subscription{Id: "sub1", Status: models.SubscriptionPending}
		billing := testNow.AddDate(0, 1, 0)
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		activated, err := svc.Activate(context.Background(), "sub1", billing)

		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, activated.Status)
		require.NotNil(t, activated.NextBillingAt)
		assert.Equal(t, billing, *activated.NextBillingAt)
	})

	t.Run("Already Active Is Idempotent", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		sub := &models.Subscription{Id: "sub1", Status: models.SubscriptionActive}
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		activated, err := svc.Activate(context.Background(), "sub1", testNow)

		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, activated.Status)
		store.AssertNotCalled(t, "PutSubscription", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Cancelled", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		sub := &models.Subscription{Id: "sub1", Status: models.SubscriptionCancelled}
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		_, err := svc.Activate(context.Background(), "sub1", testNow)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Run("Active To Cancelled Keeps Billing Date", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		billing := testNow.Add(72 * time.Hour)
		sub := &models.Subscription{Id: "sub1", ProviderSubId: "psub1", Status: models.SubscriptionActive, NextBillingAt: &billing}
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		provider.On("CancelSubscription", mock.Anything, "psub1", "bye").Return(nil)
		store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		cancelled, err := svc.Cancel(context.Background(), "sub1", "bye")

		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionCancelled, cancelled.Status)
		// The paid-for period still grants access.
		assert.True(t, cancelled.CountsAsSubscribed(testNow))
	})

	t.Run("Rejects Expired", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		sub := &models.Subscription{Id: "sub1", Status: models.SubscriptionExpired}
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		_, err := svc.Cancel(context.Background(), "sub1", "bye")

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestReactivate(t *testing.T) {
	store := new(mocks.Storage)
	provider := new(paymocks.Provider)
	svc := newTestService(store, provider)

	sub := &models.Subscription{Id: "sub1", ProviderSubId: "psub1", Status: models.SubscriptionSuspended}
	store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
	provider.On("ReactivateSubscription", mock.Anything, "psub1", "back").Return(nil)
	store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

	reactivated, err := svc.Reactivate(context.Background(), "sub1", "back")

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, reactivated.Status)
}

func TestTierChanges(t *testing.T) {
	cheap := testTier()
	expensive := &models.DashiFanTier{
		Id:       "tier2",
		SeriesId: "s1",
		Name:     "Patron",
		Price:    models.Price{Amount: decimal.NewFromFloat(9.99), Currency: "USD"},
		Perks:    5,
		Active:   true,
	}

	activeSub := func() *models.Subscription {
		return &models.Subscription{Id: "sub1", UserId: "u1", TierId: "tier1", SeriesId: "s1", Status: models.SubscriptionActive}
	}

	t.Run("Upgrade Charges Delta", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		store.On("GetSubscription", mock.Anything, "sub1").Return(activeSub(), nil)
		store.On("GetTier", mock.Anything, "tier1").Return(cheap, nil)
		store.On("GetTier", mock.Anything, "tier2").Return(expensive, nil)
		provider.On("CreateOrder", mock.Anything, mock.MatchedBy(func(price models.Price) bool {
			return price.Amount.Equal(decimal.NewFromFloat(5.00)) && price.Currency == "USD"
		})).Return(&payments.Order{Id: "order1"}, nil)
		provider.On("CaptureOrder", mock.Anything, "order1").Return(&payments.Order{Id: "order1", Status: "COMPLETED"}, nil)
		store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		upgraded, err := svc.UpgradeTier(context.Background(), "sub1", "tier2")

		require.NoError(t, err)
		assert.Equal(t, "tier2", upgraded.TierId)
		provider.AssertExpectations(t)
	})

	t.Run("Upgrade To Cheaper Tier Rejected", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		sub := activeSub()
		sub.TierId = "tier2"
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		store.On("GetTier", mock.Anything, "tier2").Return(expensive, nil)
		store.On("GetTier", mock.Anything, "tier1").Return(cheap, nil)

		_, err := svc.UpgradeTier(context.Background(), "sub1", "tier1")

		assert.ErrorIs(t, err, ErrInvalidTierChange)
		provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Downgrade Without Charge", func(t *testing.T) {
		store := new(mocks.Storage)
		provider := new(paymocks.Provider)
		svc := newTestService(store, provider)

		sub := activeSub()
		sub.TierId = "tier2"
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)
		store.On("GetTier", mock.Anything, "tier2").Return(expensive, nil)
		store.On("GetTier", mock.Anything, "tier1").Return(cheap, nil)
		store.On("PutSubscription", mock.Anything, mock.Anything).Return(nil)

		downgraded, err := svc.DowngradeTier(context.Background(), "sub1", "tier1")

		require.NoError(t, err)
		assert.Equal(t, "tier1", downgraded.TierId)
		provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Cross Series Tier", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		other := testTier()
		other.Id = "tier9"
		other.SeriesId = "s2"
		store.On("GetSubscription", mock.Anything, "sub1").Return(activeSub(), nil)
		store.On("GetTier", mock.Anything, "tier1").Return(cheap, nil)
		store.On("GetTier", mock.Anything, "tier9").Return(other, nil)

		_, err := svc.UpgradeTier(context.Background(), "sub1", "tier9")

		assert.ErrorIs(t, err, ErrInvalidTierChange)
	})

	t.Run("Rejects Non Active Subscription", func(t *testing.T) {
		store := new(mocks.Storage)
		svc := newTestService(store, new(paymocks.Provider))

		sub := activeSub()
		sub.Status = models.SubscriptionSuspended
		store.On("GetSubscription", mock.Anything, "sub1").Return(sub, nil)

		_, err := svc.DowngradeTier(context.Background(), "sub1", "tier2")

		assert.ErrorIs(t, err, ErrInvalidTierChange)
	})
}

func TestExpireLapsed(t *testing.T) {
	store := new(mocks.Storage)
	svc := newTestService(store, new(paymocks.Provider))

	past := testNow.Add(-time.Hour)
	lapsed := []models.Subscription{
		{Id: "sub1", Status: models.SubscriptionCancelled, NextBillingAt: &past},
		{Id: "sub2", Status: models.SubscriptionCancelled, NextBillingAt: &past},
	}
	store.On("ListLapsedCancelled", mock.Anything, testNow).Return(lapsed, nil)
	store.On("PutSubscription", mock.Anything, mock.MatchedBy(func(sub *models.Subscription) bool {
		return sub.Status == models.SubscriptionExpired
	})).Twice().Return(nil)

	expired, err := svc.ExpireLapsed(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	store.AssertExpectations(t)
}
