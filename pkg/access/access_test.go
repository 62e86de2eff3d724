package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func published(t time.Time) *time.Time { return &t }

// series fixture: two free chapters, two paid, three advance, all published,
// already in (volume, chapter) order.
func testChapters() []models.Chapter {
	at := published(now.Add(-24 * time.Hour))
	return []models.Chapter{
		{Id: "free1", SeriesId: "s1", VolumeNumber: 1, ChapterNumber: 1, PublishedVersionId: "v1", PublishedAt: at},
		{Id: "free2", SeriesId: "s1", VolumeNumber: 1, ChapterNumber: 2, PublishedVersionId: "v1", PublishedAt: at},
		{Id: "paid1", SeriesId: "s1", VolumeNumber: 1, ChapterNumber: 3, PublishedVersionId: "v1", PublishedAt: at, KanaPrice: 50},
		{Id: "paid2", SeriesId: "s1", VolumeNumber: 2, ChapterNumber: 1, PublishedVersionId: "v1", PublishedAt: at, KanaPrice: 50},
		{Id: "adv1", SeriesId: "s1", VolumeNumber: 2, ChapterNumber: 2, PublishedVersionId: "v1", PublishedAt: at, KanaPrice: 50, IsAdvance: true},
		{Id: "adv2", SeriesId: "s1", VolumeNumber: 2, ChapterNumber: 3, PublishedVersionId: "v1", PublishedAt: at, KanaPrice: 50, IsAdvance: true},
		{Id: "adv3", SeriesId: "s1", VolumeNumber: 3, ChapterNumber: 1, PublishedVersionId: "v1", PublishedAt: at, KanaPrice: 50, IsAdvance: true},
	}
}

func TestGuestAllowed(t *testing.T) {
	chapters := testChapters()

	t.Run("Free Chapter", func(t *testing.T) {
		allowed, err := GuestAllowed(chapters, "free1")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Paid Chapter", func(t *testing.T) {
		allowed, err := GuestAllowed(chapters, "paid1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Advance Chapter", func(t *testing.T) {
		allowed, err := GuestAllowed(chapters, "adv1")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Unknown Chapter", func(t *testing.T) {
		_, err := GuestAllowed(chapters, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestAdvanceWindow(t *testing.T) {
	chapters := testChapters()

	t.Run("Exact Size", func(t *testing.T) {
		window := AdvanceWindow(chapters, 2)
		require.Len(t, window, 2)
		assert.Equal(t, "adv1", window[0].Id)
		assert.Equal(t, "adv2", window[1].Id)
	})

	t.Run("Larger Than Advance List", func(t *testing.T) {
		window := AdvanceWindow(chapters, 10)
		assert.Len(t, window, 3)
	})

	t.Run("Zero Perks", func(t *testing.T) {
		assert.Empty(t, AdvanceWindow(chapters, 0))
	})
}

func TestUserAllowed(t *testing.T) {
	chapters := testChapters()

	activeSub := func(perks int) SeriesSubscription {
		return SeriesSubscription{Status: models.SubscriptionActive, Perks: perks}
	}

	t.Run("Subscriber Reads Paid Chapter", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{activeSub(0)}}
		allowed, err := UserAllowed(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Unlock Grants Paid Chapter", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Unlocked: map[string]bool{"paid2": true}}
		allowed, err := UserAllowed(reader, chapters, "paid2", now)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = UserAllowed(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Subscription Without Perks Never Grants Advance", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{activeSub(0)}}
		allowed, err := UserAllowed(reader, chapters, "adv1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Unlocked Set Never Grants Advance", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Unlocked: map[string]bool{"adv1": true}}
		allowed, err := UserAllowed(reader, chapters, "adv1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Perks Window Grants Exactly N Chapters", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{activeSub(2)}}

		for id, want := range map[string]bool{"adv1": true, "adv2": true, "adv3": false} {
			allowed, err := UserAllowed(reader, chapters, id, now)
			require.NoError(t, err)
			assert.Equal(t, want, allowed, "chapter %s", id)
		}
	})

	t.Run("Best Tier Wins Across Subscriptions", func(t *testing.T) {
		expired := SeriesSubscription{Status: models.SubscriptionExpired, Perks: 3}
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{expired, activeSub(1)}}

		allowed, err := UserAllowed(reader, chapters, "adv1", now)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = UserAllowed(reader, chapters, "adv2", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Cancelled In Grace Period Still Counts", func(t *testing.T) {
		billing := now.Add(time.Hour)
		graceSub := SeriesSubscription{Status: models.SubscriptionCancelled, NextBillingAt: &billing, Perks: 1}
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{graceSub}}

		allowed, err := UserAllowed(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = UserAllowed(reader, chapters, "adv1", now)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Cancelled Past Billing Date Does Not Count", func(t *testing.T) {
		billing := now.Add(-time.Minute)
		lapsed := SeriesSubscription{Status: models.SubscriptionCancelled, NextBillingAt: &billing, Perks: 1}
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{lapsed}}

		allowed, err := UserAllowed(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Suspended Does Not Count", func(t *testing.T) {
		suspended := SeriesSubscription{Status: models.SubscriptionSuspended, Perks: 3}
		reader := &Reader{UserId: "u1", Subscriptions: []SeriesSubscription{suspended}}

		allowed, err := UserAllowed(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestCanRead(t *testing.T) {
	chapters := testChapters()

	t.Run("Guest Free Chapter", func(t *testing.T) {
		allowed, err := CanRead(nil, chapters, "free2", now)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Guest Paid Chapter", func(t *testing.T) {
		allowed, err := CanRead(nil, chapters, "paid1", now)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Reader Falls Through To User Check", func(t *testing.T) {
		reader := &Reader{UserId: "u1", Unlocked: map[string]bool{"paid1": true}}
		allowed, err := CanRead(reader, chapters, "paid1", now)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
