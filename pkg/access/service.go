package access

import (
	"context"
	"fmt"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

// Store is the storage surface the access service needs.
type Store interface {
	storage.ChapterStore
	storage.TierStore
	storage.SubscriptionReader
	storage.UnlockStore
}

// Service assembles reader state from storage and runs the access decision.
// Decisions are recomputed per request; nothing is cached against reads.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new access Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// PublishedChapters returns the series' chapters visible at the given time,
// in (volume, chapter) order. Scheduled chapters whose release date has not
// arrived are excluded, the same way they are excluded from read access.
func (s *Service) PublishedChapters(ctx context.Context, seriesID string) ([]models.Chapter, error) {
	chapters, err := s.store.ListChaptersBySeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	now := s.now()
	published := chapters[:0]
	for _, c := range chapters {
		if c.Published(now) {
			published = append(published, c)
		}
	}
	return published, nil
}

// loadReader builds the reader's per-series state: qualifying subscriptions
// joined with tier perks, and the unlocked-chapter set.
func (s *Service) loadReader(ctx context.Context, userID, seriesID string) (*Reader, error) {
	subs, err := s.store.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	reader := &Reader{UserId: userID, Unlocked: make(map[string]bool)}
	for i := range subs {
		if subs[i].SeriesId != seriesID {
			continue
		}
		tier, err := s.store.GetTier(ctx, subs[i].TierId)
		if err != nil {
			return nil, fmt.Errorf("failed to get tier %s: %w", subs[i].TierId, err)
		}
		reader.Subscriptions = append(reader.Subscriptions, SeriesSubscription{
			Status:        subs[i].Status,
			NextBillingAt: subs[i].NextBillingAt,
			Perks:         tier.Perks,
		})
	}

	unlocks, err := s.store.ListUnlockedChapters(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked chapters: %w", err)
	}
	for _, u := range unlocks {
		reader.Unlocked[u.ChapterId] = true
	}

	return reader, nil
}

// CanRead decides whether the reader may view the chapter. userID may be
// empty for anonymous readers.
func (s *Service) CanRead(ctx context.Context, userID, seriesID, chapterID string) (bool, error) {
	chapters, err := s.PublishedChapters(ctx, seriesID)
	if err != nil {
		return false, err
	}

	allowed, err := GuestAllowed(chapters, chapterID)
	if err != nil {
		return false, err
	}
	if allowed {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}

	reader, err := s.loadReader(ctx, userID, seriesID)
	if err != nil {
		return false, err
	}
	return UserAllowed(reader, chapters, chapterID, s.now())
}
