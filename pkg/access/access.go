package access

import (
	"fmt"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

// SeriesSubscription is the reader's view of one subscription to the series
// being checked, joined with its tier's perks.
type SeriesSubscription struct {
	Status        models.SubscriptionStatus
	NextBillingAt *time.Time
	Perks         int
}

func (s *SeriesSubscription) countsAsSubscribed(now time.Time) bool {
	sub := models.Subscription{Status: s.Status, NextBillingAt: s.NextBillingAt}
	return sub.CountsAsSubscribed(now)
}

// Reader is the authenticated reader's state relevant to one series.
type Reader struct {
	UserId        string
	Subscriptions []SeriesSubscription
	Unlocked      map[string]bool
}

// Subscribed reports whether any of the reader's subscriptions to the series
// currently counts: Active, or Cancelled inside the grace period.
func (r *Reader) Subscribed(now time.Time) bool {
	for i := range r.Subscriptions {
		if r.Subscriptions[i].countsAsSubscribed(now) {
			return true
		}
	}
	return false
}

// bestPerks returns the highest perks count among the reader's qualifying
// subscriptions, or -1 if none qualifies.
func (r *Reader) bestPerks(now time.Time) int {
	best := -1
	for i := range r.Subscriptions {
		s := &r.Subscriptions[i]
		if s.countsAsSubscribed(now) && s.Perks > best {
			best = s.Perks
		}
	}
	return best
}

// findChapter locates a chapter in the published list.
func findChapter(chapters []models.Chapter, chapterID string) (*models.Chapter, error) {
	for i := range chapters {
		if chapters[i].Id == chapterID {
			return &chapters[i], nil
		}
	}
	return nil, fmt.Errorf("chapter %s: %w", chapterID, storage.ErrNotFound)
}

// GuestAllowed decides read access for an anonymous reader. The chapter list
// must contain only published chapters; an id absent from it is not found.
// A guest may read a chapter iff it is not an advance chapter and has no
// price.
func GuestAllowed(chapters []models.Chapter, chapterID string) (bool, error) {
	chapter, err := findChapter(chapters, chapterID)
	if err != nil {
		return false, err
	}
	return !chapter.IsAdvance && chapter.Free(), nil
}

// AdvanceWindow returns the first n advance chapters of the series in
// (volume, chapter) order. The window is anchored at the start of the
// advance list regardless of the reader's progress, so a tier with perks=n
// always exposes exactly the same n chapters.
func AdvanceWindow(chapters []models.Chapter, n int) []models.Chapter {
	if n <= 0 {
		return nil
	}
	window := make([]models.Chapter, 0, n)
	for i := range chapters {
		if !chapters[i].IsAdvance {
			continue
		}
		window = append(window, chapters[i])
		if len(window) == n {
			break
		}
	}
	return window
}

// UserAllowed decides read access for an authenticated reader, evaluated only
// after GuestAllowed returned false. The chapter list must be the series'
// published chapters in (volume, chapter) order.
//
// Non-advance chapters are readable by subscribers and by readers who
// unlocked them. Advance chapters are never granted by the plain subscriber
// check or the unlocked set: access goes exclusively through the perks
// window of the reader's best qualifying tier. Keep it that way; unifying
// the two paths changes which chapters a subscriber can see.
func UserAllowed(reader *Reader, chapters []models.Chapter, chapterID string, now time.Time) (bool, error) {
	chapter, err := findChapter(chapters, chapterID)
	if err != nil {
		return false, err
	}

	if !chapter.IsAdvance {
		if reader.Subscribed(now) {
			return true, nil
		}
		return reader.Unlocked[chapterID], nil
	}

	perks := reader.bestPerks(now)
	if perks < 0 {
		return false, nil
	}
	for _, c := range AdvanceWindow(chapters, perks) {
		if c.Id == chapterID {
			return true, nil
		}
	}
	return false, nil
}

// CanRead composes the guest and authenticated checks. userID may be empty
// for anonymous readers; reader state is ignored for the guest path.
func CanRead(reader *Reader, chapters []models.Chapter, chapterID string, now time.Time) (bool, error) {
	allowed, err := GuestAllowed(chapters, chapterID)
	if err != nil {
		return false, err
	}
	if allowed {
		return true, nil
	}
	if reader == nil || reader.UserId == "" {
		return false, nil
	}
	return UserAllowed(reader, chapters, chapterID, now)
}
