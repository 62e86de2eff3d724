package storage

import (
	"context"
	"time"

	"github.com/dashibook/chapter-monetization/pkg/models"
)

// ChapterStore defines the interface for the access-control view of chapters.
type ChapterStore interface {
	// GetChapter retrieves a chapter by its ID.
	GetChapter(ctx context.Context, chapterID string) (*models.Chapter, error)

	// ListChaptersBySeries retrieves all chapters of a series ordered by
	// volume number, then chapter number.
	ListChaptersBySeries(ctx context.Context, seriesID string) ([]models.Chapter, error)

	// PublishChapter points the chapter at a published version and stamps
	// its published time. The release worker uses this for scheduled
	// releases.
	PublishChapter(ctx context.Context, chapterID, versionID string, at time.Time) error
}

// SeriesStore defines the interface for the monetization view of series.
type SeriesStore interface {
	// GetSeries retrieves a series by its ID.
	GetSeries(ctx context.Context, seriesID string) (*models.Series, error)
}

// TierStore defines the interface for DashiFan tiers.
type TierStore interface {
	// GetTier retrieves a tier by its ID.
	GetTier(ctx context.Context, tierID string) (*models.DashiFanTier, error)

	// ListTiersBySeries retrieves all tiers offered for a series.
	ListTiersBySeries(ctx context.Context, seriesID string) ([]models.DashiFanTier, error)
}
