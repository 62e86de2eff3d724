package scheduler

import (
	"context"
	"time"
)

// ChapterRelease is the message enqueued when a chapter is scheduled for a
// future release. The release worker publishes the chapter once PublishAt
// has passed.
type ChapterRelease struct {
	ChapterId string    `json:"chapter_id"`
	SeriesId  string    `json:"series_id"`
	VersionId string    `json:"version_id"`
	PublishAt time.Time `json:"publish_at"`
}

// ReleaseScheduler defines the interface for a component that schedules a
// chapter release for later processing.
type ReleaseScheduler interface {
	// ScheduleRelease enqueues a chapter release for asynchronous processing.
	ScheduleRelease(ctx context.Context, release *ChapterRelease) error
}
