// Package chapters serves the reader-facing chapter surface: listing,
// read-access checks, paid unlocks and scheduled releases.
package chapters

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/handlers"
	"github.com/dashibook/chapter-monetization/pkg/mapping"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/scheduler"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/websockets"
)

// Access is the slice of the access service the chapter handlers need.
type Access interface {
	PublishedChapters(ctx context.Context, seriesID string) ([]models.Chapter, error)
	CanRead(ctx context.Context, userID, seriesID, chapterID string) (bool, error)
}

// Unlocker is the slice of the ledger service the unlock handler needs.
type Unlocker interface {
	UnlockChapter(ctx context.Context, userID string, chapter *models.Chapter) (*models.Wallet, error)
}

// Creditor routes an unlock's proceeds to the series' author.
type Creditor interface {
	ReceiveKanaRevenue(ctx context.Context, authorID string, chapter *models.Chapter, rate *models.CommissionRate, fx *models.KanaExchangeRate) (*models.RevenueTransaction, error)
}

// Store is the storage surface the chapter handlers need.
type Store interface {
	storage.ChapterStore
	storage.SeriesStore
	storage.RateStore
	storage.UnlockStore
}

// ChaptersHandler holds the dependencies for chapter-related handlers.
type ChaptersHandler struct {
	Store     Store
	Access    Access
	Unlocker  Unlocker
	Creditor  Creditor
	Scheduler scheduler.ReleaseScheduler
	Publisher websockets.Publisher
}

// NewChaptersHandler creates a new ChaptersHandler.
func NewChaptersHandler(store Store, access Access, unlocker Unlocker, creditor Creditor, sched scheduler.ReleaseScheduler, publisher websockets.Publisher) *ChaptersHandler {
	return &ChaptersHandler{
		Store:     store,
		Access:    access,
		Unlocker:  unlocker,
		Creditor:  creditor,
		Scheduler: sched,
		Publisher: publisher,
	}
}

// ListChapters handles the logic for listing a series' visible chapters.
// Readers and guests see the same list; access is decided per chapter at
// read time.
func (h *ChaptersHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesId")

	domainChapters, err := h.Access.PublishedChapters(r.Context(), seriesID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiChapters := make([]*api.Chapter, len(domainChapters))
	for i, chapter := range domainChapters {
		apiChapters[i] = mapping.ToApiChapter(&chapter)
	}

	handlers.RespondJSON(w, http.StatusOK, apiChapters)
}

// CheckAccess handles the logic for a chapter read-access check. Guests get
// a decision too; the answer is a 200 either way so the client can render
// the paywall.
func (h *ChaptersHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesId")
	chapterID := chi.URLParam(r, "chapterId")
	userID := handlers.UserID(r)

	allowed, err := h.Access.CanRead(r.Context(), userID, seriesID, chapterID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	decision := api.AccessDecision{Allowed: allowed}
	if !allowed {
		decision.Reason = "chapter is locked"
	}
	handlers.RespondJSON(w, http.StatusOK, decision)
}

// UnlockChapter handles the logic for purchasing a chapter with kana. The
// author's cut is credited after the debit succeeds.
func (h *ChaptersHandler) UnlockChapter(w http.ResponseWriter, r *http.Request) {
	chapterID := chi.URLParam(r, "chapterId")
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	chapter, err := h.Store.GetChapter(r.Context(), chapterID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	updatedWallet, err := h.Unlocker.UnlockChapter(r.Context(), userID, chapter)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	h.creditAuthor(r.Context(), chapter)

	if err := h.Publisher.Publish(r.Context(), websockets.Message{
		Type: websockets.MessageTypeChapterUnlocked,
		Payload: websockets.ChapterUnlockedPayload{
			UserID:    userID,
			ChapterID: chapter.Id,
			SeriesID:  chapter.SeriesId,
		},
	}); err != nil {
		slog.Error("failed to publish unlock", "error", err)
	}

	handlers.RespondJSON(w, http.StatusCreated, mapping.ToApiWallet(updatedWallet))
}

// creditAuthor converts the unlock price into author revenue. The reader's
// debit is already committed, so a failure here is logged for reconciliation
// rather than surfaced to the reader.
func (h *ChaptersHandler) creditAuthor(ctx context.Context, chapter *models.Chapter) {
	series, err := h.Store.GetSeries(ctx, chapter.SeriesId)
	if err != nil {
		slog.Error("failed to load series for revenue credit", "series_id", chapter.SeriesId, "error", err)
		return
	}
	rate, err := h.Store.GetCommissionRate(ctx, models.KanaCommission)
	if err != nil {
		slog.Error("failed to load kana commission rate", "error", err)
		return
	}
	fx, err := h.Store.GetExchangeRate(ctx)
	if err != nil {
		slog.Error("failed to load kana exchange rate", "error", err)
		return
	}
	if _, err := h.Creditor.ReceiveKanaRevenue(ctx, series.AuthorId, chapter, rate, fx); err != nil {
		slog.Error("failed to credit kana revenue", "chapter_id", chapter.Id, "author_id", series.AuthorId, "error", err)
	}
}

// ListUnlocked handles the logic for listing the caller's unlocked chapters.
func (h *ChaptersHandler) ListUnlocked(w http.ResponseWriter, r *http.Request) {
	userID := handlers.UserID(r)
	if userID == "" {
		handlers.RespondUnauthorized(w)
		return
	}

	domainUnlocks, err := h.Store.ListUnlockedChapters(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}

	apiUnlocks := make([]*api.UnlockedChapter, len(domainUnlocks))
	for i, unlock := range domainUnlocks {
		apiUnlocks[i] = mapping.ToApiUnlockedChapter(&unlock)
	}

	handlers.RespondJSON(w, http.StatusOK, apiUnlocks)
}

// ScheduleRelease handles the logic for scheduling a chapter version's
// release. The chapter stays invisible until the release worker publishes it.
func (h *ChaptersHandler) ScheduleRelease(w http.ResponseWriter, r *http.Request) {
	seriesID := chi.URLParam(r, "seriesId")
	chapterID := chi.URLParam(r, "chapterId")

	var req api.ScheduleReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondBadRequest(w, "invalid request body")
		return
	}
	if req.VersionId == "" {
		handlers.RespondBadRequest(w, "version_id is required")
		return
	}

	chapter, err := h.Store.GetChapter(r.Context(), chapterID)
	if err != nil {
		handlers.RespondError(w, err)
		return
	}
	if chapter.SeriesId != seriesID {
		handlers.RespondError(w, storage.ErrNotFound)
		return
	}

	release := &scheduler.ChapterRelease{
		ChapterId: chapterID,
		SeriesId:  seriesID,
		VersionId: req.VersionId,
		PublishAt: req.PublishAt,
	}
	if err := h.Scheduler.ScheduleRelease(r.Context(), release); err != nil {
		handlers.RespondError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
