package tasks

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/catalog"
)

// CoverLister is the slice of the filestore the sweep needs.
type CoverLister interface {
	ListOlderThan(cutoff time.Time) ([]string, error)
	Delete(handle string) error
}

// SweepCoversHandler reconciles the uploads directory against the books
// table: files no row references get removed. Inline deletion on book
// update/delete already handles the common case; this catches blobs leaked
// by crashes between the two writes.
type SweepCoversHandler struct {
	books  catalog.BookRepository
	covers CoverLister
	grace  time.Duration
	logger *zap.Logger
}

func NewSweepCoversHandler(books catalog.BookRepository, covers CoverLister, grace time.Duration, logger *zap.Logger) *SweepCoversHandler {
	return &SweepCoversHandler{
		books:  books,
		covers: covers,
		grace:  grace,
		logger: logger.Named("SweepCoversHandler"),
	}
}

func (h *SweepCoversHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	referenced, err := h.books.ListCovers(ctx)
	if err != nil {
		h.logger.Error("Sweep failed to list referenced covers", zap.Error(err))
		return err
	}

	inUse := make(map[string]struct{}, len(referenced))
	for _, handle := range referenced {
		inUse[handle] = struct{}{}
	}

	// Fresh files may belong to an upload whose row has not landed yet.
	candidates, err := h.covers.ListOlderThan(time.Now().Add(-h.grace))
	if err != nil {
		h.logger.Error("Sweep failed to list stored covers", zap.Error(err))
		return err
	}

	removed := 0
	for _, handle := range candidates {
		if _, ok := inUse[handle]; ok {
			continue
		}
		if err := h.covers.Delete(handle); err != nil {
			h.logger.Warn("Sweep failed to delete orphaned cover", zap.String("handle", handle), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		h.logger.Info("Swept orphaned covers", zap.Int("removed", removed))
	}
	return nil
}
