package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"geitems/internal/item"
	"geitems/internal/store"
)

// Policy decides what happens when an item already has an image
type Policy int

const (
	// PolicySkipExisting never touches an image that is already on disk
	PolicySkipExisting Policy = iota
	// PolicyOverwrite always resolves and replaces on success
	PolicyOverwrite
)

func (p Policy) String() string {
	if p == PolicyOverwrite {
		return "overwrite"
	}
	return "skip-existing"
}

// RecordStore persists item metadata
type RecordStore interface {
	ExistingIDs() (map[int]struct{}, error)
	Create(r item.Record) error
}

// ImageStore persists item images
type ImageStore interface {
	Exists(id int) (bool, error)
	Save(id int, data []byte) error
}

// Options tune a Synchronizer. Zero values fall back to defaults.
type Options struct {
	Pacer           Pacer
	Now             func() time.Time
	DefaultBuyLimit int
	// ProgressEvery logs a progress line after this many created records
	ProgressEvery int
}

// Synchronizer brings the local stores in line with the wiki, one item at a time
type Synchronizer struct {
	records       RecordStore
	images        ImageStore
	fetcher       ImageFetcher
	pacer         Pacer
	now           func() time.Time
	defaultLimit  int
	progressEvery int
	logger        *slog.Logger
}

// New creates a Synchronizer
func New(records RecordStore, images ImageStore, fetcher ImageFetcher, logger *slog.Logger, opts Options) *Synchronizer {
	s := &Synchronizer{
		records:       records,
		images:        images,
		fetcher:       fetcher,
		pacer:         opts.Pacer,
		now:           opts.Now,
		defaultLimit:  opts.DefaultBuyLimit,
		progressEvery: opts.ProgressEvery,
		logger:        logger,
	}
	if s.pacer == nil {
		s.pacer = NewPacer(time.Second)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultLimit < 1 {
		s.defaultLimit = item.DefaultBuyLimit
	}
	if s.progressEvery < 1 {
		s.progressEvery = 100
	}
	return s
}

// SyncMetadata writes a record for every entry that has none yet. Existing
// records are never read or rewritten.
func (s *Synchronizer) SyncMetadata(ctx context.Context, entries []item.Entry, limits map[string]int) (item.Summary, error) {
	var summary item.Summary

	existing, err := s.records.ExistingIDs()
	if err != nil {
		return summary, fmt.Errorf("failed to scan existing records: %w", err)
	}
	s.logger.Info("found existing records", "count", len(existing))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if _, ok := existing[e.ID]; ok {
			s.logger.Debug("skipping existing record", "id", e.ID, "name", e.Name)
			summary.Add(item.OutcomeSkipped)
			continue
		}

		outcome := s.createRecord(e, limits)
		summary.Add(outcome)
		if outcome == item.OutcomeCreated || outcome == item.OutcomeSkipped {
			existing[e.ID] = struct{}{}
		}
		if outcome == item.OutcomeCreated && summary.Created%s.progressEvery == 0 {
			s.logger.Info("created records so far", "created", summary.Created)
		}
	}

	s.logger.Info("metadata phase complete",
		"processed", summary.Processed, "created", summary.Created,
		"skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

func (s *Synchronizer) createRecord(e item.Entry, limits map[string]int) (outcome item.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("record creation panicked", "id", e.ID, "name", e.Name, "panic", r)
			outcome = item.OutcomeFailed
		}
	}()

	rec := item.NewRecord(e, limits, s.defaultLimit, s.now())
	if err := s.records.Create(rec); err != nil {
		if errors.Is(err, store.ErrExists) {
			s.logger.Debug("record appeared during run", "id", e.ID, "name", e.Name)
			return item.OutcomeSkipped
		}
		s.logger.Error("failed to create record", "id", e.ID, "name", e.Name, "error", err)
		return item.OutcomeFailed
	}
	return item.OutcomeCreated
}

// SyncImages resolves an image for every entry using strategies in order.
// Under PolicySkipExisting items with an image on disk are skipped without
// any request; under PolicyOverwrite every item is attempted and a failed
// resolution leaves the old file in place. The pacer runs before every
// attempted item.
func (s *Synchronizer) SyncImages(ctx context.Context, entries []item.Entry, policy Policy, strategies []Strategy) (item.Summary, error) {
	var summary item.Summary
	total := len(entries)

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if policy == PolicySkipExisting {
			exists, err := s.images.Exists(e.ID)
			if err != nil {
				s.logger.Error("failed to check image", "id", e.ID, "name", e.Name, "error", err)
				summary.Add(item.OutcomeFailed)
				continue
			}
			if exists {
				s.logger.Debug("skipping existing image", "progress", progress(i, total), "id", e.ID, "name", e.Name)
				summary.Add(item.OutcomeSkipped)
				continue
			}
		}

		if err := s.pacer.Wait(ctx); err != nil {
			return summary, err
		}
		s.logger.Debug("downloading image", "progress", progress(i, total), "id", e.ID, "name", e.Name)

		outcome := s.syncImage(ctx, e, strategies)
		if outcome == item.OutcomeFailed && ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Add(outcome)
	}

	s.logger.Info("image phase complete", "policy", policy.String(),
		"processed", summary.Processed, "saved", summary.Created,
		"primary", summary.Primary, "fallback", summary.Fallback,
		"skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

func (s *Synchronizer) syncImage(ctx context.Context, e item.Entry, strategies []Strategy) (outcome item.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("image download panicked", "id", e.ID, "name", e.Name, "panic", r)
			outcome = item.OutcomeFailed
		}
	}()

	res, err := Resolve(ctx, s.fetcher, strategies, e)
	if err != nil {
		s.logger.Warn("no acceptable image", "id", e.ID, "name", e.Name, "error", err)
		return item.OutcomeFailed
	}

	if err := s.images.Save(e.ID, res.Payload); err != nil {
		s.logger.Error("failed to save image", "id", e.ID, "name", e.Name, "error", err)
		return item.OutcomeFailed
	}

	outcome = item.OutcomeSavedPrimary
	if res.Index > 0 {
		outcome = item.OutcomeSavedFallback
	}
	s.logger.Info("saved image", "id", e.ID, "name", e.Name,
		"strategy", res.Strategy, "bytes", len(res.Payload), "outcome", outcome.String())
	return outcome
}

func progress(i, total int) string {
	return fmt.Sprintf("%d/%d", i+1, total)
}
