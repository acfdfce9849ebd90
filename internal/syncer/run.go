package syncer

import (
	"context"
	"fmt"

	"geitems/internal/config"
	"geitems/internal/item"
	"geitems/internal/wiki"
)

// Source is the remote side of a run
type Source interface {
	ImageFetcher
	URLBuilder
	FetchEntries(ctx context.Context) ([]item.Entry, error)
	FetchBuyLimits(ctx context.Context) (wiki.BuyLimits, error)
}

// Report summarises one run
type Report struct {
	Entries  int
	Limits   int
	Metadata item.Summary
	Images   item.Summary
}

// RunSync is the incremental pass: enumerate, resolve buy limits, create
// missing records, then download missing images.
func (s *Synchronizer) RunSync(ctx context.Context, src Source, sizes config.MinBytes) (Report, error) {
	var report Report

	entries, err := src.FetchEntries(ctx)
	if err != nil {
		return report, err
	}
	report.Entries = len(entries)
	s.logger.Info("loaded items from GE IDs", "count", len(entries))

	limits, err := src.FetchBuyLimits(ctx)
	if err != nil {
		s.logger.Warn("buy limits unavailable, using defaults for all items", "error", err)
		limits = wiki.BuyLimits{}
	}
	report.Limits = len(limits)

	report.Metadata, err = s.SyncMetadata(ctx, entries, limits)
	if err != nil {
		return report, fmt.Errorf("metadata phase: %w", err)
	}

	report.Images, err = s.SyncImages(ctx, entries, PolicySkipExisting, SyncStrategies(src, sizes))
	if err != nil {
		return report, fmt.Errorf("image phase: %w", err)
	}
	return report, nil
}

// RunUpgrade is the large-image pass over every item. It does not touch metadata.
func (s *Synchronizer) RunUpgrade(ctx context.Context, src Source, sizes config.MinBytes) (Report, error) {
	var report Report

	entries, err := src.FetchEntries(ctx)
	if err != nil {
		return report, err
	}
	report.Entries = len(entries)
	s.logger.Info("loaded items from GE IDs", "count", len(entries))

	report.Images, err = s.SyncImages(ctx, entries, PolicyOverwrite, UpgradeStrategies(src, sizes))
	if err != nil {
		return report, fmt.Errorf("upgrade pass: %w", err)
	}
	return report, nil
}
