package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"geitems/internal/config"
	"geitems/internal/item"
	"geitems/internal/wiki"
)

// Strategy is one way of resolving an item's image
type Strategy struct {
	Name string
	URL  func(e item.Entry) string
	// MinBytes is exclusive: a payload must be larger to be accepted
	MinBytes int
}

// Resolution is an accepted payload and the strategy that produced it
type Resolution struct {
	Strategy string
	Index    int
	URL      string
	Payload  []byte
}

// ImageFetcher downloads a single image URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (*wiki.Response, error)
}

// URLBuilder builds the wiki image URLs for an item name
type URLBuilder interface {
	ImageURL(name string) string
	DetailImageURL(name string) string
	ThumbURL(name string, width int, pixelated bool) string
}

// SyncStrategies are used by the write-once image phase: the inventory icon,
// then its 32px thumbnail.
func SyncStrategies(b URLBuilder, sizes config.MinBytes) []Strategy {
	return []Strategy{
		{
			Name:     "full",
			URL:      func(e item.Entry) string { return b.ImageURL(e.Name) },
			MinBytes: sizes.Full,
		},
		{
			Name:     "thumb32",
			URL:      func(e item.Entry) string { return b.ThumbURL(e.Name, 32, false) },
			MinBytes: sizes.Thumb,
		},
	}
}

// UpgradeStrategies are used by the large-image pass: the detail render, then
// a pixelated 100px thumbnail.
func UpgradeStrategies(b URLBuilder, sizes config.MinBytes) []Strategy {
	return []Strategy{
		{
			Name:     "detail",
			URL:      func(e item.Entry) string { return b.DetailImageURL(e.Name) },
			MinBytes: sizes.Detail,
		},
		{
			Name:     "thumb100",
			URL:      func(e item.Entry) string { return b.ThumbURL(e.Name, 100, true) },
			MinBytes: sizes.ThumbLarge,
		},
	}
}

// Resolve tries strategies in order and returns the first accepted payload.
// When every strategy fails the returned error joins each failure reason.
func Resolve(ctx context.Context, f ImageFetcher, strategies []Strategy, e item.Entry) (*Resolution, error) {
	if len(strategies) == 0 {
		return nil, item.ErrNoStrategies
	}

	var errs []error
	for i, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := s.URL(e)
		payload, err := attempt(ctx, f, url, s.MinBytes)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		return &Resolution{Strategy: s.Name, Index: i, URL: url, Payload: payload}, nil
	}
	return nil, errors.Join(errs...)
}

func attempt(ctx context.Context, f ImageFetcher, url string, minBytes int) ([]byte, error) {
	resp, err := f.FetchImage(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, item.ErrUnexpectedStatus)
	}
	if len(resp.Body) <= minBytes {
		return nil, fmt.Errorf("%d bytes, need more than %d: %w", len(resp.Body), minBytes, item.ErrBelowThreshold)
	}
	return resp.Body, nil
}
