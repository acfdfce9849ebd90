package syncer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next outbound item may start
type Pacer interface {
	Wait(ctx context.Context) error
}

// NewPacer spaces items at least delay apart. The first Wait returns
// immediately. A zero delay disables pacing.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
