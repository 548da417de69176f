package entity

import (
	"context"
	"time"
)

// RateLimitWindow is the persisted quota state. Timestamps are epoch milliseconds.
type RateLimitWindow struct {
	LeadsSent       int    `json:"leadsSent"`
	WindowStartTime *int64 `json:"windowStartTime"`
	LastBatchTime   *int64 `json:"lastBatchTime"`
}

// Expired reports whether an open window has lasted at least cooldown.
func (w *RateLimitWindow) Expired(now time.Time, cooldown time.Duration) bool {
	return w.WindowStartTime != nil && now.UnixMilli()-*w.WindowStartTime >= cooldown.Milliseconds()
}

func (w *RateLimitWindow) Reset() {
	w.LeadsSent = 0
	w.WindowStartTime = nil
	w.LastBatchTime = nil
}

// Remaining is the time until the open window resets, never negative.
func (w *RateLimitWindow) Remaining(now time.Time, cooldown time.Duration) time.Duration {
	if w.WindowStartTime == nil {
		return 0
	}
	elapsed := time.Duration(now.UnixMilli()-*w.WindowStartTime) * time.Millisecond
	return max(0, cooldown-elapsed)
}

type RateLimitRepository interface {
	Load(ctx context.Context) (RateLimitWindow, error)
	Save(ctx context.Context, w RateLimitWindow) error
}
