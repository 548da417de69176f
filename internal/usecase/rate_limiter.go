package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/logging"
)

const (
	DefaultMaxLeadsPerWindow = 10
	DefaultCooldown          = 10 * time.Minute
)

// RateLimitDecision is the outcome of CheckAndReserve. TimeUntilReset is in milliseconds.
type RateLimitDecision struct {
	Allowed          bool   `json:"allowed"`
	AvailableLeads   int    `json:"availableLeads"`
	RequestedLeads   int    `json:"requestedLeads"`
	LeadsSent        int    `json:"leadsSent"`
	MinutesRemaining int    `json:"minutesRemaining"`
	TimeUntilReset   int64  `json:"timeUntilReset"`
	WindowStartTime  *int64 `json:"windowStartTime,omitempty"`
	Message          string `json:"message,omitempty"`
}

type RateLimitStatus struct {
	MaxLeads         int    `json:"maxLeads"`
	LeadsSent        int    `json:"leadsSent"`
	AvailableLeads   int    `json:"availableLeads"`
	CanSend          bool   `json:"canSend"`
	TimeUntilReset   int64  `json:"timeUntilReset"`
	MinutesRemaining int    `json:"minutesRemaining"`
	WindowStartTime  *int64 `json:"windowStartTime"`
	LastBatchTime    *int64 `json:"lastBatchTime"`
}

// RateLimiter grants a fixed quota of leads per cooldown window. The window
// opens on the first reservation and only resets once it has fully elapsed.
// Calls within this process are serialized; the persisted record is not
// protected against other processes.
type RateLimiter struct {
	repo     entity.RateLimitRepository
	maxLeads int
	cooldown time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

func NewRateLimiter(repo entity.RateLimitRepository, maxLeads int, cooldown time.Duration) *RateLimiter {
	if maxLeads <= 0 {
		maxLeads = DefaultMaxLeadsPerWindow
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &RateLimiter{repo: repo, maxLeads: maxLeads, cooldown: cooldown, now: time.Now}
}

func (r *RateLimiter) MaxLeads() int { return r.maxLeads }

func (r *RateLimiter) Cooldown() time.Duration { return r.cooldown }

func (r *RateLimiter) CheckAndReserve(ctx context.Context, requested int) (RateLimitDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, err := r.repo.Load(ctx)
	if err != nil {
		return RateLimitDecision{}, storageError("read rate limit", err)
	}
	if w.Expired(now, r.cooldown) {
		w.Reset()
	}

	available := r.maxLeads - w.LeadsSent
	if requested > available {
		remaining := w.Remaining(now, r.cooldown)
		minutes := minutesCeil(remaining)
		return RateLimitDecision{
			Allowed:          false,
			AvailableLeads:   available,
			RequestedLeads:   requested,
			LeadsSent:        w.LeadsSent,
			MinutesRemaining: minutes,
			TimeUntilReset:   remaining.Milliseconds(),
			Message: fmt.Sprintf("Rate limit exceeded. You can send %d more lead(s) now. Next batch of %d leads available in %d minute(s).",
				available, r.maxLeads, minutes),
		}, nil
	}

	ms := now.UnixMilli()
	if w.LeadsSent == 0 {
		w.WindowStartTime = &ms
	}
	w.LeadsSent += requested
	w.LastBatchTime = &ms
	if err := r.repo.Save(ctx, w); err != nil {
		return RateLimitDecision{}, storageError("save rate limit", err)
	}

	return RateLimitDecision{
		Allowed:         true,
		AvailableLeads:  r.maxLeads - w.LeadsSent,
		RequestedLeads:  requested,
		LeadsSent:       w.LeadsSent,
		WindowStartTime: w.WindowStartTime,
	}, nil
}

// Status reports the window without reserving. A stale window is reset and persisted.
func (r *RateLimiter) Status(ctx context.Context) (RateLimitStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, _, err := r.loadFresh(ctx)
	if err != nil {
		return RateLimitStatus{}, err
	}

	now := r.now()
	available := r.maxLeads - w.LeadsSent
	remaining := w.Remaining(now, r.cooldown)
	return RateLimitStatus{
		MaxLeads:         r.maxLeads,
		LeadsSent:        w.LeadsSent,
		AvailableLeads:   available,
		CanSend:          available > 0,
		TimeUntilReset:   remaining.Milliseconds(),
		MinutesRemaining: minutesCeil(remaining),
		WindowStartTime:  w.WindowStartTime,
		LastBatchTime:    w.LastBatchTime,
	}, nil
}

// Sweep resets an expired window so the persisted record does not go stale
// between requests. It reports whether a reset happened.
func (r *RateLimiter) Sweep(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, reset, err := r.loadFresh(ctx)
	return reset, err
}

func (r *RateLimiter) loadFresh(ctx context.Context) (entity.RateLimitWindow, bool, error) {
	w, err := r.repo.Load(ctx)
	if err != nil {
		return w, false, storageError("read rate limit", err)
	}
	if !w.Expired(r.now(), r.cooldown) {
		return w, false, nil
	}

	w.Reset()
	if err := r.repo.Save(ctx, w); err != nil {
		return w, false, storageError("save rate limit", err)
	}
	logging.Ctx(ctx).Debug().Msg("rate limit window expired and was reset")
	return w, true, nil
}

func minutesCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
