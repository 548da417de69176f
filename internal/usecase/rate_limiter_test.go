package usecase

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestLimiter(t *testing.T) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock(t0)
	l := NewRateLimiter(newRepos(t).RateLimit, 10, 10*time.Minute)
	l.now = clock.Now
	return l, clock
}

func TestRateLimiter_ReservesUntilQuotaExhausted(t *testing.T) {
	l, clock := newTestLimiter(t)
	ctx := context.Background()

	d, err := l.CheckAndReserve(ctx, 4)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.LeadsSent)
	assert.Equal(t, 6, d.AvailableLeads)
	require.NotNil(t, d.WindowStartTime)
	assert.Equal(t, t0.UnixMilli(), *d.WindowStartTime)

	clock.Advance(2 * time.Minute)
	d, err = l.CheckAndReserve(ctx, 6)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.AvailableLeads)
	assert.Equal(t, t0.UnixMilli(), *d.WindowStartTime, "window start is not moved by later reservations")

	clock.Advance(30 * time.Second)
	d, err = l.CheckAndReserve(ctx, 1)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.AvailableLeads)
	assert.Equal(t, 10, d.LeadsSent)
	assert.Equal(t, (7*time.Minute + 30*time.Second).Milliseconds(), d.TimeUntilReset)
	assert.Equal(t, 8, d.MinutesRemaining)
	assert.Equal(t, "Rate limit exceeded. You can send 0 more lead(s) now. Next batch of 10 leads available in 8 minute(s).", d.Message)
}

func TestRateLimiter_PartialRequestRejectedWholesale(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.CheckAndReserve(ctx, 7)
	require.NoError(t, err)

	d, err := l.CheckAndReserve(ctx, 5)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.AvailableLeads)

	s, err := l.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, s.LeadsSent, "a rejected request reserves nothing")
}

func TestRateLimiter_ResetsOnlyAfterFullCooldown(t *testing.T) {
	l, clock := newTestLimiter(t)
	ctx := context.Background()

	_, err := l.CheckAndReserve(ctx, 10)
	require.NoError(t, err)

	clock.Advance(10*time.Minute - time.Millisecond)
	d, err := l.CheckAndReserve(ctx, 1)
	require.NoError(t, err)
	assert.False(t, d.Allowed, "no continuous refill inside the window")
	assert.Equal(t, int64(1), d.TimeUntilReset)
	assert.Equal(t, 1, d.MinutesRemaining)

	clock.Advance(time.Millisecond)
	d, err = l.CheckAndReserve(ctx, 10)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 10, d.LeadsSent)
	assert.Equal(t, clock.Now().UnixMilli(), *d.WindowStartTime, "a new window opens")
}

func TestRateLimiter_StatusResetsStaleWindowAndPersists(t *testing.T) {
	repos := newRepos(t)
	clock := newFakeClock(t0)
	l := NewRateLimiter(repos.RateLimit, 10, 10*time.Minute)
	l.now = clock.Now
	ctx := context.Background()

	_, err := l.CheckAndReserve(ctx, 3)
	require.NoError(t, err)

	s, err := l.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.LeadsSent)
	assert.Equal(t, 7, s.AvailableLeads)
	assert.True(t, s.CanSend)
	assert.Equal(t, 10, s.MinutesRemaining)
	assert.NotNil(t, s.LastBatchTime)

	clock.Advance(10 * time.Minute)
	s, err = l.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.LeadsSent)
	assert.Equal(t, 10, s.AvailableLeads)
	assert.Nil(t, s.WindowStartTime)
	assert.Nil(t, s.LastBatchTime)
	assert.Zero(t, s.TimeUntilReset)

	w, err := repos.RateLimit.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, w.LeadsSent)
	assert.Nil(t, w.WindowStartTime)
}

func TestRateLimiter_StatePersistsAcrossInstances(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	first := NewRateLimiter(repos.RateLimit, 10, 10*time.Minute)
	_, err := first.CheckAndReserve(ctx, 9)
	require.NoError(t, err)

	second := NewRateLimiter(repos.RateLimit, 10, 10*time.Minute)
	d, err := second.CheckAndReserve(ctx, 2)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, d.AvailableLeads)
}

func TestRateLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t)
	ctx := context.Background()

	reset, err := l.Sweep(ctx)
	require.NoError(t, err)
	assert.False(t, reset)

	_, err = l.CheckAndReserve(ctx, 2)
	require.NoError(t, err)
	clock.Advance(11 * time.Minute)

	reset, err = l.Sweep(ctx)
	require.NoError(t, err)
	assert.True(t, reset)
}

func TestRateLimiter_NeverExceedsQuotaWithinWindow(t *testing.T) {
	l, clock := newTestLimiter(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	windowStart := clock.Now()
	sent := 0
	for range 500 {
		clock.Advance(time.Duration(rng.IntN(90)) * time.Second)
		if clock.Now().Sub(windowStart) >= 10*time.Minute {
			// the limiter is allowed to reset from here on
			sent = 0
		}
		n := 1 + rng.IntN(12)
		d, err := l.CheckAndReserve(ctx, n)
		require.NoError(t, err)
		if d.Allowed {
			if sent == 0 {
				windowStart = time.UnixMilli(*d.WindowStartTime).UTC()
			}
			sent += n
		}
		require.LessOrEqual(t, d.LeadsSent, 10)
		require.LessOrEqual(t, sent, 10)
	}
}

func TestMinutesCeil(t *testing.T) {
	assert.Equal(t, 0, minutesCeil(0))
	assert.Equal(t, 1, minutesCeil(time.Millisecond))
	assert.Equal(t, 1, minutesCeil(time.Minute))
	assert.Equal(t, 2, minutesCeil(time.Minute+time.Millisecond))
}
