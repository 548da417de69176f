package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func TestRateLimitReaper_SweepsUntilCancelled(t *testing.T) {
	s := new(MockSweeper)
	s.On("Sweep", mock.Anything).Return(true, nil).Once()
	s.On("Sweep", mock.Anything).Return(false, errors.New("disk")).Once()
	s.On("Sweep", mock.Anything).Return(false, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := NewRateLimitReaper(s, 10*time.Millisecond).Serve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	calls := len(s.Calls)
	assert.GreaterOrEqual(t, calls, 3, "sweeps immediately and on each tick")
}

func TestNewRateLimitReaper_DefaultInterval(t *testing.T) {
	r := NewRateLimitReaper(new(MockSweeper), 0)
	assert.Equal(t, time.Minute, r.tickInterval)
	assert.Equal(t, "rate-limit-reaper", r.String())
}
