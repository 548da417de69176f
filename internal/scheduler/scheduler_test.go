package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/usecase"
)

type fakeSender struct {
	mu      sync.Mutex
	batches [][]string
	times   []time.Time
	send    func(call int, ids []string) (*usecase.SendMessagesOutput, error)
}

func (f *fakeSender) SendMessages(_ context.Context, ids []string) (*usecase.SendMessagesOutput, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), ids...))
	f.times = append(f.times, time.Now())
	call := len(f.batches)
	f.mu.Unlock()

	if f.send != nil {
		return f.send(call, ids)
	}
	return allSent(ids), nil
}

func allSent(ids []string) *usecase.SendMessagesOutput {
	return &usecase.SendMessagesOutput{Summary: entity.DispatchSummary{Total: len(ids), Success: len(ids)}}
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("lead-%02d", i)
	}
	return out
}

func batchSizes(batches [][]string) []int {
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = len(b)
	}
	return sizes
}

func TestPartition(t *testing.T) {
	assert.Equal(t, []int{10, 10, 3}, batchSizes(Partition(ids(23), 10)))
	assert.Equal(t, []int{10}, batchSizes(Partition(ids(10), 10)))
	assert.Empty(t, Partition(nil, 10))
}

func TestPartition_NonPositiveSizeUsesDefault(t *testing.T) {
	assert.Equal(t, []int{10, 2}, batchSizes(Partition(ids(12), 0)))
	assert.Equal(t, []int{10, 2}, batchSizes(Partition(ids(12), -3)))
}

func TestRun_BatchesWithFullCooldown(t *testing.T) {
	const cooldown = 40 * time.Millisecond
	sender := &fakeSender{}

	var mu sync.Mutex
	var progress []Progress
	s := New(sender, Config{
		Cooldown:     cooldown,
		ProgressTick: 5 * time.Millisecond,
		OnProgress: func(p Progress) {
			mu.Lock()
			progress = append(progress, p)
			mu.Unlock()
		},
	})

	summary, err := s.Run(context.Background(), ids(23))
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalLeads: 23, Sent: 23, Groups: 3}, summary)

	assert.Equal(t, []int{10, 10, 3}, batchSizes(sender.batches))
	assert.Equal(t, "lead-10", sender.batches[1][0])
	for i := 1; i < len(sender.times); i++ {
		assert.GreaterOrEqual(t, sender.times[i].Sub(sender.times[i-1]), cooldown)
	}

	mu.Lock()
	defer mu.Unlock()
	last := progress[len(progress)-1]
	assert.Equal(t, PhaseDone, last.Phase)
	assert.Equal(t, summary, last.Totals)

	// countdown never increases within one wait
	var prev *Progress
	for i := range progress {
		p := progress[i]
		if p.Phase != PhaseWaiting {
			prev = nil
			continue
		}
		if prev != nil && prev.Batch == p.Batch {
			assert.LessOrEqual(t, p.Remaining, prev.Remaining)
		}
		prev = &progress[i]
	}
}

func TestRun_FirstBatchIsImmediate(t *testing.T) {
	sender := &fakeSender{}
	s := New(sender, Config{Cooldown: time.Hour})

	start := time.Now()
	summary, err := s.Run(context.Background(), ids(4))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, summary.Groups)
}

func TestRun_FailedBatchCountsAllLeads(t *testing.T) {
	sender := &fakeSender{send: func(call int, ids []string) (*usecase.SendMessagesOutput, error) {
		switch call {
		case 2:
			return nil, errors.New("connection refused")
		case 3:
			return &usecase.SendMessagesOutput{Summary: entity.DispatchSummary{Total: 3, Success: 1, Skipped: 1, Failed: 1}}, nil
		default:
			return allSent(ids), nil
		}
	}}
	s := New(sender, Config{Cooldown: time.Millisecond})

	summary, err := s.Run(context.Background(), ids(23))
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalLeads: 23, Sent: 11, Skipped: 1, Failed: 11, Groups: 3}, summary)
}

func TestRun_RejectsReentry(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	sender := &fakeSender{send: func(_ int, ids []string) (*usecase.SendMessagesOutput, error) {
		close(started)
		<-release
		return allSent(ids), nil
	}}
	s := New(sender, Config{})

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), ids(2))
		done <- err
	}()
	<-started

	_, err := s.Run(context.Background(), ids(2))
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.NoError(t, <-done)

	// released after the run ends
	sender.send = nil
	_, err = s.Run(context.Background(), ids(1))
	assert.NoError(t, err)
}

func TestRun_CancelDuringCooldown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &fakeSender{send: func(_ int, ids []string) (*usecase.SendMessagesOutput, error) {
		cancel()
		return allSent(ids), nil
	}}
	s := New(sender, Config{Cooldown: time.Hour})

	summary, err := s.Run(ctx, ids(15))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Summary{TotalLeads: 15, Sent: 10, Groups: 1}, summary)
	assert.Len(t, sender.batches, 1)
}

func TestRun_Empty(t *testing.T) {
	sender := &fakeSender{}
	summary, err := New(sender, Config{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, sender.batches)
}
