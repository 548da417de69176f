// Package scheduler drives large outreach selections through the API in
// fixed-size batches, waiting out the full cooldown before every batch after
// the first.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/usecase"
)

const (
	DefaultBatchSize    = 10
	DefaultCooldown     = 10 * time.Minute
	DefaultProgressTick = time.Second
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("a send run is already in progress")

// Sender submits one batch to the server.
type Sender interface {
	SendMessages(ctx context.Context, leadIDs []string) (*usecase.SendMessagesOutput, error)
}

type Summary struct {
	TotalLeads int `json:"totalLeads"`
	Sent       int `json:"sent"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Groups     int `json:"groups"`
}

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseSending Phase = "sending"
	PhaseDone    Phase = "done"
)

// Progress is reported on every countdown tick and around every batch.
// Batch is 1-based; Remaining only counts down while waiting.
type Progress struct {
	Phase     Phase
	Batch     int
	Batches   int
	Remaining time.Duration
	Totals    Summary
}

type Config struct {
	BatchSize    int
	Cooldown     time.Duration
	ProgressTick time.Duration
	OnProgress   func(Progress)
}

// Scheduler runs one selection at a time.
type Scheduler struct {
	sender  Sender
	cfg     Config
	running chan struct{}
	now     func() time.Time
}

func New(sender Sender, cfg Config) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	if cfg.ProgressTick <= 0 {
		cfg.ProgressTick = DefaultProgressTick
	}
	return &Scheduler{
		sender:  sender,
		cfg:     cfg,
		running: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Partition splits ids into contiguous batches of size n; the last may be shorter.
// A non-positive n means DefaultBatchSize.
func Partition(ids []string, n int) [][]string {
	if n <= 0 {
		n = DefaultBatchSize
	}
	batches := make([][]string, 0, (len(ids)+n-1)/n)
	for start := 0; start < len(ids); start += n {
		end := min(start+n, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// Run sends every batch and returns the aggregate summary. A failed batch
// counts all of its leads as failed and the run continues. Cancelling ctx
// stops the run at the next wait or send and returns the partial summary
// together with ctx.Err().
func (s *Scheduler) Run(ctx context.Context, leadIDs []string) (Summary, error) {
	select {
	case s.running <- struct{}{}:
	default:
		return Summary{}, ErrRunInProgress
	}
	defer func() { <-s.running }()

	log := logging.Ctx(ctx)
	batches := Partition(leadIDs, s.cfg.BatchSize)
	totals := Summary{TotalLeads: len(leadIDs)}

	for i, batch := range batches {
		if i > 0 {
			if err := s.wait(ctx, i+1, len(batches), totals); err != nil {
				log.Warn().Int("batch", i+1).Msg("send run cancelled during cooldown")
				return totals, err
			}
		}
		if err := ctx.Err(); err != nil {
			return totals, err
		}

		s.report(Progress{Phase: PhaseSending, Batch: i + 1, Batches: len(batches), Totals: totals})
		out, err := s.sender.SendMessages(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return totals, ctxErr
			}
			log.Error().Err(err).Int("batch", i+1).Int("leads", len(batch)).Msg("batch failed")
			totals.Failed += len(batch)
		} else {
			totals.Sent += out.Summary.Success
			totals.Skipped += out.Summary.Skipped
			totals.Failed += out.Summary.Failed
			log.Info().
				Int("batch", i+1).
				Int("success", out.Summary.Success).
				Int("skipped", out.Summary.Skipped).
				Int("failed", out.Summary.Failed).
				Msg("batch sent")
		}
		totals.Groups++
	}

	s.report(Progress{Phase: PhaseDone, Batch: len(batches), Batches: len(batches), Totals: totals})
	return totals, nil
}

// wait blocks for the full cooldown, reporting the countdown every tick.
func (s *Scheduler) wait(ctx context.Context, batch, batches int, totals Summary) error {
	deadline := s.now().Add(s.cfg.Cooldown)
	timer := time.NewTimer(s.cfg.Cooldown)
	defer timer.Stop()
	ticker := time.NewTicker(s.cfg.ProgressTick)
	defer ticker.Stop()

	progress := Progress{Phase: PhaseWaiting, Batch: batch, Batches: batches, Totals: totals}
	progress.Remaining = s.cfg.Cooldown
	s.report(progress)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-ticker.C:
			progress.Remaining = max(deadline.Sub(s.now()), 0)
			s.report(progress)
		}
	}
}

func (s *Scheduler) report(p Progress) {
	if s.cfg.OnProgress != nil {
		s.cfg.OnProgress(p)
	}
}
