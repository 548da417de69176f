package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/queue"
	"github.com/xavierca1/leadreach/internal/logging"
)

type SendMessagesOutput struct {
	Message   string                  `json:"message"`
	Results   []entity.DispatchResult `json:"results"`
	Summary   entity.DispatchSummary  `json:"summary"`
	RateLimit RateLimitSnapshot       `json:"rateLimit"`
}

// RateLimitSnapshot is the window state after a batch.
type RateLimitSnapshot struct {
	LeadsSent        int   `json:"leadsSent"`
	AvailableLeads   int   `json:"availableLeads"`
	CanSendMore      bool  `json:"canSendMore"`
	MinutesRemaining int   `json:"minutesRemaining"`
	TimeUntilReset   int64 `json:"timeUntilReset"`
}

// SendMessagesUseCase is the server boundary of a batch: it validates,
// reserves quota once for the whole batch, then dispatches.
type SendMessagesUseCase struct {
	Session    ConnectionState
	Limiter    *RateLimiter
	Dispatcher *Dispatcher
	Reports    ReportPublisher
}

func NewSendMessagesUseCase(session ConnectionState, limiter *RateLimiter, dispatcher *Dispatcher, reports ReportPublisher) *SendMessagesUseCase {
	return &SendMessagesUseCase{
		Session:    session,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Reports:    reports,
	}
}

func (uc *SendMessagesUseCase) Execute(ctx context.Context, leadIDs []string) (*SendMessagesOutput, error) {
	if !uc.Session.Connected() {
		return nil, &DomainError{Code: CodeNotConnected, Message: "WhatsApp is not connected"}
	}
	if len(leadIDs) == 0 {
		return nil, validationError("Lead IDs array is required")
	}
	if limit := uc.Limiter.MaxLeads(); len(leadIDs) > limit {
		return nil, validationError(fmt.Sprintf("Maximum %d leads can be sent at once. You requested %d leads.", limit, len(leadIDs)))
	}

	decision, err := uc.Limiter.CheckAndReserve(ctx, len(leadIDs))
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		logging.Ctx(ctx).Warn().
			Int("requested", len(leadIDs)).
			Int("available", decision.AvailableLeads).
			Int("minutes_remaining", decision.MinutesRemaining).
			Msg("send rejected by rate limit")
		return nil, &RateLimitError{Decision: decision}
	}

	batch, err := uc.Dispatcher.SendBatch(ctx, leadIDs)
	if err != nil {
		return nil, err
	}

	status, err := uc.Limiter.Status(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := RateLimitSnapshot{
		LeadsSent:        status.LeadsSent,
		AvailableLeads:   status.AvailableLeads,
		CanSendMore:      status.CanSend,
		MinutesRemaining: status.MinutesRemaining,
		TimeUntilReset:   status.TimeUntilReset,
	}

	uc.publishReport(ctx, leadIDs, batch.Results, snapshot)

	logging.Ctx(ctx).Info().
		Int("success", batch.Summary.Success).
		Int("skipped", batch.Summary.Skipped).
		Int("failed", batch.Summary.Failed).
		Msg("message batch completed")

	return &SendMessagesOutput{
		Message:   "Message sending completed",
		Results:   batch.Results,
		Summary:   batch.Summary,
		RateLimit: snapshot,
	}, nil
}

func (uc *SendMessagesUseCase) publishReport(ctx context.Context, leadIDs []string, results []entity.DispatchResult, snap RateLimitSnapshot) {
	if uc.Reports == nil {
		return
	}
	report := queue.NewBatchReport(logging.RequestIDFromContext(ctx), leadIDs, results, snap.LeadsSent, snap.AvailableLeads, time.Now())

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.Reports.PublishBatchReport(pubCtx, report); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("report_id", report.ID).Msg("failed to publish batch report")
	}
}
