package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/queue"
)

type sendFixture struct {
	uc        *SendMessagesUseCase
	session   *MockSession
	transport *MockTransport
	reports   *MockReportPublisher
	clock     *fakeClock
}

func newSendFixture(t *testing.T, leads []entity.Lead) *sendFixture {
	t.Helper()
	off := false
	set := entity.MessageTemplateSet{Category: "Food", Messages: []string{"hi {name}"}, SendGreeting: &off}
	df := newDispatchFixture(t, DispatcherConfig{}, leads, []entity.MessageTemplateSet{set})

	limiter, clock := newTestLimiter(t)
	f := &sendFixture{
		session:   new(MockSession),
		transport: df.transport,
		reports:   new(MockReportPublisher),
		clock:     clock,
	}
	f.uc = NewSendMessagesUseCase(f.session, limiter, df.dispatcher, f.reports)
	return f
}

func leadIDs(n int) ([]string, []entity.Lead) {
	ids := make([]string, n)
	leads := make([]entity.Lead, n)
	for i := range n {
		ids[i] = string(rune('a' + i))
		leads[i] = newLead(ids[i], "+9477123450"+string(rune('0'+i%10)))
	}
	return ids, leads
}

func TestSendMessages_NotConnected(t *testing.T) {
	f := newSendFixture(t, nil)
	f.session.On("Connected").Return(false)

	_, err := f.uc.Execute(context.Background(), []string{"a"})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotConnected, de.Code)
	assert.Equal(t, "WhatsApp is not connected", de.Message)
}

func TestSendMessages_ValidatesBatchSize(t *testing.T) {
	f := newSendFixture(t, nil)
	f.session.On("Connected").Return(true)

	_, err := f.uc.Execute(context.Background(), nil)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Lead IDs array is required", de.Message)

	ids, _ := leadIDs(11)
	_, err = f.uc.Execute(context.Background(), ids)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Maximum 10 leads can be sent at once. You requested 11 leads.", de.Message)

	status, err := f.uc.Limiter.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.LeadsSent, "rejected requests reserve nothing")
}

func TestSendMessages_ReservesAndReports(t *testing.T) {
	ids, leads := leadIDs(3)
	f := newSendFixture(t, leads)
	f.session.On("Connected").Return(true)
	f.transport.On("IsRegistered", mock.Anything, mock.Anything).Return(true, nil)
	f.transport.On("SendText", mock.Anything, "94771234500", mock.Anything).Return(errors.New("boom"))
	f.transport.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var published queue.BatchReport
	f.reports.On("PublishBatchReport", mock.Anything, mock.AnythingOfType("queue.BatchReport")).
		Run(func(args mock.Arguments) { published = args.Get(1).(queue.BatchReport) }).
		Return(nil)

	out, err := f.uc.Execute(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, "Message sending completed", out.Message)
	assert.Equal(t, entity.DispatchSummary{Total: 3, Success: 2, Failed: 1}, out.Summary)
	assert.Equal(t, RateLimitSnapshot{
		LeadsSent:        3,
		AvailableLeads:   7,
		CanSendMore:      true,
		MinutesRemaining: 10,
		TimeUntilReset:   (10 * time.Minute).Milliseconds(),
	}, out.RateLimit)

	assert.Equal(t, ids, published.LeadIDs)
	assert.Equal(t, 3, published.LeadsSent)
	require.Len(t, published.Failures, 1)
	assert.Equal(t, "a", published.Failures[0].LeadID)
}

func TestSendMessages_SkippedLeadsStillConsumeQuota(t *testing.T) {
	ids, leads := leadIDs(2)
	for i := range leads {
		leads[i].MessageSent = true
	}
	f := newSendFixture(t, leads)
	f.session.On("Connected").Return(true)
	f.reports.On("PublishBatchReport", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Execute(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.Skipped)
	assert.Equal(t, 2, out.RateLimit.LeadsSent)
}

func TestSendMessages_RateLimited(t *testing.T) {
	ids, leads := leadIDs(8)
	f := newSendFixture(t, leads)
	f.session.On("Connected").Return(true)
	f.transport.On("IsRegistered", mock.Anything, mock.Anything).Return(true, nil)
	f.transport.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.reports.On("PublishBatchReport", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), ids)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	_, err = f.uc.Execute(context.Background(), ids[:3])

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.False(t, rl.Decision.Allowed)
	assert.Equal(t, 2, rl.Decision.AvailableLeads)
	assert.Equal(t, 9, rl.Decision.MinutesRemaining)
	f.reports.AssertNumberOfCalls(t, "PublishBatchReport", 1)
}

func TestSendMessages_PublishFailureDoesNotFailBatch(t *testing.T) {
	ids, leads := leadIDs(1)
	f := newSendFixture(t, leads)
	f.session.On("Connected").Return(true)
	f.transport.On("IsRegistered", mock.Anything, mock.Anything).Return(true, nil)
	f.transport.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.reports.On("PublishBatchReport", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	out, err := f.uc.Execute(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.Success)
}

func TestSendMessages_NilPublisher(t *testing.T) {
	ids, leads := leadIDs(1)
	f := newSendFixture(t, leads)
	f.uc.Reports = nil
	f.session.On("Connected").Return(true)
	f.transport.On("IsRegistered", mock.Anything, mock.Anything).Return(true, nil)
	f.transport.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), ids)
	require.NoError(t, err)
}
