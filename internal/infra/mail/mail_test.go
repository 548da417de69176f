package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/queue"
)

func sampleReport() queue.BatchReport {
	return queue.BatchReport{
		ID:        "r1",
		RequestID: "req-9",
		SentAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		LeadIDs:   []string{"a", "b", "c"},
		Summary:   entity.DispatchSummary{Total: 3, Success: 1, Skipped: 1, Failed: 1},
		Failures: []entity.DispatchResult{
			{LeadID: "c", Status: entity.DispatchError, Message: "No contact number <b>", PhoneNumber: "+94771234567"},
		},
		LeadsSent:      3,
		AvailableLeads: 7,
	}
}

func TestEmailSender_NotifyBatchReport(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "bot@local", "pw", "", "ops@local")
	var sent *gomail.Message
	s.send = func(m *gomail.Message) error { sent = m; return nil }

	require.NoError(t, s.NotifyBatchReport(context.Background(), sampleReport()))
	require.NotNil(t, sent)

	assert.Equal(t, []string{"bot@local"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"ops@local"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Outreach batch: 1 sent, 1 skipped, 1 failed"}, sent.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := sent.WriteTo(&buf)
	require.NoError(t, err)
	body := buf.String()
	assert.Contains(t, body, "request req-9")
	assert.Contains(t, body, "No contact number &lt;b&gt;")
	assert.Equal(t, "email", s.Name())
}

func TestEmailSender_SendFailure(t *testing.T) {
	s := NewEmailSender("smtp.local", 587, "", "", "from@local", "ops@local")
	s.send = func(*gomail.Message) error { return errors.New("dial tcp: refused") }

	err := s.NotifyBatchReport(context.Background(), sampleReport())
	assert.ErrorContains(t, err, "failed to send batch report email")
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) SendText(ctx context.Context, phone, body string) error {
	return m.Called(ctx, phone, body).Error(0)
}

func (m *MockTransport) IsRegistered(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

type staticSession bool

func (s staticSession) Connected() bool { return bool(s) }

func TestWhatsAppSender(t *testing.T) {
	transport := new(MockTransport)
	transport.On("SendText", mock.Anything, "94771112222", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Batch done: 1 sent, 1 skipped, 1 failed of 3.") &&
			strings.Contains(body, "- c: No contact number")
	})).Return(errors.New("flaky")).Once()

	s := NewWhatsAppSender(transport, staticSession(true), "077 111 2222")
	assert.NoError(t, s.NotifyBatchReport(context.Background(), sampleReport()), "delivery errors are swallowed")
	transport.AssertExpectations(t)
}

func TestWhatsAppSender_SkipsWhenDisconnected(t *testing.T) {
	transport := new(MockTransport)
	s := NewWhatsAppSender(transport, staticSession(false), "0771112222")

	require.NoError(t, s.NotifyBatchReport(context.Background(), sampleReport()))
	transport.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}
