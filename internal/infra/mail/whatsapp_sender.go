package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/leadreach/internal/infra/queue"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/usecase"
)

// WhatsAppSender posts a short batch summary to the operator's own number.
// Delivery is best effort: failures are logged and never fail the report.
type WhatsAppSender struct {
	transport usecase.MessageTransport
	session   usecase.ConnectionState
	phone     string
}

func NewWhatsAppSender(transport usecase.MessageTransport, session usecase.ConnectionState, operatorPhone string) *WhatsAppSender {
	return &WhatsAppSender{transport: transport, session: session, phone: operatorPhone}
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

func (s *WhatsAppSender) NotifyBatchReport(ctx context.Context, report queue.BatchReport) error {
	if !s.session.Connected() {
		logging.Warn().Str("report_id", report.ID).Msg("whatsapp not connected, skipping operator summary")
		return nil
	}
	address, err := usecase.TransportAddress(s.phone)
	if err != nil {
		logging.Warn().Err(err).Msg("operator phone is invalid, skipping operator summary")
		return nil
	}
	if err := s.transport.SendText(ctx, address, summaryText(report)); err != nil {
		logging.Warn().Err(err).Str("report_id", report.ID).Msg("failed to send operator summary")
	}
	return nil
}

func summaryText(r queue.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch done: %d sent, %d skipped, %d failed of %d.", r.Summary.Success, r.Summary.Skipped, r.Summary.Failed, r.Summary.Total)
	fmt.Fprintf(&b, " Window: %d used, %d left.", r.LeadsSent, r.AvailableLeads)
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n- %s: %s", f.LeadID, f.Message)
	}
	return b.String()
}
