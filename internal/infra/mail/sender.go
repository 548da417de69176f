package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadreach/internal/infra/queue"
)

//go:embed templates/*.html
var templates embed.FS

var batchReportTemplate = template.Must(template.ParseFS(templates, "templates/batch_report.html"))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

func (s *EmailSender) Name() string { return "email" }

// NotifyBatchReport emails the report to the operator.
func (s *EmailSender) NotifyBatchReport(_ context.Context, report queue.BatchReport) error {
	data := BatchReportEmailData{
		Report:   report,
		SentAt:   report.SentAt.Format(time.RFC1123),
		Failures: len(report.Failures),
	}

	var body bytes.Buffer
	if err := batchReportTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render batch report email: %w", err)
	}

	from := s.From
	if from == "" {
		from = s.User
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Outreach batch: %d sent, %d skipped, %d failed",
		report.Summary.Success, report.Summary.Skipped, report.Summary.Failed))
	m.SetBody("text/html", body.String())

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send batch report email: %w", err)
	}
	return nil
}
