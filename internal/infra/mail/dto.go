package mail

import (
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadreach/internal/infra/queue"
)

// BatchReportEmailData feeds templates/batch_report.html.
type BatchReportEmailData struct {
	Report   queue.BatchReport
	SentAt   string
	Failures int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	send func(*gomail.Message) error
}
