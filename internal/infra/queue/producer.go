package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadreach/internal/entity"
)

// BatchReport describes one dispatched batch for operator notifications.
type BatchReport struct {
	ID             string                  `json:"id"`
	RequestID      string                  `json:"request_id,omitempty"`
	SentAt         time.Time               `json:"sent_at"`
	LeadIDs        []string                `json:"lead_ids"`
	Summary        entity.DispatchSummary  `json:"summary"`
	Failures       []entity.DispatchResult `json:"failures,omitempty"`
	LeadsSent      int                     `json:"leads_sent"`
	AvailableLeads int                     `json:"available_leads"`
}

// NewBatchReport keeps only the failed results; successes are in the summary.
func NewBatchReport(requestID string, leadIDs []string, results []entity.DispatchResult, leadsSent, available int, now time.Time) BatchReport {
	var failures []entity.DispatchResult
	for _, r := range results {
		if r.Status == entity.DispatchError {
			failures = append(failures, r)
		}
	}
	return BatchReport{
		ID:             uuid.NewString(),
		RequestID:      requestID,
		SentAt:         now,
		LeadIDs:        leadIDs,
		Summary:        entity.Summarize(results),
		Failures:       failures,
		LeadsSent:      leadsSent,
		AvailableLeads: available,
	}
}

// Publisher is the channel subset the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishBatchReport(ctx context.Context, report BatchReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode batch report: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    report.ID,
			Timestamp:    report.SentAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish batch report: %w", err)
	}
	return nil
}
