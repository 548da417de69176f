package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadreach/internal/logging"
)

// ReportNotifier delivers a batch report to the operator.
type ReportNotifier interface {
	Name() string
	NotifyBatchReport(ctx context.Context, report BatchReport) error
}

// Consumer is the channel subset the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consumes batch reports and fans them out to the notifiers.
type Worker struct {
	Channel   Consumer
	Notifiers []ReportNotifier
}

func NewWorker(ch Consumer, notifiers ...ReportNotifier) *Worker {
	return &Worker{Channel: ch, Notifiers: notifiers}
}

// Serve consumes until ctx is done or the delivery channel closes.
func (w *Worker) Serve(ctx context.Context) error {
	msgs, err := w.Channel.Consume(
		QueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log := logging.With().Str("component", "report_worker").Logger()
	log.Info().Str("queue", QueueName).Msg("batch report worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) String() string { return "batch-report-worker" }

// delivery is the ack surface of amqp.Delivery.
type delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	w.process(ctx, d.Body, &d)
}

func (w *Worker) process(ctx context.Context, body []byte, ack delivery) {
	var report BatchReport
	if err := json.Unmarshal(body, &report); err != nil {
		logging.Warn().Err(err).Msg("malformed batch report, dead-lettering")
		ack.Nack(false, false)
		return
	}

	var failed bool
	for _, n := range w.Notifiers {
		if err := n.NotifyBatchReport(ctx, report); err != nil {
			failed = true
			logging.Error().Err(err).Str("notifier", n.Name()).Str("report_id", report.ID).Msg("batch report notification failed")
		}
	}

	if failed {
		ack.Nack(false, false)
		return
	}
	logging.Info().Str("report_id", report.ID).Int("failed", report.Summary.Failed).Msg("batch report delivered")
	ack.Ack(false)
}
