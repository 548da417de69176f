package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/queue"
)

// MessageTransport delivers text messages to a country-code-prefixed number.
type MessageTransport interface {
	SendText(ctx context.Context, phone, body string) error
	IsRegistered(ctx context.Context, phone string) (bool, error)
}

// ConnectionState reports whether the transport session can send.
type ConnectionState interface {
	Connected() bool
}

type SearchProvider interface {
	FetchPage(ctx context.Context, query string, page int) (*entity.SearchPage, error)
}

// SpreadsheetClient is the subset of the Sheets v4 API the export needs.
type SpreadsheetClient interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	ClearRange(ctx context.Context, spreadsheetID, rng string) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error
}

type ReportPublisher interface {
	PublishBatchReport(ctx context.Context, report queue.BatchReport) error
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
