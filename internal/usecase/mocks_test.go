package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/database"
	"github.com/xavierca1/leadreach/internal/infra/queue"
)

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

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Connected() bool {
	return m.Called().Bool(0)
}

type MockSearchProvider struct {
	mock.Mock
}

func (m *MockSearchProvider) FetchPage(ctx context.Context, query string, page int) (*entity.SearchPage, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SearchPage), args.Error(1)
}

type MockSpreadsheetClient struct {
	mock.Mock
}

func (m *MockSpreadsheetClient) SheetTitles(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSpreadsheetClient) AddSheet(ctx context.Context, id, title string) error {
	return m.Called(ctx, id, title).Error(0)
}

func (m *MockSpreadsheetClient) ClearRange(ctx context.Context, id, rng string) error {
	return m.Called(ctx, id, rng).Error(0)
}

func (m *MockSpreadsheetClient) UpdateValues(ctx context.Context, id, rng string, values [][]string) error {
	return m.Called(ctx, id, rng, values).Error(0)
}

type MockReportPublisher struct {
	mock.Mock
}

func (m *MockReportPublisher) PublishBatchReport(ctx context.Context, report queue.BatchReport) error {
	return m.Called(ctx, report).Error(0)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Get(ctx context.Context) (entity.Analytics, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Analytics), args.Error(1)
}

func (m *MockAnalyticsRepository) Save(ctx context.Context, a entity.Analytics) error {
	return m.Called(ctx, a).Error(0)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ReplaceAll(ctx context.Context, leads []entity.Lead) error {
	return m.Called(ctx, leads).Error(0)
}

// statusErr mimics an integration error carrying an HTTP status.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) StatusCode() int { return e.code }

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newRepos(t *testing.T) *database.Repositories {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return database.NewRepositories(store)
}
