package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/xavierca1/leadreach/internal/config"
	"github.com/xavierca1/leadreach/internal/infra/database"
	"github.com/xavierca1/leadreach/internal/infra/http/handlers"
	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/infra/mail"
	"github.com/xavierca1/leadreach/internal/infra/queue"
	"github.com/xavierca1/leadreach/internal/infra/worker"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/supervisor"
	"github.com/xavierca1/leadreach/internal/usecase"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Caller: cfg.Logging.Caller})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("server stopped")
	}
	logging.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config) error {
	// 1. Storage
	store, err := database.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()
	repos := database.NewRepositories(store)
	logging.Info().Str("driver", cfg.Storage.Driver).Msg("storage ready")

	// 2. WhatsApp gateway and session
	gateway := whatsapp.NewClient(cfg.WhatsApp.GatewayURL, cfg.WhatsApp.Token)
	session := whatsapp.NewSession(gateway, cfg.WhatsApp.PollInterval, cfg.WhatsApp.ReconnectDelay)

	// 3. Report queue; publishing is off without a broker URL
	var (
		rabbit      *queue.RabbitMQ
		reports     usecase.ReportPublisher
		queueHealth handlers.HealthChecker
	)
	if cfg.Queue.URL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.Queue.URL)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		reports = queue.NewProducer(rabbit.Ch)
		queueHealth = rabbit
	}

	// 4. Use cases and handlers
	app := newApp(cfg, repos, gateway, session, reports)
	router := handlers.NewRouter(app.handlers(store, queueHealth, gateway), handlers.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	})

	// 5. Supervised services
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddDataService(worker.NewRateLimitReaper(app.limiter, 0))
	if rabbit != nil {
		tree.AddDataService(queue.NewWorker(rabbit.Ch, notifiers(cfg, gateway, session)...))
	}
	tree.AddMessagingService(session)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Str("version", version).Msg("server starting")
	return tree.Serve(ctx)
}

func notifiers(cfg *config.Config, gateway *whatsapp.Client, session *whatsapp.Session) []queue.ReportNotifier {
	var out []queue.ReportNotifier
	if cfg.MailEnabled() {
		m := cfg.Mail
		out = append(out, mail.NewEmailSender(m.Host, m.Port, m.User, m.Password, m.From, m.To))
	}
	if cfg.WhatsApp.OperatorPhone != "" {
		out = append(out, mail.NewWhatsAppSender(gateway, session, cfg.WhatsApp.OperatorPhone))
	}
	if len(out) == 0 {
		logging.Warn().Msg("no report notifiers configured; batch reports will only be logged")
	}
	return out
}
