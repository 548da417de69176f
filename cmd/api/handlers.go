package main

import (
	"github.com/xavierca1/leadreach/internal/config"
	"github.com/xavierca1/leadreach/internal/infra/database"
	"github.com/xavierca1/leadreach/internal/infra/http/handlers"
	"github.com/xavierca1/leadreach/internal/infra/integration/serper"
	"github.com/xavierca1/leadreach/internal/infra/integration/sheets"
	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/usecase"
)

// app holds the use cases shared by the handlers and the background services.
type app struct {
	limiter  *usecase.RateLimiter
	greeter  *usecase.Greeter
	session  *whatsapp.Session
	search   *usecase.SearchLeadsUseCase
	save     *usecase.SaveLeadsUseCase
	queries  *usecase.LeadQueries
	export   *usecase.ExportUseCase
	messages *usecase.MessagesUseCase
	catalog  *usecase.CatalogUseCase
	send     *usecase.SendMessagesUseCase
}

func newApp(cfg *config.Config, repos *database.Repositories, gateway *whatsapp.Client, session *whatsapp.Session, reports usecase.ReportPublisher) *app {
	limiter := usecase.NewRateLimiter(repos.RateLimit, cfg.RateLimit.MaxLeads, cfg.RateLimit.Cooldown)
	greeter := usecase.NewGreeter(cfg.Dispatch.Timezone)

	dispatcher := usecase.NewDispatcher(repos.Leads, repos.Messages, repos.Analytics, gateway, greeter, usecase.DispatcherConfig{
		MessageDelay:            cfg.Dispatch.MessageDelay,
		PauseMin:                cfg.Dispatch.PauseMin,
		PauseMax:                cfg.Dispatch.PauseMax,
		StrictRegistrationCheck: cfg.WhatsApp.StrictRegistrationCheck,
	})

	// nil interfaces, not typed nils, mark unconfigured integrations
	var provider usecase.SearchProvider
	if cfg.Serper.APIKey != "" {
		provider = serper.NewClient(cfg.Serper.APIKey, cfg.Serper.URL, cfg.Serper.RequestsPerSecond)
	} else {
		logging.Warn().Msg("SERPER_API_KEY not set; search is disabled")
	}
	var sheetsClient usecase.SpreadsheetClient
	if cfg.SheetsEnabled() {
		sheetsClient = sheets.NewClient(cfg.Sheets.ServiceAccountEmail, cfg.Sheets.PrivateKey)
	}

	return &app{
		limiter:  limiter,
		greeter:  greeter,
		session:  session,
		search:   usecase.NewSearchLeadsUseCase(provider, repos.Leads, repos.LastSearch, cfg.Serper.MaxPages),
		save:     usecase.NewSaveLeadsUseCase(repos.Leads, repos.Analytics),
		queries:  usecase.NewLeadQueries(repos.Leads, repos.Analytics, repos.LastSearch),
		export:   usecase.NewExportUseCase(sheetsClient, cfg.Sheets.SpreadsheetID, cfg.Sheets.ServiceAccountEmail, repos.LastSearch),
		messages: usecase.NewMessagesUseCase(repos.Messages),
		catalog:  usecase.NewCatalogUseCase(repos.Categories, repos.Characters),
		send:     usecase.NewSendMessagesUseCase(session, limiter, dispatcher, reports),
	}
}

func (a *app) handlers(store handlers.Pinger, queueHealth handlers.HealthChecker, gateway handlers.Pinger) handlers.Handlers {
	return handlers.Handlers{
		Health:   handlers.NewHealthHandler(store, queueHealth, gateway, version),
		Leads:    handlers.NewLeadHandler(a.search, a.save, a.queries, a.export),
		Messages: handlers.NewMessageHandler(a.messages, a.catalog),
		WhatsApp: handlers.NewWhatsAppHandler(a.session, a.send, a.limiter, a.greeter),
		Sheets:   handlers.NewSheetsHandler(a.export),
	}
}
