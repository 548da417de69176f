package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leadreach/internal/infra/http/middleware"
)

// Handlers groups every endpoint the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Leads    *LeadHandler
	Messages *MessageHandler
	WhatsApp *WhatsAppHandler
	Sheets   *SheetsHandler
}

type RouterConfig struct {
	CORSOrigins []string
	// RequestsPerMinute caps /api per client IP; zero disables the cap.
	RequestsPerMinute int
}

// NewRouter mounts the API under /api plus /health and /metrics at the root.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestsPerMinute > 0 {
			r.Use(httprate.Limit(
				cfg.RequestsPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeErrorResponse(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				}),
			))
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeErrorResponse(w, http.StatusNotFound, "API endpoint not found")
		})

		r.Get("/", h.Health.HandleRoot)

		r.Post("/search", h.Leads.HandleSearch)
		r.Get("/leads", h.Leads.HandleList)
		r.Post("/leads", h.Leads.HandleSaveLeads)
		r.Patch("/leads/{leadId}/reached", h.Leads.HandleMarkReached)
		r.Get("/analytics", h.Leads.HandleAnalytics)
		r.Get("/last-search", h.Leads.HandleLastSearch)
		r.Get("/last-search/csv", h.Leads.HandleLastSearchCSV)

		r.Get("/messages", h.Messages.HandleListMessages)
		r.Post("/messages", h.Messages.HandleSaveMessages)
		r.Get("/categories", h.Messages.HandleListCategories)
		r.Post("/categories", h.Messages.HandleAddCategory)
		r.Get("/characters", h.Messages.HandleListCharacters)
		r.Post("/characters", h.Messages.HandleAddCharacter)

		r.Get("/whatsapp/status", h.WhatsApp.HandleStatus)
		r.Get("/whatsapp/account", h.WhatsApp.HandleAccount)
		r.Post("/whatsapp/disconnect", h.WhatsApp.HandleDisconnect)
		r.Post("/whatsapp/send-messages", h.WhatsApp.HandleSendMessages)
		r.Get("/rate-limit/status", h.WhatsApp.HandleRateLimitStatus)
		r.Get("/greeting", h.WhatsApp.HandleGreeting)

		r.Post("/google-sheets/save", h.Sheets.HandleSave)
	})

	return r
}
