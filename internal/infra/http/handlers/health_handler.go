package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger is a dependency that can be probed over the network.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports a connection's liveness without I/O.
type HealthChecker interface {
	Healthy() bool
}

type HealthHandler struct {
	Store     Pinger
	Queue     HealthChecker
	Gateway   Pinger
	Version   string
	StartTime time.Time
	Timeout   time.Duration
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewHealthHandler accepts nil for queue when publishing is not configured.
func NewHealthHandler(store Pinger, queue HealthChecker, gateway Pinger, version string) *HealthHandler {
	return &HealthHandler{
		Store:     store,
		Queue:     queue,
		Gateway:   gateway,
		Version:   version,
		StartTime: time.Now(),
		Timeout:   3 * time.Second,
	}
}

// HandleRoot answers GET /api.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: "API is running", Status: "success"})
}

// Handle probes every dependency. Storage and queue failures degrade the
// service; the gateway is reported but only blocks sending.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	deps := make(map[string]string)
	degraded := false

	if err := h.Store.Ping(ctx); err != nil {
		deps["storage"] = fmt.Sprintf("unhealthy: %v", err)
		degraded = true
	} else {
		deps["storage"] = "healthy"
	}

	switch {
	case h.Queue == nil:
		deps["rabbitmq"] = "not configured"
	case !h.Queue.Healthy():
		deps["rabbitmq"] = "unhealthy: connection closed"
		degraded = true
	default:
		deps["rabbitmq"] = "healthy"
	}

	if h.Gateway != nil {
		if err := h.Gateway.Ping(ctx); err != nil {
			deps["whatsapp_gateway"] = fmt.Sprintf("unreachable: %v", err)
		} else {
			deps["whatsapp_gateway"] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if degraded {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
