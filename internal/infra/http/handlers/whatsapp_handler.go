package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/leadreach/internal/entity"
	"github.com/xavierca1/leadreach/internal/infra/http/middleware"
	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/usecase"
)

// WhatsAppSession is the part of whatsapp.Session the handlers read and drive.
type WhatsAppSession interface {
	Snapshot() whatsapp.Snapshot
	Account() (whatsapp.AccountInfo, bool)
	Disconnect(ctx context.Context) (bool, error)
}

// WhatsAppHandler serves the session, outreach and pacing endpoints.
type WhatsAppHandler struct {
	Session WhatsAppSession
	Send    *usecase.SendMessagesUseCase
	Limiter *usecase.RateLimiter
	Greeter *usecase.Greeter
}

func NewWhatsAppHandler(session WhatsAppSession, send *usecase.SendMessagesUseCase, limiter *usecase.RateLimiter, greeter *usecase.Greeter) *WhatsAppHandler {
	return &WhatsAppHandler{Session: session, Send: send, Limiter: limiter, Greeter: greeter}
}

// HandleStatus returns {status, qr, accountInfo}. GET /api/whatsapp/status
func (h *WhatsAppHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.Snapshot())
}

func (h *WhatsAppHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	info, ok := h.Session.Account()
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "WhatsApp is not connected")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleDisconnect logs the linked device out. POST /api/whatsapp/disconnect
func (h *WhatsAppHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	done, err := h.Session.Disconnect(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("whatsapp logout failed")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to disconnect")
		return
	}
	if !done {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "WhatsApp is not connected"})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "WhatsApp disconnected successfully"})
}

type sendMessagesRequest struct {
	LeadIDs []string `json:"leadIds"`
}

// HandleSendMessages dispatches one batch. POST /api/whatsapp/send-messages
// A body that is not JSON is rejected first; after decoding, the connection
// check runs before the lead id checks.
func (h *WhatsAppHandler) HandleSendMessages(w http.ResponseWriter, r *http.Request) {
	var req sendMessagesRequest
	if !decodeJSON(w, r, &req, "Lead IDs array is required") {
		return
	}

	out, err := h.Send.Execute(r.Context(), req.LeadIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.RecordDispatch(string(entity.DispatchSuccess), out.Summary.Success)
	middleware.RecordDispatch(string(entity.DispatchSkipped), out.Summary.Skipped)
	middleware.RecordDispatch(string(entity.DispatchError), out.Summary.Failed)
	writeJSON(w, http.StatusOK, out)
}

// HandleRateLimitStatus reports the current window. GET /api/rate-limit/status
func (h *WhatsAppHandler) HandleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Limiter.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type greetingResponse struct {
	Greeting string `json:"greeting"`
}

func (h *WhatsAppHandler) HandleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, greetingResponse{Greeting: h.Greeter.Current()})
}
