package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/xavierca1/leadreach/internal/infra/http/middleware"
	"github.com/xavierca1/leadreach/internal/logging"
	"github.com/xavierca1/leadreach/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error        string   `json:"error"`
	Details      string   `json:"details,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// RateLimitResponse is returned with 429 when a batch does not fit the window.
type RateLimitResponse struct {
	Error            string `json:"error"`
	Message          string `json:"message"`
	AvailableLeads   int    `json:"availableLeads"`
	MinutesRemaining int    `json:"minutesRemaining"`
	TimeUntilReset   int64  `json:"timeUntilReset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps use case errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rle *usecase.RateLimitError
		de  *usecase.DomainError
		te  *usecase.TechnicalError
	)
	switch {
	case errors.As(err, &rle):
		middleware.RecordRateLimitRejection()
		d := rle.Decision
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.TimeUntilReset)))
		writeJSON(w, http.StatusTooManyRequests, RateLimitResponse{
			Error:            "Rate limit exceeded",
			Message:          d.Message,
			AvailableLeads:   d.AvailableLeads,
			MinutesRemaining: d.MinutesRemaining,
			TimeUntilReset:   d.TimeUntilReset,
		})
	case errors.As(err, &de):
		writeJSON(w, domainStatus(de.Code), ErrorResponse{
			Error:        de.Message,
			Details:      de.Details,
			Instructions: de.Instructions,
		})
	case errors.As(err, &te):
		logging.Ctx(r.Context()).Error().Err(err).Str("code", te.Code).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: te.Message, Details: te.Details})
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func domainStatus(code string) int {
	switch code {
	case usecase.CodeNotFound:
		return http.StatusNotFound
	case usecase.CodeAccessDenied:
		return http.StatusForbidden
	case usecase.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

func retryAfterSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(float64(ms) / float64(time.Second/time.Millisecond)))
}

// decodeJSON reads the body into dst and validates its struct tags. An empty
// body decodes as {}. Validation failures are reported as a 400 carrying msg.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, msg string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("request validation failed")
		writeErrorResponse(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}
