// Package integration holds the HTTP plumbing shared by the outbound API
// clients: a circuit breaker per upstream and a typed error for non-2xx replies.
package integration

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/xavierca1/leadreach/internal/infra/http/middleware"
	"github.com/xavierca1/leadreach/internal/logging"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 10 << 20

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Status, e.Body)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// Client sends requests to one upstream through a circuit breaker. Transport
// errors and 5xx replies count as failures; 4xx replies do not open the circuit.
type Client struct {
	Name    string
	HTTP    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(name string, timeout time.Duration) *Client {
	return &Client{
		Name:    name,
		HTTP:    &http.Client{Timeout: timeout},
		breaker: newBreaker(name),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	middleware.SetCircuitBreakerState(name, 0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			middleware.SetCircuitBreakerState(name, stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Do executes req and returns the body of a 2xx response.
func (c *Client) Do(req *http.Request) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%s: read response: %w", c.Name, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return data, &StatusError{Service: c.Name, Status: resp.StatusCode, Body: string(data)}
		}
		return data, nil
	})
	if err != nil {
		middleware.RecordIntegrationError(c.Name)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s unavailable: %w", c.Name, err)
		}
		return body, err
	}
	return body, nil
}
