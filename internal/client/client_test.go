package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/whatsapp/send-messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"leadIds":["a","b"]}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Message sending completed","results":[
			{"leadId":"a","status":"success","message":"Messages sent successfully"},
			{"leadId":"b","status":"skipped","message":"Messages already sent to this number"}],
			"summary":{"total":2,"success":1,"skipped":1,"failed":0},
			"rateLimit":{"leadsSent":2,"availableLeads":8,"canSendMore":true,"minutesRemaining":10,"timeUntilReset":600000}}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL+"/", 0).SendMessages(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Summary.Success)
	assert.Equal(t, 1, out.Summary.Skipped)
	assert.Equal(t, 8, out.RateLimit.AvailableLeads)
	require.Len(t, out.Results, 2)
}

func TestSendMessages_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "540")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Rate limit exceeded","message":"Only 2 leads available. Please wait 9 minutes.","availableLeads":2,"minutesRemaining":9,"timeUntilReset":540000}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).SendMessages(context.Background(), []string{"a", "b", "c"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, "Rate limit exceeded", apiErr.Message)
	assert.Equal(t, 2, apiErr.AvailableLeads)
	assert.Equal(t, 9, apiErr.MinutesRemaining)
	assert.Contains(t, apiErr.Error(), "Please wait 9 minutes")
}

func TestLeads_Pending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leads", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("pending"))
		_, _ = w.Write([]byte(`[{"leadId":"x","businessName":"X","contactNumber":"+94771234567"}]`))
	}))
	defer srv.Close()

	leads, err := New(srv.URL, 0).Leads(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "x", leads[0].LeadID)
}

func TestStatusEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/rate-limit/status":
			_, _ = w.Write([]byte(`{"maxLeads":10,"leadsSent":4,"availableLeads":6,"canSend":true}`))
		case "/api/whatsapp/status":
			_, _ = w.Write([]byte(`{"status":"connected","qr":null,"accountInfo":{"wid":"94771234567","pushname":"Shop","platform":"android"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, 0)

	st, err := c.RateLimitStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, st.AvailableLeads)

	snap, err := c.WhatsAppStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", string(snap.Status))
	require.NotNil(t, snap.AccountInfo)
	assert.Equal(t, "Shop", snap.AccountInfo.PushName)
}

func TestPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 0).RateLimitStatus(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
}
