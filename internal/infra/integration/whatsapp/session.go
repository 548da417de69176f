package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xavierca1/leadreach/internal/logging"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

var transitions = map[State][]State{
	StateDisconnected: {StateConnecting, StateConnected},
	StateConnecting:   {StateConnected, StateDisconnected},
	StateConnected:    {StateDisconnected},
}

// Gateway is the part of Client the session needs.
type Gateway interface {
	Connect(ctx context.Context) error
	Status(ctx context.Context) (*SessionStatus, error)
	QRCode(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// Snapshot is the session as reported by GET /whatsapp/status.
type Snapshot struct {
	Status      State        `json:"status"`
	QR          *string      `json:"qr"`
	AccountInfo *AccountInfo `json:"accountInfo"`
}

// Session owns the link state. It is safe for concurrent use; Serve polls
// the gateway and moves the state along.
type Session struct {
	gateway        Gateway
	pollInterval   time.Duration
	reconnectDelay time.Duration
	now            func() time.Time

	mu      sync.RWMutex
	state   State
	qr      string
	account *AccountInfo
	lostAt  time.Time
}

func NewSession(gateway Gateway, pollInterval, reconnectDelay time.Duration) *Session {
	return &Session{
		gateway:        gateway,
		pollInterval:   pollInterval,
		reconnectDelay: reconnectDelay,
		now:            time.Now,
		state:          StateDisconnected,
	}
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateConnected
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Status: s.state}
	if s.qr != "" {
		qr := s.qr
		snap.QR = &qr
	}
	if s.account != nil {
		a := *s.account
		snap.AccountInfo = &a
	}
	return snap
}

// Account returns the linked account, or false when not connected.
func (s *Session) Account() (AccountInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateConnected || s.account == nil {
		return AccountInfo{}, false
	}
	return *s.account, true
}

// Disconnect logs the device out. It reports false when there was no
// session to end. The watcher re-initializes after the reconnect delay.
func (s *Session) Disconnect(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisconnected {
		return false, nil
	}
	if err := s.gateway.Logout(ctx); err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}
	s.moveTo(StateDisconnected)
	logging.Ctx(ctx).Info().Msg("whatsapp session logged out")
	return true, nil
}

// Poll reconciles the local state with the gateway once. Gateway calls
// are made without holding the lock.
func (s *Session) Poll(ctx context.Context) error {
	st, err := s.gateway.Status(ctx)
	if err != nil {
		s.mu.Lock()
		if s.state != StateDisconnected {
			logging.Warn().Err(err).Msg("whatsapp gateway unreachable, marking session disconnected")
			s.moveTo(StateDisconnected)
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	state, lostAt := s.state, s.lostAt
	switch {
	case st.Connected && st.LoggedIn:
		if state != StateConnected {
			s.account = &AccountInfo{Wid: jidUser(st.JID), PushName: st.PushName, Platform: st.Platform}
			s.moveTo(StateConnected)
			logging.Info().Str("wid", s.account.Wid).Msg("whatsapp client is ready")
		}
		s.mu.Unlock()
		return nil
	case state == StateConnected:
		logging.Warn().Msg("whatsapp session lost")
		s.moveTo(StateDisconnected)
		s.mu.Unlock()
		return nil
	case state == StateConnecting && !st.Connected:
		s.moveTo(StateDisconnected)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if state == StateDisconnected {
		if !lostAt.IsZero() && s.now().Sub(lostAt) < s.reconnectDelay {
			return nil
		}
		if !st.Connected {
			if err := s.gateway.Connect(ctx); err != nil {
				s.mu.Lock()
				s.lostAt = s.now()
				s.mu.Unlock()
				return fmt.Errorf("connect: %w", err)
			}
		}
	}

	qr, err := s.gateway.QRCode(ctx)
	if err != nil {
		return fmt.Errorf("qr: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != state || qr == "" || qr == s.qr {
		return nil
	}
	s.qr = qr
	if s.state == StateDisconnected {
		s.moveTo(StateConnecting)
	}
	logging.Info().Msg("QR code received, scan it with WhatsApp")
	return nil
}

// moveTo applies a transition; the caller holds mu.
func (s *Session) moveTo(to State) {
	if !allowed(s.state, to) {
		logging.Error().Str("from", string(s.state)).Str("to", string(to)).Msg("invalid whatsapp session transition ignored")
		return
	}
	s.state = to
	switch to {
	case StateConnected:
		s.qr = ""
	case StateDisconnected:
		s.qr = ""
		s.account = nil
		s.lostAt = s.now()
	}
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Serve polls until ctx is done. It runs as a supervised service.
func (s *Session) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			logging.Debug().Err(err).Msg("whatsapp session poll failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Session) String() string {
	return "whatsapp-session"
}

// jidUser turns "94771234567.0:12@s.whatsapp.net" into "94771234567".
func jidUser(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	user, _, _ = strings.Cut(user, ".")
	return user
}
