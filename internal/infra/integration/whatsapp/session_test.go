package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Connect(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Status(ctx context.Context) (*SessionStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SessionStatus), args.Error(1)
}

func (m *MockGateway) QRCode(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestSession(g Gateway) (*Session, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSession(g, time.Second, 5*time.Second)
	s.now = c.now
	return s, c
}

func TestSession_PairingFlow(t *testing.T) {
	g := new(MockGateway)
	s, _ := newTestSession(g)
	ctx := context.Background()

	g.On("Status", mock.Anything).Return(&SessionStatus{}, nil).Once()
	g.On("Connect", mock.Anything).Return(nil).Once()
	g.On("QRCode", mock.Anything).Return("data:qr1", nil).Once()
	require.NoError(t, s.Poll(ctx))

	snap := s.Snapshot()
	assert.Equal(t, StateConnecting, snap.Status)
	require.NotNil(t, snap.QR)
	assert.Equal(t, "data:qr1", *snap.QR)
	assert.Nil(t, snap.AccountInfo)
	assert.False(t, s.Connected())

	// the code rotates while waiting for the scan
	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true}, nil).Once()
	g.On("QRCode", mock.Anything).Return("data:qr2", nil).Once()
	require.NoError(t, s.Poll(ctx))
	assert.Equal(t, "data:qr2", *s.Snapshot().QR)

	g.On("Status", mock.Anything).Return(&SessionStatus{
		Connected: true, LoggedIn: true, JID: "94771234567.0:1@s.whatsapp.net", PushName: "Shop", Platform: "android",
	}, nil).Once()
	require.NoError(t, s.Poll(ctx))

	snap = s.Snapshot()
	assert.Equal(t, StateConnected, snap.Status)
	assert.Nil(t, snap.QR)
	assert.Equal(t, &AccountInfo{Wid: "94771234567", PushName: "Shop", Platform: "android"}, snap.AccountInfo)
	assert.True(t, s.Connected())

	info, ok := s.Account()
	assert.True(t, ok)
	assert.Equal(t, "Shop", info.PushName)
	g.AssertExpectations(t)
}

func TestSession_RestoredSessionSkipsQR(t *testing.T) {
	g := new(MockGateway)
	s, _ := newTestSession(g)

	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true, LoggedIn: true, JID: "94770000000@s.whatsapp.net"}, nil)
	require.NoError(t, s.Poll(context.Background()))
	assert.Equal(t, StateConnected, s.State())
	g.AssertNotCalled(t, "QRCode", mock.Anything)
}

func TestSession_LossWaitsForReconnectDelay(t *testing.T) {
	g := new(MockGateway)
	s, c := newTestSession(g)
	ctx := context.Background()

	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true, LoggedIn: true}, nil).Once()
	require.NoError(t, s.Poll(ctx))

	g.On("Status", mock.Anything).Return(&SessionStatus{}, nil)
	require.NoError(t, s.Poll(ctx))
	assert.Equal(t, StateDisconnected, s.State())
	_, ok := s.Account()
	assert.False(t, ok)

	c.t = c.t.Add(2 * time.Second)
	require.NoError(t, s.Poll(ctx))
	g.AssertNotCalled(t, "Connect", mock.Anything)

	c.t = c.t.Add(4 * time.Second)
	g.On("Connect", mock.Anything).Return(nil).Once()
	g.On("QRCode", mock.Anything).Return("data:qr", nil).Once()
	require.NoError(t, s.Poll(ctx))
	assert.Equal(t, StateConnecting, s.State())
}

func TestSession_GatewayFailureDisconnects(t *testing.T) {
	g := new(MockGateway)
	s, _ := newTestSession(g)

	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true, LoggedIn: true}, nil).Once()
	require.NoError(t, s.Poll(context.Background()))

	g.On("Status", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	assert.Error(t, s.Poll(context.Background()))
	assert.False(t, s.Connected())
}

func TestSession_Disconnect(t *testing.T) {
	g := new(MockGateway)
	s, _ := newTestSession(g)
	ctx := context.Background()

	done, err := s.Disconnect(ctx)
	require.NoError(t, err)
	assert.False(t, done, "nothing to disconnect")
	g.AssertNotCalled(t, "Logout", mock.Anything)

	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true, LoggedIn: true}, nil).Once()
	require.NoError(t, s.Poll(ctx))

	g.On("Logout", mock.Anything).Return(errors.New("timeout")).Once()
	_, err = s.Disconnect(ctx)
	require.Error(t, err)
	assert.True(t, s.Connected())

	g.On("Logout", mock.Anything).Return(nil).Once()
	done, err = s.Disconnect(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, Snapshot{Status: StateDisconnected}, s.Snapshot())
}

func TestSession_ServeStopsOnCancel(t *testing.T) {
	g := new(MockGateway)
	s := NewSession(g, 10*time.Millisecond, time.Hour)
	g.On("Status", mock.Anything).Return(&SessionStatus{Connected: true, LoggedIn: true}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Serve(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, s.Connected())
}

func TestAllowedTransitions(t *testing.T) {
	assert.True(t, allowed(StateDisconnected, StateConnecting))
	assert.True(t, allowed(StateConnecting, StateConnected))
	assert.False(t, allowed(StateConnected, StateConnecting))
	assert.False(t, allowed(StateDisconnected, StateDisconnected))
}
