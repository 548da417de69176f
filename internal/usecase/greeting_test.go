package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{6, "Good Morning"},
		{13, "Good Afternoon"},
		{18, "Good Evening"},
		{23, "Good Night"},
		{4, "Good Night"},
		{5, "Good Morning"},
		{11, "Good Morning"},
		{12, "Good Afternoon"},
		{17, "Good Evening"},
		{21, "Good Night"},
		{0, "Good Night"},
	}
	for _, tt := range tests {
		at := time.Date(2026, 1, 1, tt.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tt.want, Greeting(at), "hour %d", tt.hour)
	}
}

func TestGreeter_UsesReferenceTimezone(t *testing.T) {
	g := NewGreeter("Asia/Colombo")
	// 01:00 UTC is 06:30 in Colombo
	g.now = func() time.Time { return time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Good Morning", g.Current())

	// 12:00 UTC is 17:30 in Colombo
	g.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Good Evening", g.Current())
}

func TestGreeter_UnknownTimezoneFallsBackToColomboOffset(t *testing.T) {
	g := NewGreeter("Not/AZone")
	g.now = func() time.Time { return time.Date(2026, 1, 1, 16, 0, 0, 0, time.UTC) }
	// 16:00 UTC is 21:30 at +05:30
	assert.Equal(t, "Good Night", g.Current())
}
