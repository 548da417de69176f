package usecase

import (
	"time"

	"github.com/xavierca1/leadreach/internal/logging"
)

// Greeting is the time-of-day salutation for t's hour.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "Good Morning"
	case h >= 12 && h < 17:
		return "Good Afternoon"
	case h >= 17 && h < 21:
		return "Good Evening"
	default:
		return "Good Night"
	}
}

// Greeter produces greetings in a fixed reference timezone.
type Greeter struct {
	loc *time.Location
	now func() time.Time
}

// NewGreeter falls back to UTC+05:30 when tz cannot be loaded.
func NewGreeter(tz string) *Greeter {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logging.Warn().Err(err).Str("timezone", tz).Msg("unknown timezone, using UTC+05:30")
		loc = time.FixedZone("UTC+0530", 5*3600+30*60)
	}
	return &Greeter{loc: loc, now: time.Now}
}

func (g *Greeter) Current() string {
	return Greeting(g.now().In(g.loc))
}
