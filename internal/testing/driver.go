package testing

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/internal/machine"
	"github.com/stretchr/testify/require"
)

// Clock is a manually advanced time source.
type Clock struct{ now time.Time }

func NewClock() *Clock {
	return &Clock{now: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time          { return c.now }
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDriver installs a driver on a fresh VGA machine in the given video
// mode. The clock never advances unless the caller does so, which keeps
// the acceleration coefficient at exactly 1.0.
func NewDriver(t *testing.T, mode uint8, opts ...func(*dosmouse.Options)) (*dosmouse.Driver, *machine.Machine, *Clock) {
	t.Helper()
	m, err := machine.New(mode, dosmouse.AdapterVGA)
	require.NoError(t, err)

	clk := NewClock()
	o := dosmouse.Options{
		CallbackReturn: machine.CallbackReturn,
		Clock:          clk.Now,
		Logger:         DiscardLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return dosmouse.New(m.Host(), o), m, clk
}
