package dosmouse_test

import (
	"math"
	"testing"
	"time"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
	"github.com/stretchr/testify/assert"
)

func TestSpeedEstimator(t *testing.T) {
	clk := mtesting.NewClock()
	s := dosmouse.NewSpeedEstimator(1, clk.Now)

	s.Update(10)
	assert.Zero(t, s.Get(), "no full window yet")

	clk.Advance(100 * time.Millisecond)
	s.Update(0)
	assert.InDelta(t, 50, s.Get(), 0.01, "100 mickeys/s blended with the prior 0")

	s.Update(10)
	clk.Advance(100 * time.Millisecond)
	s.Update(0)
	assert.InDelta(t, 75, s.Get(), 0.01)

	clk.Advance(time.Second)
	assert.Zero(t, s.Get(), "stopped")

	s.Update(10)
	assert.Zero(t, s.Get(), "history dropped after a pause")

	clk.Advance(200 * time.Millisecond)
	s.Update(10)
	assert.InDelta(t, 50, s.Get(), 0.01)

	s.Reset()
	assert.Zero(t, s.Get())
}

func TestSpeedEstimatorScaling(t *testing.T) {
	clk := mtesting.NewClock()
	s := dosmouse.NewSpeedEstimator(6, clk.Now)

	s.Update(10)
	clk.Advance(100 * time.Millisecond)
	s.Update(0)
	assert.InDelta(t, 300, s.Get(), 0.1)
}

func TestBallistics(t *testing.T) {
	type testCase struct {
		in   float32
		want float32
	}
	cases := []testCase{
		{in: 0, want: 0.5},
		{in: -1, want: 0.5},
		{in: float32(math.NaN()), want: 0.5},
		{in: 3, want: 0.75},
		{in: 6, want: 1.0},
		{in: 100, want: 1.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, dosmouse.Ballistics(tc.in), 1e-6, "ballistics(%v)", tc.in)
	}

	prev := dosmouse.Ballistics(0)
	for x := float32(0.25); x <= 6; x += 0.25 {
		cur := dosmouse.Ballistics(x)
		assert.GreaterOrEqual(t, cur, prev, "monotonic at %v", x)
		prev = cur
	}
}
