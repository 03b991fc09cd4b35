package dosmouse_test

import (
	"testing"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonPressRelease(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)

	require.True(t, d.NotifyButtons(dosmouse.ButtonLeft))
	require.True(t, d.NotifyButtons(0))
	assert.False(t, d.NotifyButtons(0), "unchanged state is not queued")

	mask, _ := service(d, m)
	assert.Equal(t, dosmouse.EventPressedLeft|dosmouse.EventReleasedLeft, mask)

	out := call(t, d, dosmouse.Registers{AX: 0x05, BX: 0})
	assert.Equal(t, uint16(0), out.AX, "current button state")
	assert.Equal(t, uint16(1), out.BX)
	assert.Equal(t, uint16(320), out.CX)
	assert.Equal(t, uint16(240), out.DX)

	out = call(t, d, dosmouse.Registers{AX: 0x05, BX: 0})
	assert.Equal(t, uint16(0), out.BX, "reading clears the press counter")

	out = call(t, d, dosmouse.Registers{AX: 0x06, BX: 0})
	assert.Equal(t, uint16(1), out.BX)

	out = call(t, d, dosmouse.Registers{AX: 0x06, BX: 2})
	assert.Equal(t, uint16(0), out.BX, "middle button never released")
}

func TestButtonStateInPosition(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)

	d.NotifyButtons(dosmouse.ButtonLeft | dosmouse.ButtonRight)
	before := call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(0), before.BL(), "not serviced yet")

	mask, _ := service(d, m)
	assert.Equal(t, dosmouse.EventPressedLeft|dosmouse.EventPressedRight, mask)

	out := call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(3), out.BL())
}

func TestButtonQueueKeepsEveryTransition(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)

	for range 3 {
		d.NotifyButtons(dosmouse.ButtonMiddle)
		d.NotifyButtons(0)
	}
	service(d, m)

	press := call(t, d, dosmouse.Registers{AX: 0x05, BX: 2})
	release := call(t, d, dosmouse.Registers{AX: 0x06, BX: 2})
	assert.Equal(t, uint16(3), press.BX)
	assert.Equal(t, uint16(3), release.BX)
}

func TestWheel(t *testing.T) {
	type testCase struct {
		name  string
		ticks []int16
		want  uint16
	}
	cases := []testCase{
		{name: "single tick down", ticks: []int16{1}, want: 1},
		{name: "single tick up", ticks: []int16{-1}, want: 0xffff},
		{name: "saturates high", ticks: []int16{100, 100}, want: 127},
		{name: "saturates low", ticks: []int16{-100, -100, -100}, want: 0xff80},
		{name: "cancels out", ticks: []int16{5, -2}, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, m, _ := mtesting.NewDriver(t, 0x12)
			caps := call(t, d, dosmouse.Registers{AX: 0x11})
			require.Equal(t, dosmouse.WheelAPIIdentifier, int(caps.AX))
			assert.Equal(t, uint16(1), caps.CX)

			for _, tick := range tc.ticks {
				d.NotifyWheel(tick)
			}
			mask, _ := service(d, m)
			assert.Equal(t, dosmouse.EventWheelMoved, mask)

			out := call(t, d, dosmouse.Registers{AX: 0x05, BX: 0xffff})
			assert.Equal(t, uint16(0x05), out.AX, "AX untouched for the wheel")
			assert.Equal(t, tc.want, out.BX)

			out = call(t, d, dosmouse.Registers{AX: 0x05, BX: 0xffff})
			assert.Equal(t, uint16(0), out.BX, "reading resets the counter")
		})
	}
}

func TestWheelIgnoredWithoutWheelAPI(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)

	assert.False(t, d.NotifyWheel(3))
	mask, _ := service(d, m)
	assert.Equal(t, uint8(0), mask)

	out := call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(0), out.BH())

	call(t, d, dosmouse.Registers{AX: 0x11})
	require.True(t, d.NotifyWheel(3))
	call(t, d, dosmouse.Registers{AX: 0x00})
	assert.False(t, d.NotifyWheel(3), "hard reset turns the extension off")
}

func TestWheelInPosition(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	call(t, d, dosmouse.Registers{AX: 0x11})

	d.NotifyWheel(-2)
	service(d, m)

	out := call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(0xfe), out.BH())
	out = call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(0), out.BH())
}
