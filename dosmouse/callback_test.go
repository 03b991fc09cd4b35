package dosmouse_test

import (
	"testing"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/internal/machine"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerSeg = 0x3000
	handlerOff = 0x0100
)

func installHandler(t *testing.T, d *dosmouse.Driver, mask uint16) {
	t.Helper()
	call(t, d, dosmouse.Registers{AX: 0x0c, CX: mask, ES: handlerSeg, DX: handlerOff})
}

func TestCallbackFrame(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	d.NotifyCaptured(true)
	installHandler(t, d, 0x1f)
	sp := m.Regs.SP

	d.NotifyMoved(4, 0, 0, 0)
	d.NotifyButtons(dosmouse.ButtonLeft)
	mask, delivered := service(d, m)
	require.True(t, delivered)
	assert.Equal(t, dosmouse.EventMoved|dosmouse.EventPressedLeft, mask)

	assert.Equal(t, mask, m.Regs.AL())
	assert.Equal(t, uint8(0), m.Regs.AH())
	assert.Equal(t, uint8(dosmouse.ButtonLeft), m.Regs.BL())
	assert.Equal(t, uint16(324), m.Regs.CX)
	assert.Equal(t, uint16(240), m.Regs.DX)
	assert.Equal(t, uint16(4), m.Regs.SI)
	assert.Equal(t, uint16(0), m.Regs.DI)

	// far call frame: handler on top, return trampoline below
	require.Equal(t, sp-8, m.Regs.SP)
	assert.Equal(t, uint16(handlerOff), m.Pop16())
	assert.Equal(t, uint16(handlerSeg), m.Pop16())
	assert.Equal(t, machine.CallbackReturn.Offset, m.Pop16())
	assert.Equal(t, machine.CallbackReturn.Segment, m.Pop16())
	assert.True(t, d.CallbackRunning())
}

func TestCallbackNotReentered(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	installHandler(t, d, 0x7f)

	d.NotifyButtons(dosmouse.ButtonLeft)
	_, delivered := service(d, m)
	require.True(t, delivered)

	d.NotifyButtons(0)
	mask, delivered := service(d, m)
	assert.Equal(t, dosmouse.EventReleasedLeft, mask)
	assert.False(t, delivered, "handler still running")

	out := call(t, d, dosmouse.Registers{AX: 0x06, BX: 0})
	assert.Equal(t, uint16(1), out.BX, "polled state still updated")

	d.CallbackReturned()
	mask, delivered = service(d, m)
	assert.Equal(t, uint8(0), mask)
	assert.False(t, delivered, "events during the handler are not replayed")

	d.NotifyButtons(dosmouse.ButtonRight)
	_, delivered = service(d, m)
	assert.True(t, delivered)
}

func TestCallbackMaskFilters(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	d.NotifyCaptured(true)
	installHandler(t, d, uint16(dosmouse.EventPressedRight))

	assert.False(t, d.HasCallback(dosmouse.EventMoved))
	assert.True(t, d.HasCallback(dosmouse.EventPressedRight|dosmouse.EventMoved))

	d.NotifyMoved(5, 5, 0, 0)
	mask, delivered := service(d, m)
	assert.Equal(t, dosmouse.EventMoved, mask)
	assert.False(t, delivered)

	d.NotifyButtons(dosmouse.ButtonRight)
	_, delivered = service(d, m)
	assert.True(t, delivered)
}

func TestCallbackSeamlessMovementFlagged(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	installHandler(t, d, 0x01)

	require.True(t, d.NotifyMoved(0, 0, 100, 100))
	_, delivered := service(d, m)
	require.True(t, delivered)

	assert.Equal(t, uint8(1), m.Regs.AH(), "absolute movement")
	assert.Equal(t, uint8(dosmouse.EventMoved), m.Regs.AL())
	assert.Equal(t, uint16(100), m.Regs.CX)
	assert.Equal(t, uint16(100), m.Regs.DX)
}

func TestCallbackWheel(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	d.NotifyCaptured(true)
	call(t, d, dosmouse.Registers{AX: 0x11})
	installHandler(t, d, uint16(dosmouse.EventWheelMoved))

	d.NotifyWheel(2)
	_, delivered := service(d, m)
	require.True(t, delivered)
	assert.Equal(t, uint8(2), m.Regs.BH())

	out := call(t, d, dosmouse.Registers{AX: 0x03})
	assert.Equal(t, uint8(0), out.BH(), "handler consumed the wheel counter")
}

func TestShutdownDropsCallback(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	m.Video().Fill(0, background, 0)
	installHandler(t, d, 0x7f)
	call(t, d, dosmouse.Registers{AX: 0x01})
	require.True(t, m.DriverActive())

	d.Shutdown()
	assert.False(t, m.DriverActive())
	assert.False(t, d.Active())
	assert.Equal(t, uint8(background), m.Video().GetPixel(320, 240, 0))
}
