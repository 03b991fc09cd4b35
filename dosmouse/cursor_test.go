package dosmouse_test

import (
	"testing"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const background = 5

func TestGraphicsCursorClippedBottomRight(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	v := m.Video()
	v.Fill(0, background, 0)

	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.Equal(t, uint8(0), v.GetPixel(320, 240, 0), "arrow tip drawn at the center")

	call(t, d, dosmouse.Registers{AX: 0x04, CX: 639, DX: 479})
	assert.Equal(t, uint8(background), v.GetPixel(320, 240, 0), "old position restored")
	assert.Equal(t, uint8(0), v.GetPixel(639, 479, 0))
	assert.Equal(t, uint8(background), v.GetPixel(638, 479, 0))
	assert.Equal(t, uint8(background), v.GetPixel(639, 478, 0))

	st := d.State()
	assert.Equal(t, int16(639), st.ClipX)
	assert.Equal(t, int16(479), st.ClipY)

	call(t, d, dosmouse.Registers{AX: 0x02})
	assert.Equal(t, uint8(background), v.GetPixel(639, 479, 0))
	assert.False(t, d.State().Background.Enabled)
}

func TestGraphicsCursorClippedLeft(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	v := m.Video()
	v.Fill(0, background, 0)

	const seg, off = 0x2000, 0x0100
	for i := range uint16(16) {
		m.WriteWord(seg, off+2*i, 0x0000)    // screen mask: discard background
		m.WriteWord(seg, off+32+2*i, 0xffff) // cursor mask: invert everything
	}

	call(t, d, dosmouse.Registers{AX: 0x01})
	call(t, d, dosmouse.Registers{AX: 0x04, CX: 0, DX: 0})
	call(t, d, dosmouse.Registers{AX: 0x09, BX: 8, CX: 0, ES: seg, DX: off})

	out := call(t, d, dosmouse.Registers{AX: 0x2a})
	assert.Equal(t, uint16(8), out.BX, "hot spot x")

	for x := range uint16(8) {
		assert.Equal(t, uint8(0x0f), v.GetPixel(x, 0, 0), "x=%d", x)
	}
	assert.Equal(t, uint8(background), v.GetPixel(8, 0, 0))
	assert.Equal(t, uint8(0x0f), v.GetPixel(0, 15, 0))
	assert.Equal(t, uint8(background), v.GetPixel(0, 16, 0))
}

func TestGraphicsCursorHorizontalRatio(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x13)
	v := m.Video()
	v.Fill(0, background, 0)

	call(t, d, dosmouse.Registers{AX: 0x01})
	// 320 in the virtual 640 pixel space; the top row of the default
	// screen mask clears two pixels
	assert.Equal(t, uint8(0), v.GetPixel(160, 100, 0))
	assert.Equal(t, uint8(0), v.GetPixel(161, 100, 0))
	assert.Equal(t, uint8(background), v.GetPixel(162, 100, 0))
}

func TestUpdateRegionHidesCursor(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	v := m.Video()
	v.Fill(0, background, 0)

	call(t, d, dosmouse.Registers{AX: 0x01})
	require.True(t, d.State().Background.Enabled)

	call(t, d, dosmouse.Registers{AX: 0x10, CX: 0, DX: 0, SI: 639, DI: 479})
	assert.False(t, d.State().Background.Enabled)
	assert.Equal(t, uint8(background), v.GetPixel(320, 240, 0))

	call(t, d, dosmouse.Registers{AX: 0x04, CX: 100, DX: 100})
	assert.False(t, d.State().Background.Enabled, "still inside the region")

	// showing again clears the region
	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.True(t, d.State().Background.Enabled)
	assert.Equal(t, uint8(0), v.GetPixel(100, 100, 0))
}

func TestVGARegistersRestored(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	p := m.Ports()

	p.SetGraphicsRegister(0x03, 0x18)
	p.SetGraphicsRegister(0x05, 0x0a)
	p.Out(0x3c4, 0x02)
	p.Out(0x3c5, 0x03)
	p.Out(0x3c4, 0x01)
	writes := p.Writes()

	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.Greater(t, p.Writes(), writes)

	assert.Equal(t, uint8(0x18), p.GraphicsRegister(0x03))
	assert.Equal(t, uint8(0x0a), p.GraphicsRegister(0x05))
	assert.Equal(t, uint8(0x03), p.SequencerRegister(0x02))
	assert.Equal(t, uint8(0x01), p.SequencerIndex())
}

func TestTextSoftwareCursor(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x03)
	v := m.Video()
	v.WriteChar(40, 12, 0, 'A', 0x07)

	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.Equal(t, uint16(0x7041), v.ReadCharAttr(40, 12, 0))

	call(t, d, dosmouse.Registers{AX: 0x04, CX: 0, DX: 0})
	assert.Equal(t, uint16(0x0741), v.ReadCharAttr(40, 12, 0), "cell restored")
	assert.Equal(t, uint16(0x7000), v.ReadCharAttr(0, 0, 0))

	call(t, d, dosmouse.Registers{AX: 0x02})
	assert.Equal(t, uint16(0x0700), v.ReadCharAttr(0, 0, 0))
}

func TestTextCustomMasks(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x03)
	v := m.Video()
	v.WriteChar(40, 12, 0, 'A', 0x07)

	call(t, d, dosmouse.Registers{AX: 0x0a, BX: 0, CX: 0x0000, DX: 0x4e2a})
	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.Equal(t, uint16(0x4e2a), v.ReadCharAttr(40, 12, 0))

	out := call(t, d, dosmouse.Registers{AX: 0x27})
	assert.Equal(t, uint16(0x0000), out.AX)
	assert.Equal(t, uint16(0x4e2a), out.BX)
}

func TestTextHardwareCursor(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x03)

	call(t, d, dosmouse.Registers{AX: 0x0a, BX: 1, CX: 6, DX: 7})
	start, end := m.Video().CursorShape()
	assert.Equal(t, uint8(6), start)
	assert.Equal(t, uint8(7), end)

	call(t, d, dosmouse.Registers{AX: 0x01})
	// row 12, column 40 of an 80 column page
	assert.Equal(t, uint16(0x03e8), m.Ports().CursorLocation())
	assert.Equal(t, uint16(0x0700), m.Video().ReadCharAttr(40, 12, 0), "cell untouched")
}

func TestVideoModeChangeHidesCursor(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)
	call(t, d, dosmouse.Registers{AX: 0x01})
	call(t, d, dosmouse.Registers{AX: 0x07, CX: 0, DX: 100})

	d.BeforeNewVideoMode()
	require.NoError(t, m.Video().SetMode(0x03))
	d.AfterNewVideoMode(true)

	st := d.State()
	assert.Equal(t, uint16(1), st.Hidden)
	assert.Equal(t, uint8(0x03), st.Mode)
	assert.Equal(t, int16(639), st.MaxPosX)
	assert.Equal(t, int16(199), st.MaxPosY)
	assert.Equal(t, uint16(0xfff8), st.GranularityX)
}

func TestUnknownVideoModeInhibitsDrawing(t *testing.T) {
	d, m, _ := mtesting.NewDriver(t, 0x12)

	d.BeforeNewVideoMode()
	m.Video().SetModeInfo(dosmouse.VideoMode{Number: 0x6a, Width: 800, Height: 600})
	d.AfterNewVideoMode(true)
	assert.True(t, d.State().InhibitDraw)

	call(t, d, dosmouse.Registers{AX: 0x01})
	assert.False(t, d.State().Background.Enabled)
}
