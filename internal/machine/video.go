package machine

import (
	"errors"
	"fmt"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
)

const (
	numPages    = 8
	crtcColor   = 0x3d4
	crtcMono    = 0x3b4
	textRows    = 25
	defaultAttr = 0x07
)

// ErrUnknownMode is returned by SetMode for modes missing from the table.
var ErrUnknownMode = errors.New("unknown video mode")

// Modes lists the BIOS modes the machine can switch to.
var Modes = map[uint8]dosmouse.VideoMode{
	0x00: {Number: 0x00, Text: true, Width: 320, Height: 200, Columns: 40, LastRow: textRows - 1, PageSize: 0x0800, CRTC: crtcColor},
	0x01: {Number: 0x01, Text: true, Width: 320, Height: 200, Columns: 40, LastRow: textRows - 1, PageSize: 0x0800, CRTC: crtcColor},
	0x02: {Number: 0x02, Text: true, Width: 640, Height: 200, Columns: 80, LastRow: textRows - 1, PageSize: 0x1000, CRTC: crtcColor},
	0x03: {Number: 0x03, Text: true, Width: 640, Height: 200, Columns: 80, LastRow: textRows - 1, PageSize: 0x1000, CRTC: crtcColor},
	0x07: {Number: 0x07, Text: true, Width: 720, Height: 350, Columns: 80, LastRow: textRows - 1, PageSize: 0x1000, CRTC: crtcMono},
	0x04: {Number: 0x04, Width: 320, Height: 200},
	0x05: {Number: 0x05, Width: 320, Height: 200},
	0x06: {Number: 0x06, Width: 640, Height: 200},
	0x0d: {Number: 0x0d, Width: 320, Height: 200},
	0x0e: {Number: 0x0e, Width: 640, Height: 200},
	0x0f: {Number: 0x0f, Width: 640, Height: 350},
	0x10: {Number: 0x10, Width: 640, Height: 350},
	0x11: {Number: 0x11, Width: 640, Height: 480},
	0x12: {Number: 0x12, Width: 640, Height: 480},
	0x13: {Number: 0x13, Width: 320, Height: 200},
}

// Video implements dosmouse.Video on plain byte buffers: one attribute and
// character word per text cell and one byte per pixel.
type Video struct {
	adapter dosmouse.Adapter
	mode    dosmouse.VideoMode

	text   [numPages][]uint16
	pixels [numPages][]uint8

	cursorStart, cursorEnd uint8
}

func newVideo(adapter dosmouse.Adapter) *Video {
	return &Video{adapter: adapter}
}

// SetMode switches to a mode from Modes and clears the screen.
func (v *Video) SetMode(n uint8) error {
	vm, ok := Modes[n]
	if !ok {
		return fmt.Errorf("%w: 0x%02x", ErrUnknownMode, n)
	}
	v.SetModeInfo(vm)
	return nil
}

// SetModeInfo installs an arbitrary mode description, including ones the
// driver does not know about.
func (v *Video) SetModeInfo(vm dosmouse.VideoMode) {
	v.mode = vm
	for p := range numPages {
		v.text[p] = nil
		v.pixels[p] = nil
		if vm.Text {
			cells := make([]uint16, int(vm.Columns)*(int(vm.LastRow)+1))
			for i := range cells {
				cells[i] = defaultAttr << 8
			}
			v.text[p] = cells
		} else {
			v.pixels[p] = make([]uint8, int(vm.Width)*int(vm.Height))
		}
	}
}

// SetPage selects the active display page.
func (v *Video) SetPage(page uint8) { v.mode.Page = page % numPages }

func (v *Video) Mode() dosmouse.VideoMode  { return v.mode }
func (v *Video) Adapter() dosmouse.Adapter { return v.adapter }

func (v *Video) pixelIndex(x, y uint16, page uint8) (int, bool) {
	if page >= numPages || x >= v.mode.Width || y >= v.mode.Height || v.pixels[page] == nil {
		return 0, false
	}
	return int(y)*int(v.mode.Width) + int(x), true
}

func (v *Video) GetPixel(x, y uint16, page uint8) uint8 {
	i, ok := v.pixelIndex(x, y, page)
	if !ok {
		return 0
	}
	return v.pixels[page][i]
}

func (v *Video) PutPixel(x, y uint16, page uint8, color uint8) {
	if i, ok := v.pixelIndex(x, y, page); ok {
		v.pixels[page][i] = color
	}
}

func (v *Video) cellIndex(col, row uint16, page uint8) (int, bool) {
	if page >= numPages || col >= v.mode.Columns || int(row) > int(v.mode.LastRow) || v.text[page] == nil {
		return 0, false
	}
	return int(row)*int(v.mode.Columns) + int(col), true
}

// ReadCharAttr returns the cell as the BIOS does: attribute in the high
// byte, character in the low byte.
func (v *Video) ReadCharAttr(col, row uint16, page uint8) uint16 {
	i, ok := v.cellIndex(col, row, page)
	if !ok {
		return 0
	}
	return v.text[page][i]
}

func (v *Video) WriteChar(col, row uint16, page uint8, chr, attr uint8) {
	if i, ok := v.cellIndex(col, row, page); ok {
		v.text[page][i] = uint16(attr)<<8 | uint16(chr)
	}
}

func (v *Video) SetCursorShape(start, end uint8) {
	v.cursorStart, v.cursorEnd = start, end
}

// CursorShape returns the hardware text cursor scan lines.
func (v *Video) CursorShape() (start, end uint8) { return v.cursorStart, v.cursorEnd }

// Fill sets every pixel or cell of a page.
func (v *Video) Fill(page uint8, color uint8, cell uint16) {
	for i := range v.pixels[page] {
		v.pixels[page][i] = color
	}
	for i := range v.text[page] {
		v.text[page][i] = cell
	}
}
