package dosmouse

import (
	"fmt"
	"math"
)

// Version reported by function 0x24.
const (
	DriverVersion = 0x0805 // 8.05
	MouseTypePS2  = 0x04

	WheelAPIIdentifier = 0x574d // "WM"
)

// ResetDriver implements functions 0x00 (hard) and 0x21 (soft). It
// returns the "driver installed" status and the number of buttons.
func (d *Driver) ResetDriver(hard bool) (status uint16, buttons uint16) {
	if hard {
		d.resetHardware()
	}
	d.reset()
	return 0xffff, numButtons
}

// ShowCursor decrements the hide counter, never below 0, and redraws.
func (d *Driver) ShowCursor() {
	if d.state.Hidden != 0 {
		d.state.Hidden--
	}
	d.state.UpdateRegionY[1] = -1 // offscreen
	d.DrawCursor()
}

// HideCursor removes the cursor from the screen and increments the hide
// counter.
func (d *Driver) HideCursor() {
	d.restoreBackground()
	d.state.Hidden++
}

// Position implements function 0x03. Reading clears the wheel counter.
func (d *Driver) Position() (buttons Buttons, wheel uint8, x, y uint16) {
	return d.buttons, d.getResetWheel8(), d.getPosX(), d.getPosY()
}

// SetPosition implements function 0x04. An axis is only written when the
// request differs from the rounded current position, so repeated
// get/set round trips do not lose the fractional part (Arena, Wolf).
// The coordinates are unsigned, as real drivers read them.
func (d *Driver) SetPosition(x, y uint16) {
	if x != d.getPosX() {
		d.posX = float32(x)
	}
	if y != d.getPosY() {
		d.posY = float32(y)
	}
	d.limitCoordinates()
	d.DrawCursor()
}

// ButtonInfo is the answer of functions 0x05 and 0x06.
type ButtonInfo struct {
	Buttons Buttons
	Count   uint16
	X, Y    uint16
}

const wheelIndex = 0xffff

// ButtonPress implements function 0x05. Index 0xffff reads the wheel
// instead, if the WheelAPI extension is on; the returned ok is false in
// that case so the caller leaves AX untouched.
func (d *Driver) ButtonPress(idx uint16) (info ButtonInfo, ok bool) {
	return d.buttonData(idx, &d.state.TimesPressed, &d.state.LastPressedX, &d.state.LastPressedY)
}

// ButtonRelease implements function 0x06, see ButtonPress.
func (d *Driver) ButtonRelease(idx uint16) (info ButtonInfo, ok bool) {
	return d.buttonData(idx, &d.state.TimesReleased, &d.state.LastReleasedX, &d.state.LastReleasedY)
}

func (d *Driver) buttonData(idx uint16, times, lastX, lastY *[numButtons]uint16) (ButtonInfo, bool) {
	switch {
	case idx == wheelIndex && d.state.WheelAPI:
		return ButtonInfo{
			Count: d.getResetWheel16(),
			X:     d.state.LastWheelX,
			Y:     d.state.LastWheelY,
		}, false
	case idx < numButtons:
		info := ButtonInfo{
			Buttons: d.buttons,
			Count:   times[idx],
			X:       lastX[idx],
			Y:       lastY[idx],
		}
		times[idx] = 0
		return info, true
	default:
		// unsupported index, answer something sane
		return ButtonInfo{Buttons: d.buttons}, true
	}
}

// SetHorizontalRange implements function 0x07. Lemmings wants 1-640,
// Iron Seed 0-639; the arguments are simply ordered.
func (d *Driver) SetHorizontalRange(a, b int16) {
	d.state.MinPosX = min(a, b)
	d.state.MaxPosX = max(a, b)
	// Battle Chess wants the cursor clamped, not recentered
	d.posX = clampf(d.posX, float32(d.state.MinPosX), float32(d.state.MaxPosX))
	d.logger.Info("Define horizontal range", "min", d.state.MinPosX, "max", d.state.MaxPosX)
}

// SetVerticalRange implements function 0x08.
func (d *Driver) SetVerticalRange(a, b int16) {
	d.state.MinPosY = min(a, b)
	d.state.MaxPosY = max(a, b)
	d.posY = clampf(d.posY, float32(d.state.MinPosY), float32(d.state.MaxPosY))
	d.logger.Info("Define vertical range", "min", d.state.MinPosY, "max", d.state.MaxPosY)
}

// DefineGraphicsCursor implements function 0x09 once the masks have been
// read from guest memory.
func (d *Driver) DefineGraphicsCursor(hotX, hotY int16, screen, cursor [cursorSizeY]uint16) {
	d.state.UserDefScreen = screen
	d.state.UserDefCursor = cursor
	d.state.UserScreenMask = true
	d.state.UserCursorMask = true
	d.state.HotX = clampHot(hotX, cursorSizeX)
	d.state.HotY = clampHot(hotY, cursorSizeY)
	d.state.CursorType = CursorText
	d.DrawCursor()
}

func clampHot(v int16, size int16) int16 {
	return min(max(v, -size), size)
}

// DefineTextCursor implements function 0x0a. hardware selects the
// hardware cursor, whose shape is given by the low bytes of the masks.
func (d *Driver) DefineTextCursor(hardware bool, andMask, xorMask uint16) {
	if hardware {
		d.state.CursorType = CursorHardware
	} else {
		d.state.CursorType = CursorSoftware
	}
	d.state.TextAndMask = andMask
	d.state.TextXorMask = xorMask
	if hardware {
		d.host.Video.SetCursorShape(uint8(andMask), uint8(xorMask))
		d.logger.Info("Hardware text cursor selected")
	}
	d.DrawCursor()
}

// ReadMotion implements function 0x0b: returns and zeroes the mickey
// counters.
func (d *Driver) ReadMotion() (x, y int16) {
	x, y = d.state.MickeyCounterX, d.state.MickeyCounterY
	d.state.MickeyCounterX = 0
	d.state.MickeyCounterY = 0
	return x, y
}

// TextMasks returns the text cursor AND/XOR masks (function 0x27).
func (d *Driver) TextMasks() (andMask, xorMask uint16) {
	return d.state.TextAndMask, d.state.TextXorMask
}

// Callback is a guest event handler registration.
type Callback struct {
	Mask    uint16
	Handler RealPtr
}

// SetCallback implements function 0x0c.
func (d *Driver) SetCallback(cb Callback) {
	d.state.CallbackMask = cb.Mask
	d.state.CallbackSegment = cb.Handler.Segment
	d.state.CallbackOffset = cb.Handler.Offset
	d.updateDriverActive()
}

// ExchangeCallback implements function 0x14, returning the previous
// registration.
func (d *Driver) ExchangeCallback(cb Callback) Callback {
	old := Callback{
		Mask:    d.state.CallbackMask,
		Handler: RealPtr{Segment: d.state.CallbackSegment, Offset: d.state.CallbackOffset},
	}
	d.SetCallback(cb)
	return old
}

// SetMickeyPixelRate implements function 0x0f; ratios are mickeys per 8
// pixels and non-positive values are ignored.
func (d *Driver) SetMickeyPixelRate(x, y int16) { d.setMickeyPixelRate(x, y) }

// SetUpdateRegion implements function 0x10.
func (d *Driver) SetUpdateRegion(x1, y1, x2, y2 int16) {
	d.state.UpdateRegionX = [2]int16{x1, x2}
	d.state.UpdateRegionY = [2]int16{y1, y2}
	d.DrawCursor()
}

// WheelCapabilities implements WheelAPI function 0x11. Calling it is what
// turns the wheel extension on.
func (d *Driver) WheelCapabilities() (id, flags, wheels uint16) {
	d.state.WheelAPI = true
	d.counterW = 0
	return WheelAPIIdentifier, 0, 1
}

// SetDoubleSpeedThreshold implements function 0x13; 0 restores 64.
func (d *Driver) SetDoubleSpeedThreshold(v uint16) { d.setDoubleSpeedThreshold(v) }

// SaveState implements function 0x16.
func (d *Driver) SaveState(addr uint32) error {
	d.logger.Warn("Saving driver state...")
	data, err := d.state.MarshalBinary()
	if err != nil {
		return err
	}
	d.rawLogger.Log(false, data)
	if err := d.host.Memory.WriteBlock(addr, data); err != nil {
		return fmt.Errorf("save driver state: %w", err)
	}
	return nil
}

// LoadState implements function 0x17. The block comes from the guest and
// is sanitised before use; pending input is dropped.
func (d *Driver) LoadState(addr uint32) error {
	d.logger.Warn("Loading driver state...")
	data := make([]byte, StateSize)
	if err := d.host.Memory.ReadBlock(addr, data); err != nil {
		return fmt.Errorf("load driver state: %w", err)
	}
	d.rawLogger.Log(true, data)

	var s State
	if err := s.UnmarshalBinary(data); err != nil {
		d.logger.Warn("Ignoring driver state block", "error", err)
		return nil
	}
	d.state = s
	d.sanitizeState()

	d.pending.reset()
	d.pendingButtons = d.pendingButtons[:0]
	d.updateDriverActive()
	d.setSensitivity(uint16(d.state.SensitivityX), uint16(d.state.SensitivityY), uint16(d.state.Unknown01))
	return nil
}

// sanitizeState clamps loaded fields that later feed divisions, array
// indexing or enums.
func (d *Driver) sanitizeState() {
	s := &d.state
	clamped := false
	if s.HotX != clampHot(s.HotX, cursorSizeX) || s.HotY != clampHot(s.HotY, cursorSizeY) {
		s.HotX = clampHot(s.HotX, cursorSizeX)
		s.HotY = clampHot(s.HotY, cursorSizeY)
		clamped = true
	}
	if s.CursorType > CursorText {
		s.CursorType = CursorSoftware
		clamped = true
	}
	if s.DoubleSpeedThreshold == 0 {
		s.DoubleSpeedThreshold = defaultDoubleSpeedThreshold
		clamped = true
	}
	if s.MinPosX > s.MaxPosX {
		s.MinPosX, s.MaxPosX = s.MaxPosX, s.MinPosX
		clamped = true
	}
	if s.MinPosY > s.MaxPosY {
		s.MinPosY, s.MaxPosY = s.MaxPosY, s.MinPosY
		clamped = true
	}
	if !finite(s.MickeysPerPixelX) || !finite(s.MickeysPerPixelY) {
		s.MickeysPerPixelX, s.MickeysPerPixelY = 1, 2
		clamped = true
	}
	if !finite(s.MickeyDeltaX) || !finite(s.MickeyDeltaY) {
		s.MickeyDeltaX, s.MickeyDeltaY = 0, 0
		clamped = true
	}
	if clamped {
		d.logger.Warn("Loaded driver state contained invalid values, clamped")
	}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Sensitivity implements function 0x1b.
func (d *Driver) Sensitivity() (x, y, unknown uint16) {
	return uint16(d.state.SensitivityX), uint16(d.state.SensitivityY), uint16(d.state.Unknown01)
}

// SetSensitivity implements function 0x1a. Values are clamped to
// [0, 100]. Contrary to some references this does not touch the mickey
// rate or the double-speed threshold (Mouse Systems 8.00, MS 8.20).
func (d *Driver) SetSensitivity(x, y, unknown uint16) { d.setSensitivity(x, y, unknown) }

// SetInterruptRate implements function 0x1c. Rate class 0 (no events)
// is accepted but not simulated.
func (d *Driver) SetInterruptRate(class uint16) {
	var hz uint16
	switch class {
	case 0:
		hz = 0
	case 1:
		hz = 30
	case 2:
		hz = 50
	case 3:
		hz = 100
	default:
		hz = 200 // 4 and above are not supported, use the maximum
	}
	if hz != 0 {
		d.rateIsSet = true
		d.rateHz = hz
		d.notifyInterfaceRate()
	}
}

// SetPage / Page implement functions 0x1d and 0x1e.
func (d *Driver) SetPage(page uint8) { d.state.Page = page }
func (d *Driver) Page() uint8        { return d.state.Page }

// Disable implements function 0x1f. The previous hide counter is kept
// for Enable.
func (d *Driver) Disable() {
	d.state.Enabled = false
	d.state.OldHidden = d.state.Hidden
	d.state.Hidden = 1
}

// Enable implements function 0x20.
func (d *Driver) Enable() {
	d.state.Enabled = true
	d.state.Hidden = d.state.OldHidden
}

// SetLanguage / Language implement functions 0x22 and 0x23.
func (d *Driver) SetLanguage(lang uint16) { d.state.Language = lang }
func (d *Driver) Language() uint16        { return d.state.Language }

// Bounds returns the current position range.
func (d *Driver) Bounds() (minX, minY, maxX, maxY int16) {
	return d.state.MinPosX, d.state.MinPosY, d.state.MaxPosX, d.state.MaxPosY
}

// HotSpot implements function 0x2a: the visibility counter as Microsoft
// reports it (a negated byte), and the hot spot.
func (d *Driver) HotSpot() (visibility uint8, x, y int16) {
	return uint8(-d.state.Hidden), d.state.HotX, d.state.HotY
}
