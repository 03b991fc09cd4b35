package dosmouse

// Buttons is the 3-bit button state as returned in BL by function 0x03.
type Buttons uint8

const (
	ButtonLeft   Buttons = 1 << 0
	ButtonRight  Buttons = 1 << 1
	ButtonMiddle Buttons = 1 << 2

	buttonsMask = ButtonLeft | ButtonRight | ButtonMiddle

	// button snapshots buffered between two ServiceEvents calls
	maxPendingButtons = 32
)

var buttonEvents = [numButtons]struct {
	bit      Buttons
	pressed  uint8
	released uint8
}{
	{ButtonLeft, EventPressedLeft, EventReleasedLeft},
	{ButtonRight, EventPressedRight, EventReleasedRight},
	{ButtonMiddle, EventPressedMiddle, EventReleasedMiddle},
}

// Buttons returns the current hardware button state.
func (d *Driver) Buttons() Buttons { return d.buttons }

// NotifyButtons buffers a new host button state. It reports whether the
// state differs from the last one seen.
func (d *Driver) NotifyButtons(b Buttons) bool {
	b &= buttonsMask
	last := d.buttons
	if n := len(d.pendingButtons); n > 0 {
		last = d.pendingButtons[n-1]
	}
	if b == last {
		return false
	}
	if len(d.pendingButtons) == maxPendingButtons {
		d.logger.Warn("Mouse button queue full, dropping state", "buttons", b)
		return false
	}
	d.pendingButtons = append(d.pendingButtons, b)
	return true
}

// UpdateButtons applies a new button state and returns the press and
// release event bits it produces.
func (d *Driver) UpdateButtons(b Buttons) uint8 {
	b &= buttonsMask
	if b == d.buttons {
		return 0
	}

	var mask uint8
	for idx, ev := range buttonEvents {
		now, before := b&ev.bit != 0, d.buttons&ev.bit != 0
		switch {
		case now && !before:
			d.state.LastPressedX[idx] = d.getPosX()
			d.state.LastPressedY[idx] = d.getPosY()
			d.state.TimesPressed[idx]++
			mask |= ev.pressed
		case !now && before:
			d.state.LastReleasedX[idx] = d.getPosX()
			d.state.LastReleasedY[idx] = d.getPosY()
			d.state.TimesReleased[idx]++
			mask |= ev.released
		}
	}

	d.buttons = b
	return mask
}

// NotifyWheel buffers host wheel movement. Wheel input is ignored until
// the guest enables the WheelAPI extension with function 0x11.
func (d *Driver) NotifyWheel(wRel int16) bool {
	if !d.state.WheelAPI {
		return false
	}

	// the guest can read 16 bits in places, but scrolling hundreds of
	// lines at once makes no sense; keep it at 8 bits
	d.pending.wRel = int16(clampInt8(int32(d.pending.wRel) + int32(wRel)))
	if d.pending.wRel == 0 {
		return false
	}

	if d.immediate && d.moveWheel() == 0 {
		return false
	}
	d.pending.wheel = true
	return true
}

// UpdateWheel consumes pending wheel movement and returns the resulting
// event bits.
func (d *Driver) UpdateWheel() uint8 {
	d.pending.wheel = false
	if d.immediate {
		return EventWheelMoved
	}
	return d.moveWheel()
}

func (d *Driver) moveWheel() uint8 {
	d.counterW = clampInt8(int32(d.counterW) + int32(d.pending.wRel))
	d.pending.wRel = 0

	d.state.LastWheelX = d.getPosX()
	d.state.LastWheelY = d.getPosY()

	if d.counterW != 0 {
		return EventWheelMoved
	}
	return 0
}

// getResetWheel8 reads and clears the wheel counter, as a byte register.
func (d *Driver) getResetWheel8() uint8 {
	if !d.state.WheelAPI {
		return 0
	}
	v := d.counterW
	d.counterW = 0
	return byte8(v)
}

// getResetWheel16 reads and clears the wheel counter, as a word register.
func (d *Driver) getResetWheel16() uint16 {
	if !d.state.WheelAPI {
		return 0
	}
	v := int16(d.counterW)
	d.counterW = 0
	return word16(v)
}

func clampInt8(v int32) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}
