package dosmouse

// HasCallback reports whether the registered callback wants any of the
// events in mask.
func (d *Driver) HasCallback(mask uint8) bool {
	return d.state.CallbackMask&uint16(mask) != 0
}

// CallbackRunning reports whether a guest callback is in flight.
func (d *Driver) CallbackRunning() bool { return d.callbackRunning }

// ServiceEvents consumes pending host input, making it visible to the
// guest, and delivers the guest callback when the resulting events match
// its mask. Events arriving while a callback is in flight only update the
// polled state; they are not queued for a later callback.
func (d *Driver) ServiceEvents(regs *Registers) (mask uint8, delivered bool) {
	if d.pending.moved {
		mask |= d.UpdateMoved()
	}
	for _, b := range d.pendingButtons {
		mask |= d.UpdateButtons(b)
	}
	d.pendingButtons = d.pendingButtons[:0]
	if d.pending.wheel {
		mask |= d.UpdateWheel()
	}

	if mask&EventMoved != 0 {
		d.DrawCursor()
	}

	if mask == 0 || !d.HasCallback(mask) || d.callbackRunning {
		return mask, false
	}
	d.DoCallback(regs, mask)
	return mask, true
}

// DoCallback prepares the registers and the stack frame for a call into
// the guest handler. The host CPU then continues at the handler address;
// its RETF lands on the CallbackReturn trampoline.
func (d *Driver) DoCallback(regs *Registers, mask uint8) {
	d.callbackRunning = true

	moved := mask&EventMoved != 0
	wheel := mask&EventWheelMoved != 0

	// AH=1 flags absolute movement, an extension for the seamless
	// Windows 3.x mouse driver (vbados), also known to DOSBox-X and
	// dosemu2.
	if !d.isCaptured() && moved {
		regs.SetAH(1)
	} else {
		regs.SetAH(0)
	}
	regs.SetAL(mask)
	regs.SetBL(uint8(d.buttons))
	if wheel {
		regs.SetBH(d.getResetWheel8())
	} else {
		regs.SetBH(0)
	}
	regs.CX = d.getPosX()
	regs.DX = d.getPosY()
	regs.SI = word16(d.state.MickeyCounterX)
	regs.DI = word16(d.state.MickeyCounterY)

	d.host.Stack.Push16(d.trampo.Segment)
	d.host.Stack.Push16(d.trampo.Offset)
	d.host.Stack.Push16(d.state.CallbackSegment)
	d.host.Stack.Push16(d.state.CallbackOffset)
}

// CallbackReturned is invoked by the return trampoline once the guest
// handler finished.
func (d *Driver) CallbackReturned() {
	d.callbackRunning = false
}
