package dosmouse

import "math"

// pendingInput holds host input received but not yet visible to the guest.
type pendingInput struct {
	xRel float32
	yRel float32
	xAbs uint16
	yAbs uint16

	wRel int16

	moved bool
	wheel bool
}

func (p *pendingInput) reset() {
	p.xRel = 0
	p.yRel = 0
	p.wRel = 0
	p.moved = false
	p.wheel = false
}

func (d *Driver) clampRelative(v float32) float32 {
	return clampf(v, -d.maxMove, d.maxMove)
}

// NotifyMoved buffers host pointer movement. It reports whether a guest
// visible event should be scheduled.
func (d *Driver) NotifyMoved(xRel, yRel float32, xAbs, yAbs uint16) bool {
	needed := false
	if d.isCaptured() {
		// relative input is too involved to predict whether anything
		// guest visible changes
		needed = true
	} else if d.pending.xAbs != xAbs || d.pending.yAbs != yAbs {
		// seamless mode follows the absolute position; relative deltas
		// can wait
		needed = true
	}

	d.pending.xRel = d.clampRelative(d.pending.xRel + xRel)
	d.pending.yRel = d.clampRelative(d.pending.yRel + yRel)
	d.pending.xAbs = xAbs
	d.pending.yAbs = yAbs

	// Do not skip the event flow when nothing seems to listen: Master of
	// Orion II re-registers its callback constantly and loses events if
	// movement is dropped here.
	if !needed {
		return false
	}
	if d.immediate && d.moveCursor() == 0 {
		return false
	}
	d.pending.moved = true
	return true
}

// UpdateMoved consumes pending movement and returns the resulting event
// bits.
func (d *Driver) UpdateMoved() uint8 {
	d.pending.moved = false
	if d.immediate {
		return EventMoved
	}
	return d.moveCursor()
}

func (d *Driver) accelerationCoeff() float32 {
	if !d.rawInput {
		return 2.0
	}
	threshold := float32(d.state.DoubleSpeedThreshold)
	if threshold == 0 {
		threshold = defaultDoubleSpeedThreshold
	}
	return Ballistics(d.speed.Get()/threshold) * 2.0
}

func (d *Driver) moveCursor() uint8 {
	oldX, oldY := d.getPosX(), d.getPosY()
	oldMickeyX, oldMickeyY := d.state.MickeyCounterX, d.state.MickeyCounterY

	if d.isCaptured() {
		coeff := d.accelerationCoeff()
		dx := d.pending.xRel * coeff * d.state.SensitivityCoeffX
		dy := d.pending.yRel * coeff * d.state.SensitivityCoeffY
		d.moveCaptured(d.clampRelative(dx), d.clampRelative(dy))
	} else {
		d.moveSeamless(d.pending.xRel, d.pending.yRel, d.pending.xAbs, d.pending.yAbs)
	}

	d.pending.xRel = 0
	d.pending.yRel = 0

	d.limitCoordinates()

	// sub-pixel movement that changes nothing on the guest side is not
	// an event
	absChanged := oldX != d.getPosX() || oldY != d.getPosY()
	relChanged := oldMickeyX != d.state.MickeyCounterX || oldMickeyY != d.state.MickeyCounterY
	if absChanged || relChanged {
		return EventMoved
	}
	return 0
}

func (d *Driver) moveCaptured(xRel, yRel float32) {
	d.updateMickeys(xRel, yRel)
	d.posX += xRel
	d.posY += yRel
}

func (d *Driver) moveSeamless(xRel, yRel float32, xAbs, yAbs uint16) {
	d.updateMickeys(xRel, yRel)

	if d.display.ResX < 2 || d.display.ResY < 2 {
		d.posX += xRel
		d.posY += yRel
		return
	}

	normalise := func(abs, res, clip uint16) float32 {
		return (float32(abs) - float32(clip)) / float32(res-1)
	}
	x := normalise(xAbs, d.display.ResX, d.display.ClipX)
	y := normalise(yAbs, d.display.ResY, d.display.ClipY)

	vm := d.host.Video.Mode()
	switch {
	case vm.Text:
		rows := float32(25)
		if a := d.host.Video.Adapter(); a == AdapterEGA || a == AdapterVGA {
			rows = float32(vm.LastRow) + 1
		}
		d.posX = x * 8 * float32(vm.Columns)
		d.posY = y * 8 * rows
	case d.state.MaxPosX < 2048 || d.state.MaxPosY < 2048 || d.state.MaxPosX != d.state.MaxPosY:
		if d.state.MaxPosX > 0 && d.state.MaxPosY > 0 {
			d.posX = x * float32(d.state.MaxPosX)
			d.posY = y * float32(d.state.MaxPosY)
		} else {
			d.posX += xRel
			d.posY += yRel
		}
	default:
		// large square range: an absolute-pointing guest driver, fake
		// relative movement
		d.posX += xRel
		d.posY += yRel
	}
}

// updateMickeys converts pixel movement to mickeys, keeping the
// fractional part for the next call.
func (d *Driver) updateMickeys(xRel, yRel float32) {
	xMov := xRel * d.state.MickeysPerPixelX
	yMov := yRel * d.state.MickeysPerPixelY

	accumulateMickeys(&d.state.MickeyCounterX, &d.state.MickeyDeltaX, xMov)
	accumulateMickeys(&d.state.MickeyCounterY, &d.state.MickeyDeltaY, yMov)

	d.speed.Update(float32(math.Sqrt(float64(xMov*xMov + yMov*yMov))))
}

func accumulateMickeys(counter *int16, delta *float32, mov float32) {
	*delta += mov
	whole := int32(math.Round(float64(*delta)))
	if whole == 0 {
		return
	}
	*delta -= float32(whole)
	// int16 conversion wraps modulo 2^16
	*counter = int16(int32(*counter) + whole)
}

func (d *Driver) setMickeyPixelRate(ratioX, ratioY int16) {
	// values with the highest bit set are invalid and ignored
	if ratioX > 0 && ratioY > 0 {
		const pixels = 8.0 // ratio is mickeys per 8 pixels
		d.state.MickeysPerPixelX = float32(ratioX) / pixels
		d.state.MickeysPerPixelY = float32(ratioY) / pixels
	}
}

func (d *Driver) setDoubleSpeedThreshold(threshold uint16) {
	if threshold != 0 {
		d.state.DoubleSpeedThreshold = threshold
	} else {
		d.state.DoubleSpeedThreshold = defaultDoubleSpeedThreshold
	}
}

func (d *Driver) setSensitivity(x, y, unknown uint16) {
	d.state.SensitivityX = uint8(min(x, sensitivityMax))
	d.state.SensitivityY = uint8(min(y, sensitivityMax))
	d.state.Unknown01 = uint8(min(unknown, sensitivityMax))

	// 0 stops movement, 50 is neutral and 100 roughly doubles it
	d.state.SensitivityCoeffX = float32(d.state.SensitivityX) / sensitivityNeutral
	d.state.SensitivityCoeffY = float32(d.state.SensitivityY) / sensitivityNeutral
}
