package machine

const (
	portSequIndex = 0x3c4
	portSequData  = 0x3c5
	portGrdcIndex = 0x3ce
	portGrdcData  = 0x3cf
)

// Ports is the VGA register file: sequencer, graphics controller and the
// CRT controller at the mode's base port.
type Ports struct {
	video *Video

	sequIndex uint8
	sequ      [8]uint8
	grdcIndex uint8
	grdc      [9]uint8
	crtcIndex uint8
	crtc      [0x19]uint8

	writes int
}

func newPorts(v *Video) *Ports {
	p := &Ports{video: v}
	p.sequ[2] = 0x0f // map mask, all planes
	return p
}

func (p *Ports) crtcBase() uint16 {
	if b := p.video.Mode().CRTC; b != 0 {
		return b
	}
	return crtcColor
}

// In implements dosmouse.Ports.
func (p *Ports) In(port uint16) uint8 {
	switch port {
	case portSequIndex:
		return p.sequIndex
	case portSequData:
		return p.sequ[int(p.sequIndex)%len(p.sequ)]
	case portGrdcIndex:
		return p.grdcIndex
	case portGrdcData:
		return p.grdc[int(p.grdcIndex)%len(p.grdc)]
	case p.crtcBase():
		return p.crtcIndex
	case p.crtcBase() + 1:
		return p.crtc[int(p.crtcIndex)%len(p.crtc)]
	}
	return 0xff
}

// Out implements dosmouse.Ports.
func (p *Ports) Out(port uint16, v uint8) {
	p.writes++
	switch port {
	case portSequIndex:
		p.sequIndex = v
	case portSequData:
		p.sequ[int(p.sequIndex)%len(p.sequ)] = v
	case portGrdcIndex:
		p.grdcIndex = v
	case portGrdcData:
		p.grdc[int(p.grdcIndex)%len(p.grdc)] = v
	case p.crtcBase():
		p.crtcIndex = v
	case p.crtcBase() + 1:
		p.crtc[int(p.crtcIndex)%len(p.crtc)] = v
	}
}

// SetGraphicsRegister presets a graphics controller register, as a guest
// program would.
func (p *Ports) SetGraphicsRegister(index, v uint8) { p.grdc[int(index)%len(p.grdc)] = v }

// GraphicsRegister returns a graphics controller register.
func (p *Ports) GraphicsRegister(index uint8) uint8 { return p.grdc[int(index)%len(p.grdc)] }

// SequencerRegister returns a sequencer register.
func (p *Ports) SequencerRegister(index uint8) uint8 { return p.sequ[int(index)%len(p.sequ)] }

// SequencerIndex returns the selected sequencer register.
func (p *Ports) SequencerIndex() uint8 { return p.sequIndex }

// CursorLocation returns the hardware text cursor address from CRTC
// registers 0x0e/0x0f.
func (p *Ports) CursorLocation() uint16 {
	return uint16(p.crtc[0x0e])<<8 | uint16(p.crtc[0x0f])
}

// Writes counts port writes.
func (p *Ports) Writes() int { return p.writes }
