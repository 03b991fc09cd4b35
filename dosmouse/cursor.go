package dosmouse

// VGA register ports touched while blitting the graphics cursor.
const (
	vgaSequIndex = 0x3c4
	vgaSequData  = 0x3c5
	vgaGrdcIndex = 0x3ce
	vgaGrdcData  = 0x3cf

	vgaGrdcCount      = 9
	vgaGrdcDataRotate = 0x03
	vgaGrdcMode       = 0x05
	vgaSequMapMask    = 0x02

	crtcCursorHigh = 0x0e
	crtcCursorLow  = 0x0f
)

type vgaRegs struct {
	sequIndex uint8
	sequData  uint8
	grdc      [vgaGrdcCount]uint8
}

// DrawCursor redraws the cursor at the current position, unless it is
// hidden or drawing is inhibited.
func (d *Driver) DrawCursor() {
	if d.state.Hidden != 0 || d.state.InhibitDraw {
		return
	}
	vm := d.host.Video.Mode()
	if vm.Text {
		d.drawCursorText(vm)
		return
	}
	// The BIOS page is ignored for graphics; it does not always match
	// the visible page (QQP games).
	d.drawCursorGraphics(vm)
}

func (d *Driver) restoreBackground() {
	if d.host.Video.Mode().Text {
		d.restoreBackgroundText()
	} else {
		d.restoreBackgroundGraphics()
	}
}

// Text mode

func (d *Driver) restoreBackgroundText() {
	if d.state.Hidden != 0 || d.state.InhibitDraw {
		return
	}
	bg := &d.state.Background
	if !bg.Enabled {
		return
	}
	page := d.host.Video.Mode().Page
	d.host.Video.WriteChar(bg.PosX, bg.PosY, page, bg.Data[0], bg.Data[1])
	bg.Enabled = false
}

func (d *Driver) drawCursorText(vm VideoMode) {
	d.restoreBackgroundText()

	x, y := d.getPosX(), d.getPosY()
	if d.state.inUpdateRegion(int32(x), int32(y)) {
		return
	}

	bg := &d.state.Background
	bg.PosX = x / 8
	bg.PosY = y / 8
	if d.state.Mode < 2 {
		// 40 column modes use 16 pixel wide cells
		bg.PosX /= 2
	}

	// current page, not the driver's one (CV)
	page := vm.Page

	if d.state.CursorType == CursorSoftware {
		cell := d.host.Video.ReadCharAttr(bg.PosX, bg.PosY, page)
		bg.Data[0] = uint8(cell)
		bg.Data[1] = uint8(cell >> 8)
		bg.Enabled = true

		cell &= d.state.TextAndMask
		cell ^= d.state.TextXorMask
		d.host.Video.WriteChar(bg.PosX, bg.PosY, page, uint8(cell), uint8(cell>>8))
		return
	}

	if d.host.Ports == nil {
		return
	}
	address := uint16(page) * vm.PageSize
	address += (bg.PosY*vm.Columns + bg.PosX) * 2
	address /= 2
	d.host.Ports.Out(vm.CRTC, crtcCursorHigh)
	d.host.Ports.Out(vm.CRTC+1, uint8(address>>8))
	d.host.Ports.Out(vm.CRTC, crtcCursorLow)
	d.host.Ports.Out(vm.CRTC+1, uint8(address))
}

// Graphics mode

// saveVGARegisters forces plane and write mode settings under which the
// direct pixel blit works, remembering the guest's values.
func (d *Driver) saveVGARegisters() {
	p := d.host.Ports
	if p == nil {
		return
	}
	switch d.host.Video.Adapter() {
	case AdapterVGA:
		for i := range d.vga.grdc {
			p.Out(vgaGrdcIndex, uint8(i))
			d.vga.grdc[i] = p.In(vgaGrdcData)
		}
		// no rotate or logical operation
		p.Out(vgaGrdcIndex, vgaGrdcDataRotate)
		p.Out(vgaGrdcData, 0)
		// read/write mode 0
		p.Out(vgaGrdcIndex, vgaGrdcMode)
		p.Out(vgaGrdcData, d.vga.grdc[vgaGrdcMode]&0xf0)

		// all planes (Celtic Tales)
		d.vga.sequIndex = p.In(vgaSequIndex)
		p.Out(vgaSequIndex, vgaSequMapMask)
		d.vga.sequData = p.In(vgaSequData)
		p.Out(vgaSequData, 0x0f)
	case AdapterEGA:
		p.Out(vgaSequIndex, vgaSequMapMask)
		p.Out(vgaSequData, 0x0f)
	}
}

func (d *Driver) restoreVGARegisters() {
	p := d.host.Ports
	if p == nil || d.host.Video.Adapter() != AdapterVGA {
		return
	}
	for i, v := range d.vga.grdc {
		p.Out(vgaGrdcIndex, uint8(i))
		p.Out(vgaGrdcData, v)
	}
	p.Out(vgaSequIndex, vgaSequMapMask)
	p.Out(vgaSequData, d.vga.sequData)
	p.Out(vgaSequIndex, d.vga.sequIndex)
}

// clipArea is the visible part of a 16x16 block. addX1/addX2/addY count
// the columns clipped on the left, on the right and the rows clipped on
// top, to index into the fixed size mask and background buffers.
type clipArea struct {
	x1, x2, y1, y2     int16
	addX1, addX2, addY uint16
}

func (d *Driver) clipCursorArea(x1, y1 int16) clipArea {
	a := clipArea{x1: x1, y1: y1, x2: x1 + cursorSizeX - 1, y2: y1 + cursorSizeY - 1}
	if a.y1 < 0 {
		a.addY = uint16(-a.y1)
		a.y1 = 0
	}
	if a.y2 > d.state.ClipY {
		a.y2 = d.state.ClipY
	}
	if a.x1 < 0 {
		a.addX1 = uint16(-a.x1)
		a.x1 = 0
	}
	if a.x2 > d.state.ClipX {
		a.addX2 = uint16(a.x2 - d.state.ClipX)
		a.x2 = d.state.ClipX
	}
	return a
}

func (d *Driver) restoreBackgroundGraphics() {
	bg := &d.state.Background
	if d.state.Hidden != 0 || d.state.InhibitDraw || !bg.Enabled {
		return
	}

	d.saveVGARegisters()

	a := d.clipCursorArea(int16(bg.PosX), int16(bg.PosY))
	pos := int(a.addY) * cursorSizeX
	for y := a.y1; y <= a.y2; y++ {
		pos += int(a.addX1)
		for x := a.x1; x <= a.x2; x++ {
			d.host.Video.PutPixel(uint16(x), uint16(y), d.state.Page, bg.Data[pos%cursorSizeXY])
			pos++
		}
		pos += int(a.addX2)
	}
	bg.Enabled = false

	d.restoreVGARegisters()
}

func (d *Driver) drawCursorGraphics(vm VideoMode) {
	d.state.ClipX = int16(vm.Width) - 1
	d.state.ClipY = int16(vm.Height) - 1

	// positions are in a 640 pixel wide space; mode 0x13 has 2:1
	xratio := uint16(640)
	if vm.Width > 0 {
		xratio /= vm.Width
	}
	if xratio == 0 {
		xratio = 1
	}

	d.restoreBackgroundGraphics()

	x, y := d.getPosX(), d.getPosY()
	if d.state.inUpdateRegion(int32(x), int32(y)) {
		return
	}

	d.saveVGARegisters()

	left := int16(x/xratio) - d.state.HotX
	top := int16(y) - d.state.HotY
	a := d.clipCursorArea(left, top)

	bg := &d.state.Background
	pos := int(a.addY) * cursorSizeX
	for py := a.y1; py <= a.y2; py++ {
		pos += int(a.addX1)
		for px := a.x1; px <= a.x2; px++ {
			bg.Data[pos%cursorSizeXY] = d.host.Video.GetPixel(uint16(px), uint16(py), d.state.Page)
			pos++
		}
		pos += int(a.addX2)
	}
	bg.Enabled = true
	bg.PosX = uint16(left)
	bg.PosY = uint16(top)

	screen, cursor := d.state.screenMask(), d.state.cursorMask()
	const highestBit = 1 << (cursorSizeX - 1)
	pos = int(a.addY) * cursorSizeX
	for py := a.y1; py <= a.y2; py++ {
		row := int(a.addY) + int(py-a.y1)
		scMask := screen[row%cursorSizeY]
		cuMask := cursor[row%cursorSizeY]
		if a.addX1 > 0 {
			scMask <<= a.addX1
			cuMask <<= a.addX1
			pos += int(a.addX1)
		}
		for px := a.x1; px <= a.x2; px++ {
			var pixel uint8
			if scMask&highestBit != 0 {
				pixel = bg.Data[pos%cursorSizeXY]
			}
			if cuMask&highestBit != 0 {
				pixel ^= 0x0f
			}
			scMask <<= 1
			cuMask <<= 1
			d.host.Video.PutPixel(uint16(px), uint16(py), d.state.Page, pixel)
			pos++
		}
		pos += int(a.addX2)
	}

	d.restoreVGARegisters()
}
