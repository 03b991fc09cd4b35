package dosmouse

// Memory gives block access to guest physical memory.
type Memory interface {
	ReadBlock(addr uint32, dst []byte) error
	WriteBlock(addr uint32, src []byte) error
}

// Stack pushes words onto the guest stack (SS:SP).
type Stack interface {
	Push16(v uint16)
}

// Adapter identifies the emulated display adapter family.
type Adapter uint8

const (
	AdapterOther Adapter = iota
	AdapterEGA
	AdapterVGA
)

// VideoMode describes the current BIOS video mode.
type VideoMode struct {
	Number   uint8
	Text     bool
	Width    uint16 // pixels
	Height   uint16 // pixels
	Columns  uint16 // text columns, as in the BIOS data area
	LastRow  uint8  // BIOS rows-1
	Page     uint8  // active display page
	PageSize uint16 // bytes per page
	CRTC     uint16 // CRT controller index port
}

// Video is the part of the video BIOS and adapter the cursor renderer uses.
type Video interface {
	Mode() VideoMode
	Adapter() Adapter
	GetPixel(x, y uint16, page uint8) uint8
	PutPixel(x, y uint16, page uint8, color uint8)
	ReadCharAttr(col, row uint16, page uint8) uint16
	WriteChar(col, row uint16, page uint8, chr, attr uint8)
	SetCursorShape(start, end uint8)
}

// Ports is guest I/O port access.
type Ports interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// IRQ controls interrupt line masking.
type IRQ interface {
	SetIRQMask(irq int, masked bool)
}

// RateSink receives the preferred mouse sampling rate.
type RateSink interface {
	NotifyInterfaceRate(hz uint16)
}

// StateObserver is told when the driver becomes active or is reset, so
// that other mouse interfaces can arbitrate pointer ownership.
type StateObserver interface {
	DriverStateChanged(active bool)
	DriverReset()
}

// Host bundles the collaborators the driver calls into.
type Host struct {
	Memory   Memory
	Stack    Stack
	Video    Video
	Ports    Ports
	IRQ      IRQ
	Rate     RateSink
	Observer StateObserver
}
