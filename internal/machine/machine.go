// Package machine is a minimal in-memory PC for hosting the DOS mouse
// driver: real mode memory, a stack, a video BIOS with text and pixel
// pages, the VGA register ports, the interrupt mask and the rate and
// state notifications the driver emits.
package machine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
)

const (
	// 1 MiB plus the HMA reachable through FFFF:FFFF
	memorySize = 0x10fff0

	stackSegment = 0x9000
	stackTop     = 0xfffe
	dataSegment  = 0x1000
)

// CallbackReturn is where the driver's callback frame returns to.
var CallbackReturn = dosmouse.RealPtr{Segment: 0xf000, Offset: 0x1000}

// ErrAddress is returned for accesses past the end of guest memory.
var ErrAddress = errors.New("guest memory access out of range")

// Machine implements every host collaborator of dosmouse.Driver.
type Machine struct {
	Regs dosmouse.Registers

	mem   []byte
	video *Video
	ports *Ports

	irqMasked map[int]bool
	rateHz    uint16
	onRate    func(hz uint16)

	active bool
	resets int
}

// New returns a machine in the given BIOS video mode.
func New(mode uint8, adapter dosmouse.Adapter) (*Machine, error) {
	m := &Machine{
		mem:       make([]byte, memorySize),
		irqMasked: map[int]bool{},
	}
	m.Regs.SS = stackSegment
	m.Regs.SP = stackTop
	m.Regs.DS = dataSegment
	m.Regs.ES = dataSegment

	m.video = newVideo(adapter)
	m.ports = newPorts(m.video)
	if err := m.video.SetMode(mode); err != nil {
		return nil, err
	}
	return m, nil
}

// Host bundles the machine's collaborators for dosmouse.New.
func (m *Machine) Host() dosmouse.Host {
	return dosmouse.Host{
		Memory:   m,
		Stack:    m,
		Video:    m.video,
		Ports:    m.ports,
		IRQ:      m,
		Rate:     m,
		Observer: m,
	}
}

// Video returns the video BIOS and frame buffers.
func (m *Machine) Video() *Video { return m.video }

// Ports returns the VGA register file.
func (m *Machine) Ports() *Ports { return m.ports }

// ReadBlock implements dosmouse.Memory.
func (m *Machine) ReadBlock(addr uint32, dst []byte) error {
	if uint64(addr)+uint64(len(dst)) > uint64(len(m.mem)) {
		return fmt.Errorf("%w: read %d bytes at 0x%05x", ErrAddress, len(dst), addr)
	}
	copy(dst, m.mem[addr:])
	return nil
}

// WriteBlock implements dosmouse.Memory.
func (m *Machine) WriteBlock(addr uint32, src []byte) error {
	if uint64(addr)+uint64(len(src)) > uint64(len(m.mem)) {
		return fmt.Errorf("%w: write %d bytes at 0x%05x", ErrAddress, len(src), addr)
	}
	copy(m.mem[addr:], src)
	return nil
}

// ReadWord reads a little-endian word at seg:off.
func (m *Machine) ReadWord(seg, off uint16) uint16 {
	a := dosmouse.PhysAddr(seg, off)
	return binary.LittleEndian.Uint16(m.mem[a:])
}

// WriteWord writes a little-endian word at seg:off.
func (m *Machine) WriteWord(seg, off, v uint16) {
	a := dosmouse.PhysAddr(seg, off)
	binary.LittleEndian.PutUint16(m.mem[a:], v)
}

// Push16 implements dosmouse.Stack on SS:SP.
func (m *Machine) Push16(v uint16) {
	m.Regs.SP -= 2
	m.WriteWord(m.Regs.SS, m.Regs.SP, v)
}

// Pop16 pops a word from SS:SP.
func (m *Machine) Pop16() uint16 {
	v := m.ReadWord(m.Regs.SS, m.Regs.SP)
	m.Regs.SP += 2
	return v
}

// SetIRQMask implements dosmouse.IRQ.
func (m *Machine) SetIRQMask(irq int, masked bool) { m.irqMasked[irq] = masked }

// IRQMasked reports the mask state of an interrupt line; lines never
// touched are masked.
func (m *Machine) IRQMasked(irq int) bool {
	masked, ok := m.irqMasked[irq]
	return !ok || masked
}

// NotifyInterfaceRate implements dosmouse.RateSink.
func (m *Machine) NotifyInterfaceRate(hz uint16) {
	m.rateHz = hz
	if m.onRate != nil {
		m.onRate(hz)
	}
}

// Rate returns the sampling rate last requested by the driver.
func (m *Machine) Rate() uint16 { return m.rateHz }

// DriverStateChanged implements dosmouse.StateObserver.
func (m *Machine) DriverStateChanged(active bool) { m.active = active }

// DriverReset implements dosmouse.StateObserver.
func (m *Machine) DriverReset() { m.resets++ }

// DriverActive reports whether the driver has a guest callback installed.
func (m *Machine) DriverActive() bool { return m.active }

// DriverResets counts driver reset notifications.
func (m *Machine) DriverResets() int { return m.resets }
