package dosmouse

// Registers is the guest register file as seen by the driver. Only the
// registers the INT 33h protocol reads or writes are present.
type Registers struct {
	AX, BX, CX, DX uint16
	SI, DI, SP     uint16
	ES, DS, SS     uint16
}

// AL returns the lower 8 bits of AX
func (r *Registers) AL() uint8 { return uint8(r.AX) }

// AH returns bits 8-15 of AX
func (r *Registers) AH() uint8 { return uint8(r.AX >> 8) }

// SetAL sets the lower 8 bits of AX
func (r *Registers) SetAL(v uint8) { r.AX = r.AX&0xff00 | uint16(v) }

// SetAH sets bits 8-15 of AX
func (r *Registers) SetAH(v uint8) { r.AX = r.AX&0x00ff | uint16(v)<<8 }

func (r *Registers) BL() uint8     { return uint8(r.BX) }
func (r *Registers) BH() uint8     { return uint8(r.BX >> 8) }
func (r *Registers) SetBL(v uint8) { r.BX = r.BX&0xff00 | uint16(v) }
func (r *Registers) SetBH(v uint8) { r.BX = r.BX&0x00ff | uint16(v)<<8 }

func (r *Registers) CL() uint8     { return uint8(r.CX) }
func (r *Registers) CH() uint8     { return uint8(r.CX >> 8) }
func (r *Registers) SetCL(v uint8) { r.CX = r.CX&0xff00 | uint16(v) }
func (r *Registers) SetCH(v uint8) { r.CX = r.CX&0x00ff | uint16(v)<<8 }

func (r *Registers) DL() uint8     { return uint8(r.DX) }
func (r *Registers) DH() uint8     { return uint8(r.DX >> 8) }
func (r *Registers) SetDL(v uint8) { r.DX = r.DX&0xff00 | uint16(v) }
func (r *Registers) SetDH(v uint8) { r.DX = r.DX&0x00ff | uint16(v)<<8 }

// signed16 reinterprets a register word as two's complement.
func signed16(v uint16) int16 { return int16(v) }

// word16 stores a signed value in a register word (-1 becomes 0xffff).
func word16(v int16) uint16 { return uint16(v) }

// byte8 stores a signed value in a byte register (-1 becomes 0xff).
func byte8(v int8) uint8 { return uint8(v) }

// RealPtr is a real mode segment:offset pair.
type RealPtr struct {
	Segment uint16
	Offset  uint16
}

// Phys returns the 20-bit physical address of a real mode pointer.
func (p RealPtr) Phys() uint32 {
	return uint32(p.Segment)<<4 + uint32(p.Offset)
}

// PhysAddr returns the physical address of seg:off.
func PhysAddr(seg, off uint16) uint32 {
	return RealPtr{Segment: seg, Offset: off}.Phys()
}
