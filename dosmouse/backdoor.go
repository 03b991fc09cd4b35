package dosmouse

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// memoryWord reads or writes 16-bit words at seg:off through Memory.
type memoryWord struct{ m Memory }

func (w memoryWord) read(seg, off uint16) (uint16, error) {
	var buf [2]byte
	if err := w.m.ReadBlock(PhysAddr(seg, off), buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (w memoryWord) write(seg, off, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.m.WriteBlock(PhysAddr(seg, off), buf[:])
}

// DispatchBackdoor is the entry used by a guest side stub that passes
// pointers instead of values: the stack holds offsets (relative to DS) of
// the AX, BX, CX and DX values. The values are loaded, the function runs
// as with Dispatch, and the results are written back through the same
// pointers.
func (d *Driver) DispatchBackdoor(r *Registers) error {
	mem := memoryWord{d.host.Memory}

	var ptrs [4]uint16 // ax, bx, cx, dx
	for i, off := range [4]uint16{0x0a, 0x08, 0x06, 0x04} {
		p, err := mem.read(r.SS, r.SP+off)
		if err != nil {
			return fmt.Errorf("backdoor: read register pointer: %w", err)
		}
		ptrs[i] = p
	}
	axPtr, bxPtr, cxPtr, dxPtr := ptrs[0], ptrs[1], ptrs[2], ptrs[3]

	vals := [4]*uint16{&r.AX, &r.BX, &r.CX, &r.DX}
	for i, p := range ptrs {
		v, err := mem.read(r.DS, p)
		if err != nil {
			return fmt.Errorf("backdoor: read register value: %w", err)
		}
		*vals[i] = v
	}
	function := r.AX

	// some functions take additional registers
	switch function {
	case 0x09, 0x16, 0x17:
		r.ES = r.DS
	case 0x0c, 0x14:
		if r.BX != 0 {
			r.ES = r.BX
		} else {
			r.ES = r.DS
		}
	case 0x10:
		region := [4]*uint16{&r.CX, &r.DX, &r.SI, &r.DI}
		for i, reg := range region {
			v, err := mem.read(r.DS, dxPtr+uint16(2*i))
			if err != nil {
				return fmt.Errorf("backdoor: read update region: %w", err)
			}
			*reg = v
		}
	}

	// results go back to the guest even when the function failed
	dispatchErr := d.Dispatch(r)

	writeBack := []struct{ ptr, v uint16 }{
		{axPtr, r.AX},
		{bxPtr, r.BX},
		{cxPtr, r.CX},
		{dxPtr, r.DX},
	}
	switch function {
	case 0x1f:
		writeBack = append(writeBack, struct{ ptr, v uint16 }{bxPtr, r.ES})
	case 0x14:
		writeBack = append(writeBack, struct{ ptr, v uint16 }{cxPtr, r.ES})
	}
	for _, wb := range writeBack {
		if err := mem.write(r.DS, wb.ptr, wb.v); err != nil {
			return errors.Join(dispatchErr, fmt.Errorf("backdoor: write register value: %w", err))
		}
	}
	return dispatchErr
}
