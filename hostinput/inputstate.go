// Package hostinput carries host pointer events to a running driver
// session over a byte stream.
package hostinput

import (
	"encoding/binary"
	"io"
)

// RecordSize is the encoded size of an InputState.
const RecordSize = 11

// Button bits of InputState.Buttons.
const (
	ButtonLeft   = 1 << 0
	ButtonRight  = 1 << 1
	ButtonMiddle = 1 << 2
)

// InputState is one host pointer event. Buttons is the full button state,
// not a change; the deltas are relative movement in host pixels and wheel
// detents; AbsX/AbsY is the pointer position inside the host window.
type InputState struct {
	Buttons    uint8
	DX, DY     int16
	Wheel      int16
	AbsX, AbsY uint16
}

// MarshalBinary encodes InputState into 11 bytes.
//
// Layout (little-endian):
//
//	Byte 0: Button bitfield (bit 0=Left, 1=Right, 2=Middle)
//	Bytes 1-2: DX (int16)
//	Bytes 3-4: DY (int16)
//	Bytes 5-6: Wheel (int16, positive scrolls down)
//	Bytes 7-8: AbsX (uint16)
//	Bytes 9-10: AbsY (uint16)
func (m *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	b[0] = m.Buttons
	binary.LittleEndian.PutUint16(b[1:], uint16(m.DX))
	binary.LittleEndian.PutUint16(b[3:], uint16(m.DY))
	binary.LittleEndian.PutUint16(b[5:], uint16(m.Wheel))
	binary.LittleEndian.PutUint16(b[7:], m.AbsX)
	binary.LittleEndian.PutUint16(b[9:], m.AbsY)
	return b, nil
}

// UnmarshalBinary decodes 11 bytes into InputState.
func (m *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < RecordSize {
		return io.ErrUnexpectedEOF
	}
	m.Buttons = data[0]
	m.DX = int16(binary.LittleEndian.Uint16(data[1:]))
	m.DY = int16(binary.LittleEndian.Uint16(data[3:]))
	m.Wheel = int16(binary.LittleEndian.Uint16(data[5:]))
	m.AbsX = binary.LittleEndian.Uint16(data[7:])
	m.AbsY = binary.LittleEndian.Uint16(data[9:])
	return nil
}
