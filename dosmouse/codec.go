package dosmouse

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// LayoutVersion is the first byte of every serialized State.
const LayoutVersion uint8 = 1

// ErrLayoutVersion is returned when a state block carries an unknown
// layout version.
var ErrLayoutVersion = errors.New("unsupported driver state layout version")

// StateSize is the number of bytes functions 0x15/0x16/0x17 report and
// transfer.
var StateSize = stateSize()

// fields lists the serialized fields in wire order. Reordering entries
// breaks guests that inspect or pre-allocate the block.
func (s *State) fields() []any {
	return []any{
		&s.Enabled,
		&s.WheelAPI,
		&s.TimesPressed,
		&s.TimesReleased,
		&s.LastReleasedX,
		&s.LastReleasedY,
		&s.LastPressedX,
		&s.LastPressedY,
		&s.LastWheelX,
		&s.LastWheelY,
		&s.MickeyCounterX,
		&s.MickeyCounterY,
		&s.MickeyDeltaX,
		&s.MickeyDeltaY,
		&s.MickeysPerPixelX,
		&s.MickeysPerPixelY,
		&s.DoubleSpeedThreshold,
		&s.GranularityX,
		&s.GranularityY,
		&s.UpdateRegionX,
		&s.UpdateRegionY,
		&s.Language,
		&s.Mode,
		&s.SensitivityX,
		&s.SensitivityY,
		&s.Unknown01,
		&s.SensitivityCoeffX,
		&s.SensitivityCoeffY,
		&s.MinPosX,
		&s.MaxPosX,
		&s.MinPosY,
		&s.MaxPosY,
		&s.Page,
		&s.InhibitDraw,
		&s.Hidden,
		&s.OldHidden,
		&s.ClipX,
		&s.ClipY,
		&s.HotX,
		&s.HotY,
		&s.Background.Enabled,
		&s.Background.PosX,
		&s.Background.PosY,
		&s.Background.Data,
		&s.CursorType,
		&s.TextAndMask,
		&s.TextXorMask,
		&s.UserScreenMask,
		&s.UserCursorMask,
		&s.UserDefScreen,
		&s.UserDefCursor,
		&s.CallbackMask,
		&s.CallbackSegment,
		&s.CallbackOffset,
	}
}

func stateSize() int {
	var s State
	n := binary.Size(LayoutVersion)
	for _, f := range s.fields() {
		n += binary.Size(f)
	}
	return n
}

// MarshalBinary encodes the state into exactly StateSize bytes.
func (s *State) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, StateSize))
	buf.WriteByte(LayoutVersion)
	for _, f := range s.fields() {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("encode driver state: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a block produced by MarshalBinary. The receiver
// is left untouched on error.
func (s *State) UnmarshalBinary(data []byte) error {
	if len(data) < StateSize {
		return io.ErrUnexpectedEOF
	}
	if data[0] != LayoutVersion {
		return fmt.Errorf("%w: %d", ErrLayoutVersion, data[0])
	}
	var tmp State
	r := bytes.NewReader(data[1:StateSize])
	for _, f := range tmp.fields() {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("decode driver state: %w", err)
		}
	}
	*s = tmp
	return nil
}
