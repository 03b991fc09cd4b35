package dosmouse_test

import (
	"io"
	"testing"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSize(t *testing.T) {
	assert.Equal(t, 451, dosmouse.StateSize)

	var s dosmouse.State
	data, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, dosmouse.StateSize)
	assert.Equal(t, dosmouse.LayoutVersion, data[0])
}

func TestStateLayout(t *testing.T) {
	s := dosmouse.State{
		Enabled:         true,
		TimesPressed:    [3]uint16{0x0102, 0, 0},
		CallbackMask:    0x001f,
		CallbackSegment: 0x6362,
		CallbackOffset:  0xbeef,
	}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, byte(1), data[1], "enabled")
	assert.Equal(t, byte(0), data[2], "wheel api")
	assert.Equal(t, []byte{0x02, 0x01}, data[3:5], "little-endian press counter")
	assert.Equal(t, []byte{0x1f, 0x00, 0x62, 0x63, 0xef, 0xbe}, data[dosmouse.StateSize-6:])
}

func TestStateUnmarshal(t *testing.T) {
	good := dosmouse.State{Mode: 0x12, HotX: -3, MickeyDeltaX: 0.25, SensitivityX: 70}
	data, err := good.MarshalBinary()
	require.NoError(t, err)

	badVersion := append([]byte(nil), data...)
	badVersion[0] = 0x7f

	type testCase struct {
		name    string
		data    []byte
		wantErr error
	}
	cases := []testCase{
		{name: "valid block", data: data},
		{name: "short block", data: data[:dosmouse.StateSize-1], wantErr: io.ErrUnexpectedEOF},
		{name: "unknown layout version", data: badVersion, wantErr: dosmouse.ErrLayoutVersion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := dosmouse.State{Language: 7}
			err := got.UnmarshalBinary(tc.data)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, uint16(7), got.Language, "receiver must stay untouched")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, good, got)
		})
	}
}
