package hostinput_test

import (
	"io"
	"testing"

	"github.com/ReversedGames/dosbox-staging/hostinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputStateLayout(t *testing.T) {
	s := hostinput.InputState{
		Buttons: hostinput.ButtonLeft | hostinput.ButtonMiddle,
		DX:      -2,
		DY:      0x0102,
		Wheel:   1,
		AbsX:    640,
		AbsY:    0xbeef,
	}
	data, err := s.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x05,
		0xfe, 0xff,
		0x02, 0x01,
		0x01, 0x00,
		0x80, 0x02,
		0xef, 0xbe,
	}, data)

	var got hostinput.InputState
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, s, got)
}

func TestInputStateShort(t *testing.T) {
	var s hostinput.InputState
	assert.ErrorIs(t, s.UnmarshalBinary(make([]byte, hostinput.RecordSize-1)), io.ErrUnexpectedEOF)
}
