package hostinput_test

import (
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/ReversedGames/dosbox-staging/hostinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestHandleStream(t *testing.T) {
	server, client := net.Pipe()

	var got []hostinput.InputState
	done := make(chan error, 1)
	go func() {
		done <- hostinput.HandleStream(server, hostinput.SinkFunc(func(s hostinput.InputState) {
			got = append(got, s)
		}), discard())
	}()

	c := hostinput.NewClient(client)
	sent := []hostinput.InputState{
		{DX: 5, DY: -3},
		{Buttons: hostinput.ButtonRight, AbsX: 10, AbsY: 20},
		{Wheel: -1},
	}
	for _, s := range sent {
		require.NoError(t, c.Send(s))
	}
	require.NoError(t, c.Close())

	require.NoError(t, <-done)
	assert.Equal(t, sent, got)
}

func TestHandleStreamPartialRecord(t *testing.T) {
	server, client := net.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- hostinput.HandleStream(server, hostinput.SinkFunc(func(hostinput.InputState) {
			t.Error("no complete record was sent")
		}), discard())
	}()

	_, err := client.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	err = <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
