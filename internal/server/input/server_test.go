package input_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ReversedGames/dosbox-staging/hostinput"
	"github.com/ReversedGames/dosbox-staging/internal/server/input"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	states []hostinput.InputState
}

func (r *recorder) ApplyInput(s hostinput.InputState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) snapshot() []hostinput.InputState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hostinput.InputState(nil), r.states...)
}

func startServer(t *testing.T, cfg input.ServerConfig, sink hostinput.Sink) *input.Server {
	t.Helper()
	srv := input.New(cfg, sink, mtesting.DiscardLogger())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not become ready")
	}
	t.Cleanup(func() {
		_ = srv.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return srv
}

func TestServerDeliversInput(t *testing.T) {
	rec := &recorder{}
	srv := startServer(t, input.ServerConfig{Addr: "127.0.0.1:0"}, rec)

	c, err := hostinput.Dial(context.Background(), srv.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	sent := []hostinput.InputState{
		{DX: 3, DY: 4},
		{Buttons: hostinput.ButtonLeft},
		{Wheel: 1, AbsX: 320, AbsY: 240},
	}
	for _, s := range sent {
		require.NoError(t, c.Send(s))
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == len(sent) }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, sent, rec.snapshot())
}

func TestServerMultipleClients(t *testing.T) {
	rec := &recorder{}
	srv := startServer(t, input.ServerConfig{Addr: "127.0.0.1:0"}, rec)

	for i := range 3 {
		c, err := hostinput.Dial(context.Background(), srv.Addr().String())
		require.NoError(t, err)
		require.NoError(t, c.Send(hostinput.InputState{DX: int16(i + 1)}))
		require.NoError(t, c.Close())
	}

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, 2*time.Second, 10*time.Millisecond)
	var total int16
	for _, s := range rec.snapshot() {
		total += s.DX
	}
	assert.Equal(t, int16(6), total)
}

func TestServerDropsIdleClients(t *testing.T) {
	rec := &recorder{}
	srv := startServer(t, input.ServerConfig{Addr: "127.0.0.1:0", IdleTimeout: 50 * time.Millisecond}, rec)

	c, err := hostinput.Dial(context.Background(), srv.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	time.Sleep(200 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Send(hostinput.InputState{DX: 1}) != nil
	}, 2*time.Second, 20*time.Millisecond, "server side closed the connection")
}

func TestServerListenError(t *testing.T) {
	srv := input.New(input.ServerConfig{Addr: "256.0.0.1:bad"}, &recorder{}, mtesting.DiscardLogger())
	assert.Error(t, srv.ListenAndServe())
	assert.Nil(t, srv.Addr())
}
