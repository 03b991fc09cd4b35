package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/internal/cmd"
	"github.com/ReversedGames/dosbox-staging/internal/config"
	"github.com/ReversedGames/dosbox-staging/internal/log"
	"github.com/ReversedGames/dosbox-staging/internal/server/input"
	mtesting "github.com/ReversedGames/dosbox-staging/internal/testing"
)

func defaultMouse() config.Mouse {
	return config.Mouse{
		Sensitivity: "1.0",
		RawInput:    true,
		DosDriver:   true,
	}
}

func TestCLIParses(t *testing.T) {
	var cli cmd.CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"serve", "--input.addr=127.0.0.1:9999", "--mouse.sensitivity=2.0,1.5", "--no-captured", "--video-mode=18"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cli.Serve.InputServerConfig.Addr)
	assert.Equal(t, "2.0,1.5", cli.Serve.Mouse.Sensitivity)
	assert.False(t, cli.Serve.Captured)
	assert.Equal(t, uint8(18), cli.Serve.VideoMode)
	assert.True(t, cli.Serve.Mouse.RawInput)
	assert.Equal(t, "info", cli.Log.Level)
}

func TestStateDecode(t *testing.T) {
	st := dosmouse.State{CallbackSegment: 0x6362, MaxPosX: 639, Enabled: true}
	data, err := st.MarshalBinary()
	require.NoError(t, err)

	type testCase struct {
		format string
		want   string
	}
	cases := []testCase{
		{format: "yaml", want: "callbacksegment: 25442"},
		{format: "json", want: `"CallbackSegment": 25442`},
		{format: "toml", want: "CallbackSegment = 25442"},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			c := &cmd.StateDecode{Format: tc.format}
			require.NoError(t, c.Decode(&buf, data))
			assert.Contains(t, buf.String(), tc.want)
		})
	}

	c := &cmd.StateDecode{Format: "yaml"}
	assert.ErrorContains(t, c.Decode(&bytes.Buffer{}, data[:10]), "decode state block")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "serve.yaml")

	c := &cmd.ConfigInit{Command: "serve", Format: "yaml", Output: dest}
	require.NoError(t, c.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "addr: 127.0.0.1:3340")
	assert.Contains(t, out, "dosDriver: true")
	assert.Contains(t, out, "minRate: 0")
	assert.Contains(t, out, "videoMode: 3")

	assert.ErrorContains(t, c.Run(), "destination exists")
	c.Force = true
	require.NoError(t, c.Run())

	replay := &cmd.ConfigInit{Command: "replay", Format: "json", Output: filepath.Join(dir, "replay.json")}
	require.NoError(t, replay.Run())
	data, err = os.ReadFile(replay.Output)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "script", "positional arguments are not config keys")
	assert.Contains(t, string(data), `"sensitivity": "1.0"`)
}

func TestReplayExecute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode": 3, "steps": [{"call": {"ax": 36, "bx": 0, "cx": 0, "dx": 0}}]}`), 0o644))

	var buf bytes.Buffer
	r := &cmd.Replay{Script: path, Format: "json", Mouse: defaultMouse()}
	require.NoError(t, r.Execute(&buf, mtesting.DiscardLogger(), log.NewRaw(nil)))
	assert.Contains(t, buf.String(), `"bx": 2053`)

	r.Script = filepath.Join(dir, "missing.yaml")
	assert.ErrorIs(t, r.Execute(&buf, mtesting.DiscardLogger(), log.NewRaw(nil)), os.ErrNotExist)
}

func TestServeStartStop(t *testing.T) {
	s := &cmd.Serve{
		InputServerConfig: input.ServerConfig{Addr: "127.0.0.1:0"},
		Mouse:             defaultMouse(),
		VideoMode:         3,
		Captured:          true,
		DisplayWidth:      640,
		DisplayHeight:     480,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.StartServer(ctx, mtesting.DiscardLogger(), log.NewRaw(nil)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeBadVideoMode(t *testing.T) {
	s := &cmd.Serve{InputServerConfig: input.ServerConfig{Addr: "127.0.0.1:0"}, Mouse: defaultMouse(), VideoMode: 0x42}
	assert.Error(t, s.StartServer(context.Background(), mtesting.DiscardLogger(), log.NewRaw(nil)))
}

func TestServiceInstallPrintsUnit(t *testing.T) {
	var cli cmd.CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"service", "install", "--print", "--serve-arg=--input.addr=:3500", "--serve-arg=--no-captured"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/systemd/system/dosmouse.service", cli.Service.Install.UnitPath)

	var buf bytes.Buffer
	cli.Service.Install.Out = &buf
	require.NoError(t, cli.Service.Install.Run(mtesting.DiscardLogger()))

	unit := buf.String()
	assert.Contains(t, unit, "[Service]")
	assert.Regexp(t, `(?m)^ExecStart=".+" serve --input\.addr=:3500 --no-captured$`, unit)
	assert.Contains(t, unit, "WantedBy=multi-user.target")
}
