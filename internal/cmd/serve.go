package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/internal/config"
	"github.com/ReversedGames/dosbox-staging/internal/log"
	"github.com/ReversedGames/dosbox-staging/internal/machine"
	"github.com/ReversedGames/dosbox-staging/internal/server/input"
)

type Serve struct {
	InputServerConfig input.ServerConfig `embed:"" prefix:"input."`
	Mouse             config.Mouse       `embed:"" prefix:"mouse."`
	VideoMode         uint8              `help:"Initial BIOS video mode" default:"3" env:"DOSMOUSE_VIDEO_MODE"`
	Captured          bool               `help:"Treat host input as captured (relative) instead of seamless" default:"true" negatable:"" env:"DOSMOUSE_CAPTURED"`
	DisplayWidth      uint16             `help:"Host window width for seamless mode" default:"640" env:"DOSMOUSE_DISPLAY_WIDTH"`
	DisplayHeight     uint16             `help:"Host window height for seamless mode" default:"480" env:"DOSMOUSE_DISPLAY_HEIGHT"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	sess, err := machine.NewSession(machine.Options{
		Mode:      s.VideoMode,
		Adapter:   dosmouse.AdapterVGA,
		Mouse:     s.Mouse.Resolve(logger),
		Captured:  s.Captured,
		Display:   dosmouse.HostDisplay{ResX: s.DisplayWidth, ResY: s.DisplayHeight},
		Logger:    logger,
		RawLogger: rawLogger,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting DOS mouse driver input server", "addr", s.InputServerConfig.Addr, "mode", s.VideoMode)
	srv := input.New(s.InputServerConfig, sess, logger)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrCh:
		return err
	case <-srv.Ready():
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- sess.Run(runCtx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down input server")
		_ = srv.Close()
		<-srvErrCh
		cancel()
		return <-runErrCh
	case err := <-srvErrCh:
		cancel()
		<-runErrCh
		return err
	}
}
