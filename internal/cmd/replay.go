package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ReversedGames/dosbox-staging/internal/config"
	"github.com/ReversedGames/dosbox-staging/internal/configpaths"
	"github.com/ReversedGames/dosbox-staging/internal/log"
	"github.com/ReversedGames/dosbox-staging/internal/script"
)

const scriptsDir = "scripts"

type Replay struct {
	Script string       `arg:"" help:"Scenario file (json, yaml or toml); also searched in the resource directories"`
	Format string       `help:"Output format" enum:"yaml,toml,json" default:"yaml"`
	Output string       `help:"Write results to this file instead of stdout" type:"path"`
	Mouse  config.Mouse `embed:"" prefix:"mouse."`
}

// Run is called by Kong when the replay command is executed.
func (r *Replay) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	var w io.Writer = os.Stdout
	if r.Output != "" {
		if err := configpaths.EnsureDir(r.Output); err != nil {
			return err
		}
		f, err := os.Create(r.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return r.Execute(w, logger, rawLogger)
}

// Execute runs the scenario and writes the report to w.
func (r *Replay) Execute(w io.Writer, logger *slog.Logger, rawLogger log.RawLogger) error {
	path, err := configpaths.FindResource(scriptsDir, r.Script)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", r.Script, err)
	}
	sc, err := script.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("Running scenario", "path", path, "steps", len(sc.Steps))

	runner := &script.Runner{
		Mouse:     r.Mouse.Resolve(logger),
		Logger:    logger,
		RawLogger: rawLogger,
	}
	report, err := runner.Run(sc)
	if err != nil {
		return err
	}
	return script.Encode(w, r.Format, report)
}
