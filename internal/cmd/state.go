package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
)

// StateCommand groups driver state subcommands.
type StateCommand struct {
	Decode StateDecode `cmd:"" help:"Decode a state block saved with function 0x16"`
}

// StateDecode prints a binary driver state block.
type StateDecode struct {
	File   string `arg:"" help:"State block file" type:"existingfile"`
	Format string `help:"Output format" enum:"yaml,toml,json" default:"yaml"`
}

// Run is called by Kong when the state decode command is executed.
func (c *StateDecode) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	return c.Decode(os.Stdout, data)
}

// Decode writes the decoded form of data to w.
func (c *StateDecode) Decode(w io.Writer, data []byte) error {
	var st dosmouse.State
	if err := st.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode state block (%d bytes, want %d): %w", len(data), dosmouse.StateSize, err)
	}

	var (
		out []byte
		err error
	)
	switch normalizeFormat(c.Format) {
	case "yaml", "":
		out, err = yaml.Marshal(st)
	case "toml":
		out, err = toml.Marshal(st)
	case "json":
		out, err = json.MarshalIndent(st, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unsupported format: %s", c.Format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
