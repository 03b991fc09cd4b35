// Package script runs recorded or hand written sequences of host events
// and INT 33h calls against a driver session.
package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
)

// ErrUnknownStep is returned for steps with no or more than one action.
var ErrUnknownStep = errors.New("unknown scenario step")

// Scenario is the top level of a script file.
type Scenario struct {
	Mode     uint8    `json:"mode" yaml:"mode" toml:"mode"`
	Adapter  string   `json:"adapter,omitempty" yaml:"adapter,omitempty" toml:"adapter,omitempty"`
	Captured bool     `json:"captured" yaml:"captured" toml:"captured"`
	Display  *Display `json:"display,omitempty" yaml:"display,omitempty" toml:"display,omitempty"`
	Steps    []Step   `json:"steps" yaml:"steps" toml:"steps"`
}

// Display is the host window geometry for seamless mode.
type Display struct {
	ResX  uint16 `json:"resX" yaml:"resX" toml:"resX"`
	ResY  uint16 `json:"resY" yaml:"resY" toml:"resY"`
	ClipX uint16 `json:"clipX" yaml:"clipX" toml:"clipX"`
	ClipY uint16 `json:"clipY" yaml:"clipY" toml:"clipY"`
}

// Step is one action; exactly one field must be set.
type Step struct {
	Call     *Regs   `json:"call,omitempty" yaml:"call,omitempty" toml:"call,omitempty"`
	Backdoor *Regs   `json:"backdoor,omitempty" yaml:"backdoor,omitempty" toml:"backdoor,omitempty"`
	Input    *Input  `json:"input,omitempty" yaml:"input,omitempty" toml:"input,omitempty"`
	Service  int     `json:"service,omitempty" yaml:"service,omitempty" toml:"service,omitempty"`
	Wait     string  `json:"wait,omitempty" yaml:"wait,omitempty" toml:"wait,omitempty"`
	SetMode  *uint8  `json:"setMode,omitempty" yaml:"setMode,omitempty" toml:"setMode,omitempty"`
	Capture  *bool   `json:"capture,omitempty" yaml:"capture,omitempty" toml:"capture,omitempty"`
	Poke     *Memory `json:"poke,omitempty" yaml:"poke,omitempty" toml:"poke,omitempty"`
	Peek     *Memory `json:"peek,omitempty" yaml:"peek,omitempty" toml:"peek,omitempty"`
}

func (s Step) kind() (string, error) {
	var kinds []string
	if s.Call != nil {
		kinds = append(kinds, "call")
	}
	if s.Backdoor != nil {
		kinds = append(kinds, "backdoor")
	}
	if s.Input != nil {
		kinds = append(kinds, "input")
	}
	if s.Service != 0 {
		kinds = append(kinds, "service")
	}
	if s.Wait != "" {
		kinds = append(kinds, "wait")
	}
	if s.SetMode != nil {
		kinds = append(kinds, "setMode")
	}
	if s.Capture != nil {
		kinds = append(kinds, "capture")
	}
	if s.Poke != nil {
		kinds = append(kinds, "poke")
	}
	if s.Peek != nil {
		kinds = append(kinds, "peek")
	}
	if len(kinds) != 1 {
		return "", fmt.Errorf("%w: actions %v", ErrUnknownStep, kinds)
	}
	return kinds[0], nil
}

// Regs is the register set of a call step and of its result.
type Regs struct {
	AX uint16 `json:"ax" yaml:"ax" toml:"ax"`
	BX uint16 `json:"bx" yaml:"bx" toml:"bx"`
	CX uint16 `json:"cx" yaml:"cx" toml:"cx"`
	DX uint16 `json:"dx" yaml:"dx" toml:"dx"`
	SI uint16 `json:"si,omitempty" yaml:"si,omitempty" toml:"si,omitempty"`
	DI uint16 `json:"di,omitempty" yaml:"di,omitempty" toml:"di,omitempty"`
	ES uint16 `json:"es,omitempty" yaml:"es,omitempty" toml:"es,omitempty"`
	DS uint16 `json:"ds,omitempty" yaml:"ds,omitempty" toml:"ds,omitempty"`
	SS uint16 `json:"ss,omitempty" yaml:"ss,omitempty" toml:"ss,omitempty"`
	SP uint16 `json:"sp,omitempty" yaml:"sp,omitempty" toml:"sp,omitempty"`
}

func (r Regs) registers() dosmouse.Registers {
	return dosmouse.Registers{AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX, SI: r.SI, DI: r.DI, ES: r.ES, DS: r.DS, SS: r.SS, SP: r.SP}
}

func fromRegisters(r dosmouse.Registers) Regs {
	return Regs{AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX, SI: r.SI, DI: r.DI, ES: r.ES, DS: r.DS, SS: r.SS, SP: r.SP}
}

// Input is a host event.
type Input struct {
	Buttons uint8  `json:"buttons" yaml:"buttons" toml:"buttons"`
	DX      int16  `json:"dx" yaml:"dx" toml:"dx"`
	DY      int16  `json:"dy" yaml:"dy" toml:"dy"`
	Wheel   int16  `json:"wheel" yaml:"wheel" toml:"wheel"`
	AbsX    uint16 `json:"absX" yaml:"absX" toml:"absX"`
	AbsY    uint16 `json:"absY" yaml:"absY" toml:"absY"`
}

// Memory addresses guest memory words for poke and peek steps.
type Memory struct {
	Segment uint16   `json:"segment" yaml:"segment" toml:"segment"`
	Offset  uint16   `json:"offset" yaml:"offset" toml:"offset"`
	Words   []uint16 `json:"words,omitempty" yaml:"words,omitempty" toml:"words,omitempty"`
	Count   int      `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`
}

// Decode parses a scenario; format is "json", "yaml" or "toml".
func Decode(data []byte, format string) (*Scenario, error) {
	var sc Scenario
	var err error
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&sc)
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&sc)
	case "toml":
		err = toml.Unmarshal(data, &sc)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s scenario: %w", format, err)
	}
	for i, st := range sc.Steps {
		if _, err := st.kind(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &sc, nil
}

// Load reads a scenario file, picking the format from its extension.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatFromPath(path))
}

// FormatFromPath maps a file extension to a format name; unknown
// extensions are read as YAML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	}
	return "yaml"
}

func (sc *Scenario) adapter() (dosmouse.Adapter, error) {
	switch strings.ToLower(sc.Adapter) {
	case "", "vga":
		return dosmouse.AdapterVGA, nil
	case "ega":
		return dosmouse.AdapterEGA, nil
	case "other", "cga", "hercules":
		return dosmouse.AdapterOther, nil
	}
	return 0, fmt.Errorf("unknown display adapter %q", sc.Adapter)
}
