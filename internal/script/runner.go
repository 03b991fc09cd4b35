package script

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/hostinput"
	"github.com/ReversedGames/dosbox-staging/internal/config"
	"github.com/ReversedGames/dosbox-staging/internal/log"
	"github.com/ReversedGames/dosbox-staging/internal/machine"
)

// epoch is the start of scenario time. Only wait steps advance the clock,
// which keeps speed estimates and therefore ballistics reproducible.
var epoch = time.Date(1993, time.March, 1, 0, 0, 0, 0, time.UTC)

// StepResult is the outcome of one step.
type StepResult struct {
	Step      int                     `json:"step" yaml:"step" toml:"step"`
	Kind      string                  `json:"kind" yaml:"kind" toml:"kind"`
	Regs      *Regs                   `json:"regs,omitempty" yaml:"regs,omitempty" toml:"regs,omitempty"`
	Mask      uint8                   `json:"mask,omitempty" yaml:"mask,omitempty" toml:"mask,omitempty"`
	Callbacks []machine.CallbackFrame `json:"callbacks,omitempty" yaml:"callbacks,omitempty" toml:"callbacks,omitempty"`
	Words     []uint16                `json:"words,omitempty" yaml:"words,omitempty" toml:"words,omitempty"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// Report is the full output of a run.
type Report struct {
	Steps []StepResult `json:"steps" yaml:"steps" toml:"steps"`
}

// Runner executes scenarios.
type Runner struct {
	Mouse     config.Settings
	Logger    *slog.Logger
	RawLogger log.RawLogger
}

// Run executes every step in order. Errors from guest calls are recorded
// in the step result and do not stop the run; malformed steps do.
func (r *Runner) Run(sc *Scenario) (*Report, error) {
	adapter, err := sc.adapter()
	if err != nil {
		return nil, err
	}

	now := epoch
	opts := machine.Options{
		Mode:            sc.Mode,
		Adapter:         adapter,
		Mouse:           r.Mouse,
		Captured:        sc.Captured,
		Clock:           func() time.Time { return now },
		RecordCallbacks: true,
		Logger:          r.Logger,
		RawLogger:       r.RawLogger,
	}
	if sc.Display != nil {
		opts.Display = dosmouse.HostDisplay{ResX: sc.Display.ResX, ResY: sc.Display.ResY, ClipX: sc.Display.ClipX, ClipY: sc.Display.ClipY}
	}
	sess, err := machine.NewSession(opts)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, st := range sc.Steps {
		kind, err := st.kind()
		if err != nil {
			return report, fmt.Errorf("step %d: %w", i, err)
		}
		res := StepResult{Step: i, Kind: kind}

		switch kind {
		case "call", "backdoor":
			call := sess.Call
			regs := st.Call
			if kind == "backdoor" {
				call = sess.CallBackdoor
				regs = st.Backdoor
			}
			out, err := call(regs.registers())
			if err != nil {
				res.Error = err.Error()
			}
			rr := fromRegisters(out)
			res.Regs = &rr
		case "input":
			sess.ApplyInput(hostinput.InputState{
				Buttons: st.Input.Buttons,
				DX:      st.Input.DX,
				DY:      st.Input.DY,
				Wheel:   st.Input.Wheel,
				AbsX:    st.Input.AbsX,
				AbsY:    st.Input.AbsY,
			})
		case "service":
			for range st.Service {
				mask, _ := sess.Service()
				res.Mask |= mask
			}
			res.Callbacks = sess.Frames()
		case "wait":
			d, err := time.ParseDuration(st.Wait)
			if err != nil {
				return report, fmt.Errorf("step %d: wait: %w", i, err)
			}
			now = now.Add(d)
		case "setMode":
			if err := sess.SetVideoMode(*st.SetMode); err != nil {
				res.Error = err.Error()
			}
		case "capture":
			sess.SetCaptured(*st.Capture)
		case "poke":
			sess.Do(func(_ *dosmouse.Driver, m *machine.Machine) {
				for j, w := range st.Poke.Words {
					m.WriteWord(st.Poke.Segment, st.Poke.Offset+uint16(2*j), w)
				}
			})
		case "peek":
			sess.Do(func(_ *dosmouse.Driver, m *machine.Machine) {
				for j := range st.Peek.Count {
					res.Words = append(res.Words, m.ReadWord(st.Peek.Segment, st.Peek.Offset+uint16(2*j)))
				}
			})
		}
		report.Steps = append(report.Steps, res)
	}
	return report, nil
}

// Encode writes a report as "yaml", "toml" or "json".
func Encode(w io.Writer, format string, report *Report) error {
	var data []byte
	var err error
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(report)
	case "toml":
		data, err = toml.Marshal(*report)
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
