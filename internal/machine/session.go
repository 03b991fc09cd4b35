package machine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ReversedGames/dosbox-staging/dosmouse"
	"github.com/ReversedGames/dosbox-staging/hostinput"
	"github.com/ReversedGames/dosbox-staging/internal/config"
	"github.com/ReversedGames/dosbox-staging/internal/log"
)

// Options configure a Session.
type Options struct {
	Mode    uint8
	Adapter dosmouse.Adapter
	Mouse   config.Settings
	// Captured makes host input relative (mouse grabbed by the guest);
	// otherwise the absolute position drives the cursor.
	Captured bool
	Display  dosmouse.HostDisplay
	Clock    dosmouse.Clock
	// RecordCallbacks keeps every CallbackFrame for Frames.
	RecordCallbacks bool

	Logger    *slog.Logger
	RawLogger log.RawLogger
}

// CallbackFrame records one delivery of the guest event handler.
type CallbackFrame struct {
	Mask     uint8            `json:"mask" yaml:"mask" toml:"mask"`
	Absolute bool             `json:"absolute" yaml:"absolute" toml:"absolute"`
	Buttons  uint8            `json:"buttons" yaml:"buttons" toml:"buttons"`
	Wheel    int8             `json:"wheel" yaml:"wheel" toml:"wheel"`
	X        uint16           `json:"x" yaml:"x" toml:"x"`
	Y        uint16           `json:"y" yaml:"y" toml:"y"`
	MickeyX  int16            `json:"mickeyX" yaml:"mickeyX" toml:"mickeyX"`
	MickeyY  int16            `json:"mickeyY" yaml:"mickeyY" toml:"mickeyY"`
	Handler  dosmouse.RealPtr `json:"handler" yaml:"handler" toml:"handler"`
	Return   dosmouse.RealPtr `json:"return" yaml:"return" toml:"return"`
}

// Session owns a Machine and the Driver running on it. All access is
// serialised, so host input from network goroutines can interleave with
// guest calls and the pacing loop.
type Session struct {
	mu     sync.Mutex
	m      *Machine
	drv    *dosmouse.Driver
	logger *slog.Logger

	coeffX, coeffY float32
	enabled        bool
	captured       bool
	record         bool
	frames         []CallbackFrame

	rateCh chan uint16
}

// NewSession builds the machine and installs the driver.
func NewSession(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m, err := New(opts.Mode, opts.Adapter)
	if err != nil {
		return nil, err
	}

	s := &Session{
		m:        m,
		logger:   logger,
		coeffX:   opts.Mouse.CoeffX(),
		coeffY:   opts.Mouse.CoeffY(),
		enabled:  opts.Mouse.DosDriver,
		captured: opts.Captured,
		record:   opts.RecordCallbacks,
		rateCh:   make(chan uint16, 1),
	}
	m.onRate = s.rateChanged

	s.drv = dosmouse.New(m.Host(), dosmouse.Options{
		Immediate:      opts.Mouse.DosImmediate,
		CallbackReturn: CallbackReturn,
		Clock:          opts.Clock,
		Logger:         logger,
		RawLogger:      opts.RawLogger,
	})
	s.drv.NotifyRawInput(opts.Mouse.RawInput)
	s.drv.NotifyMinRate(opts.Mouse.MinRateHz)
	s.drv.NotifyCaptured(opts.Captured)
	if opts.Display.ResX != 0 {
		s.drv.NotifyHostDisplay(opts.Display)
	}
	if !s.enabled {
		logger.Info("DOS mouse driver disabled by configuration")
	}
	return s, nil
}

// rateChanged runs under s.mu (called from the driver).
func (s *Session) rateChanged(hz uint16) {
	select {
	case <-s.rateCh:
	default:
	}
	s.rateCh <- hz
}

// Do runs fn with exclusive access to the driver and the machine.
func (s *Session) Do(fn func(d *dosmouse.Driver, m *Machine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.drv, s.m)
}

// Call executes one INT 33h call and returns the resulting registers.
// Zero SS:SP fields are filled in from the machine.
func (s *Session) Call(regs dosmouse.Registers) (dosmouse.Registers, error) {
	return s.call(regs, (*dosmouse.Driver).Dispatch)
}

// CallBackdoor executes a call through the pointer based entry point.
func (s *Session) CallBackdoor(regs dosmouse.Registers) (dosmouse.Registers, error) {
	return s.call(regs, (*dosmouse.Driver).DispatchBackdoor)
}

func (s *Session) call(regs dosmouse.Registers, entry func(*dosmouse.Driver, *dosmouse.Registers) error) (dosmouse.Registers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return regs, nil
	}
	if regs.SS == 0 && regs.SP == 0 {
		regs.SS, regs.SP = s.m.Regs.SS, s.m.Regs.SP
	}
	if regs.DS == 0 {
		regs.DS = s.m.Regs.DS
	}
	if err := entry(s.drv, &regs); err != nil {
		return regs, fmt.Errorf("INT 33h function 0x%04x: %w", regs.AX, err)
	}
	return regs, nil
}

// ApplyInput implements hostinput.Sink. Relative movement is scaled by
// the configured sensitivity.
func (s *Session) ApplyInput(ev hostinput.InputState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	if ev.DX != 0 || ev.DY != 0 || !s.captured {
		s.drv.NotifyMoved(float32(ev.DX)*s.coeffX, float32(ev.DY)*s.coeffY, ev.AbsX, ev.AbsY)
	}
	s.drv.NotifyButtons(dosmouse.Buttons(ev.Buttons))
	if ev.Wheel != 0 {
		s.drv.NotifyWheel(ev.Wheel)
	}
}

// SetVideoMode performs a BIOS mode switch with the driver hooks around
// it.
func (s *Session) SetVideoMode(mode uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drv.BeforeNewVideoMode()
	if err := s.m.video.SetMode(mode); err != nil {
		return err
	}
	s.drv.AfterNewVideoMode(true)
	return nil
}

// SetCaptured switches between captured (relative) and seamless input.
func (s *Session) SetCaptured(captured bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captured = captured
	s.drv.NotifyCaptured(captured)
}

// Service runs one paced event step. A delivered callback is simulated
// as a handler that returns right away.
func (s *Session) Service() (mask uint8, frame *CallbackFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return 0, nil
	}

	regs := &s.m.Regs
	mask, delivered := s.drv.ServiceEvents(regs)
	if !delivered {
		return mask, nil
	}

	f := CallbackFrame{
		Mask:     regs.AL(),
		Absolute: regs.AH() == 1,
		Buttons:  regs.BL(),
		Wheel:    int8(regs.BH()),
		X:        regs.CX,
		Y:        regs.DX,
		MickeyX:  int16(regs.SI),
		MickeyY:  int16(regs.DI),
	}
	// the guest's RETF from the handler, then the trampoline's RETF
	f.Handler.Offset = s.m.Pop16()
	f.Handler.Segment = s.m.Pop16()
	f.Return.Offset = s.m.Pop16()
	f.Return.Segment = s.m.Pop16()
	s.drv.CallbackReturned()

	if s.record {
		s.frames = append(s.frames, f)
	}
	s.logger.Log(context.Background(), log.LevelTrace, "Mouse callback delivered", "mask", f.Mask, "x", f.X, "y", f.Y)
	return mask, &f
}

// Frames returns and clears the recorded callback deliveries.
func (s *Session) Frames() []CallbackFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.frames
	s.frames = nil
	return out
}

// Rate returns the current sampling rate in Hz.
func (s *Session) Rate() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Rate()
}

// Run services events at the rate requested by the driver until ctx is
// done.
func (s *Session) Run(ctx context.Context) error {
	hz := s.Rate()
	if hz == 0 {
		hz = 200
	}
	ticker := time.NewTicker(rateInterval(hz))
	defer ticker.Stop()
	s.logger.Debug("Mouse event pacing started", "rate", hz)

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.drv.Shutdown()
			s.mu.Unlock()
			return nil
		case hz := <-s.rateCh:
			ticker.Reset(rateInterval(hz))
			s.logger.Debug("Mouse sampling rate changed", "rate", hz)
		case <-ticker.C:
			s.Service()
		}
	}
}

func rateInterval(hz uint16) time.Duration {
	if hz == 0 {
		return time.Second
	}
	return time.Second / time.Duration(hz)
}
