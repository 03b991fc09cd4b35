// Package dosmouse implements the DOS mouse driver interface (INT 33h)
// on top of host pointer events.
//
// The driver answers Microsoft Mouse and CuteMouse WheelAPI compatible
// function calls, renders the text or graphics cursor into guest video
// memory, and delivers events to a guest registered callback. Everything
// outside the driver (CPU, memory, video BIOS, PIC) is reached through the
// collaborators in Host.
//
// A Driver is not safe for concurrent use; the guest CPU model is
// single-threaded and the caller serialises host input with guest calls.
package dosmouse

import (
	"log/slog"
	"math"

	"github.com/ReversedGames/dosbox-staging/internal/log"
)

const (
	defaultRateHz = 200
	irqMouse      = 12

	// speed is scaled so the ballistics plateau lines up with the
	// double-speed threshold
	accelerationMultiplier = ballisticsPlateau

	defaultMaxMove = 2048.0
)

// Options tune a Driver.
type Options struct {
	// Immediate applies host movement when it arrives instead of at the
	// next ServiceEvents call.
	Immediate bool
	// Acceleration scales the speed estimate fed to the ballistics curve;
	// 0 means 1.0.
	Acceleration float32
	// MaxMove clamps relative movement per update; 0 means 2048.
	MaxMove float32
	// CallbackReturn is the far address of the trampoline that calls
	// CallbackReturned when the guest handler executes RETF.
	CallbackReturn RealPtr
	// Clock drives the speed estimator; nil means time.Now.
	Clock Clock

	Logger    *slog.Logger
	RawLogger log.RawLogger
}

// HostDisplay is the host window geometry used to map absolute pointer
// coordinates in seamless mode.
type HostDisplay struct {
	ResX, ResY   uint16
	ClipX, ClipY uint16
}

// Driver is the INT 33h driver context.
type Driver struct {
	host      Host
	logger    *slog.Logger
	rawLogger log.RawLogger

	immediate bool
	maxMove   float32
	trampo    RealPtr

	state State

	// hardware side, never part of the saved state
	buttons  Buttons
	posX     float32
	posY     float32
	counterW int8
	mapped   bool
	rawInput bool
	captured bool
	display  HostDisplay

	rateIsSet bool
	rateHz    uint16
	minRateHz uint16

	pending        pendingInput
	pendingButtons []Buttons
	speed          *SpeedEstimator
	vga            vgaRegs

	callbackRunning bool
	active          bool
}

// New creates the driver and brings it into its post-install state:
// hardware reset followed by a software reset, cursor hidden once.
func New(host Host, opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rawLogger := opts.RawLogger
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	accel := opts.Acceleration
	if accel <= 0 {
		accel = 1.0
	}
	maxMove := opts.MaxMove
	if maxMove <= 0 {
		maxMove = defaultMaxMove
	}

	d := &Driver{
		host:      host,
		logger:    logger,
		rawLogger: rawLogger,
		immediate: opts.Immediate,
		maxMove:   maxMove,
		trampo:    opts.CallbackReturn,
		rawInput:  true,
		speed:     NewSpeedEstimator(accelerationMultiplier*accel, opts.Clock),
		display:   HostDisplay{ResX: 640, ResY: 480},
	}
	d.init()
	return d
}

func (d *Driver) init() {
	d.state.CallbackSegment = callbackSegmentMagic
	d.state.Hidden = 1
	d.state.Mode = 0xff // no such mode, forces a full setup

	d.setSensitivity(sensitivityNeutral, sensitivityNeutral, sensitivityNeutral)
	d.resetHardware()
	d.reset()
}

// Shutdown removes a drawn cursor from the screen and reports the driver
// as inactive.
func (d *Driver) Shutdown() {
	d.restoreBackground()
	d.state.Background.Enabled = false
	d.state.CallbackMask = 0
	d.callbackRunning = false
	d.updateDriverActive()
	d.logger.Debug("DOS mouse driver shut down")
}

// State returns a copy of the register-visible state.
func (d *Driver) State() State { return d.state }

// Active reports whether a guest callback is registered.
func (d *Driver) Active() bool { return d.active }

// SetImmediate switches between immediate and paced input consumption.
func (d *Driver) SetImmediate(enabled bool) { d.immediate = enabled }

// resetHardware clears what CuteMouse treats as hardware state. The
// wheel extension is dropped here and not in reset; DN2 depends on that.
func (d *Driver) resetHardware() {
	d.state.WheelAPI = false
	d.counterW = 0

	if d.host.IRQ != nil {
		d.host.IRQ.SetIRQMask(irqMouse, false)
	}

	d.rateIsSet = false
	d.notifyInterfaceRate()
}

// reset is the software reset; hard reset runs it after resetHardware.
func (d *Driver) reset() {
	d.counterW = 0
	d.pending.reset()
	d.pendingButtons = d.pendingButtons[:0]

	d.BeforeNewVideoMode()
	d.AfterNewVideoMode(false)

	d.setMickeyPixelRate(8, 16)
	d.setDoubleSpeedThreshold(0)

	d.state.Enabled = true

	d.posX = float32((int32(d.state.MaxPosX) + 1) / 2)
	d.posY = float32((int32(d.state.MaxPosY) + 1) / 2)

	d.state.MickeyCounterX = 0
	d.state.MickeyCounterY = 0
	d.state.MickeyDeltaX = 0
	d.state.MickeyDeltaY = 0

	d.state.LastWheelX = 0
	d.state.LastWheelY = 0

	for i := 0; i < numButtons; i++ {
		d.state.TimesPressed[i] = 0
		d.state.TimesReleased[i] = 0
		d.state.LastPressedX[i] = 0
		d.state.LastPressedY[i] = 0
		d.state.LastReleasedX[i] = 0
		d.state.LastReleasedY[i] = 0
	}

	d.state.CallbackMask = 0
	d.callbackRunning = false

	d.updateDriverActive()
	d.notifyReset()
}

// BeforeNewVideoMode removes the cursor before the video BIOS switches
// modes.
func (d *Driver) BeforeNewVideoMode() {
	d.restoreBackground()

	d.state.Hidden = 1
	d.state.OldHidden = 1
	d.state.Background.Enabled = false
}

// AfterNewVideoMode derives ranges, granularity and cursor defaults from
// the new video mode. setMode is true when called from a mode switch
// rather than from a driver reset.
func (d *Driver) AfterNewVideoMode(setMode bool) {
	d.state.InhibitDraw = false

	vm := d.host.Video.Mode()
	mode := vm.Number
	if setMode && mode == d.state.Mode {
		d.logger.Debug("New video mode is the same as the old", "mode", mode)
	}

	d.state.GranularityX = 0xffff
	d.state.GranularityY = 0xffff

	switch mode {
	case 0x00, 0x01, 0x02, 0x03, 0x07:
		if mode < 2 {
			d.state.GranularityX = 0xfff0
		} else {
			d.state.GranularityX = 0xfff8
		}
		d.state.GranularityY = 0xfff8
		rows := 24
		if a := d.host.Video.Adapter(); a == AdapterEGA || a == AdapterVGA {
			rows = int(vm.LastRow)
		}
		if rows == 0 || rows > 250 {
			rows = 24
		}
		d.state.MaxPosY = int16(8*(rows+1) - 1)
	case 0x04, 0x05, 0x06, 0x08, 0x09, 0x0a, 0x0d, 0x0e, 0x13:
		if mode == 0x0d || mode == 0x13 {
			d.state.GranularityX = 0xfffe
		}
		d.state.MaxPosY = 199
	case 0x0f, 0x10:
		d.state.MaxPosY = 349
	case 0x11, 0x12:
		d.state.MaxPosY = 479
	default:
		d.logger.Error("Unhandled video mode on reset", "mode", mode)
		d.state.InhibitDraw = true
		return
	}

	d.state.Mode = mode
	d.state.MaxPosX = 639
	d.state.MinPosX = 0
	d.state.MinPosY = 0
	d.state.HotX = 0
	d.state.HotY = 0
	d.state.UserScreenMask = false
	d.state.UserCursorMask = false
	d.state.TextAndMask = defaultTextAndMask
	d.state.TextXorMask = defaultTextXorMask
	d.state.Page = 0
	d.state.UpdateRegionY[1] = -1 // offscreen
	d.state.CursorType = CursorSoftware
	d.state.Enabled = true

	d.notifyReset()
}

// NotifyMinRate sets the user configured minimum sampling rate.
func (d *Driver) NotifyMinRate(hz uint16) {
	d.minRateHz = hz
	// a rate set by the guest wins
	if d.rateIsSet {
		return
	}
	d.notifyInterfaceRate()
}

// NotifyMapped is told whether a physical mouse is mapped to this
// interface. A mapped mouse has no absolute position, so it is always
// treated as captured.
func (d *Driver) NotifyMapped(enabled bool) { d.mapped = enabled }

// NotifyRawInput is told whether host input arrives without host
// acceleration applied.
func (d *Driver) NotifyRawInput(enabled bool) { d.rawInput = enabled }

// NotifyCaptured is told whether the guest exclusively owns the pointer.
func (d *Driver) NotifyCaptured(captured bool) { d.captured = captured }

// NotifyHostDisplay updates the host window geometry for seamless mode.
func (d *Driver) NotifyHostDisplay(disp HostDisplay) { d.display = disp }

func (d *Driver) isCaptured() bool {
	return d.captured || d.mapped
}

func (d *Driver) notifyInterfaceRate() {
	// Real drivers program 60-100 Hz; 200 Hz is the PS/2 maximum and
	// is used unless the guest or the user asked for something else.
	hz := uint16(defaultRateHz)
	switch {
	case d.rateIsSet:
		hz = d.rateHz
	case d.minRateHz != 0:
		hz = d.minRateHz
	}
	if d.host.Rate != nil {
		d.host.Rate.NotifyInterfaceRate(hz)
	}
}

func (d *Driver) updateDriverActive() {
	d.active = d.state.CallbackMask != 0
	if d.host.Observer != nil {
		d.host.Observer.DriverStateChanged(d.active)
	}
}

func (d *Driver) notifyReset() {
	if d.host.Observer != nil {
		d.host.Observer.DriverReset()
	}
}

func (d *Driver) getPosX() uint16 {
	return uint16(int64(math.Round(float64(d.posX)))) & d.state.GranularityX
}

func (d *Driver) getPosY() uint16 {
	return uint16(int64(math.Round(float64(d.posY)))) & d.state.GranularityY
}

func (d *Driver) limitCoordinates() {
	d.posX = clampf(d.posX, float32(d.state.MinPosX), float32(d.state.MaxPosX))
	d.posY = clampf(d.posY, float32(d.state.MinPosY), float32(d.state.MaxPosY))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
