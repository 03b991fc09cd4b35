package dosmouse

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ReversedGames/dosbox-staging/internal/log"
)

// operation is one INT 33h function: a register adapter around a typed
// Driver method.
type operation struct {
	name string
	run  func(d *Driver, r *Registers) error
}

// Functions are named after Ralf Brown's Interrupt List, CuteMouse's
// INT33.LST and WHEELAPI.TXT.
var functions = map[uint16]operation{
	0x00: {"reset driver and read status", func(d *Driver, r *Registers) error {
		r.AX, r.BX = d.ResetDriver(true)
		return nil
	}},
	0x01: {"show mouse cursor", func(d *Driver, r *Registers) error {
		d.ShowCursor()
		return nil
	}},
	0x02: {"hide mouse cursor", func(d *Driver, r *Registers) error {
		d.HideCursor()
		return nil
	}},
	0x03: {"get position and button status", func(d *Driver, r *Registers) error {
		buttons, wheel, x, y := d.Position()
		r.SetBL(uint8(buttons))
		r.SetBH(wheel) // CuteMouse clears the wheel counter too
		r.CX = x
		r.DX = y
		return nil
	}},
	0x04: {"position mouse cursor", func(d *Driver, r *Registers) error {
		d.SetPosition(r.CX, r.DX)
		return nil
	}},
	0x05: {"get button press or wheel data", func(d *Driver, r *Registers) error {
		setButtonInfo(r, d.ButtonPress)
		return nil
	}},
	0x06: {"get button release or wheel data", func(d *Driver, r *Registers) error {
		setButtonInfo(r, d.ButtonRelease)
		return nil
	}},
	0x07: {"define horizontal cursor range", func(d *Driver, r *Registers) error {
		d.SetHorizontalRange(signed16(r.CX), signed16(r.DX))
		return nil
	}},
	0x08: {"define vertical cursor range", func(d *Driver, r *Registers) error {
		d.SetVerticalRange(signed16(r.CX), signed16(r.DX))
		return nil
	}},
	0x09: {"define graphics cursor", defineGraphicsCursor},
	0x0a: {"define text cursor", func(d *Driver, r *Registers) error {
		d.DefineTextCursor(r.BX != 0, r.CX, r.DX)
		return nil
	}},
	0x0b: {"read motion data", func(d *Driver, r *Registers) error {
		readMotion(d, r)
		return nil
	}},
	0x0c: {"define user callback parameters", func(d *Driver, r *Registers) error {
		d.SetCallback(Callback{Mask: r.CX, Handler: RealPtr{Segment: r.ES, Offset: r.DX}})
		return nil
	}},
	0x0d: notImplemented("light pen emulation on"),
	0x0e: notImplemented("light pen emulation off"),
	0x0f: {"define mickey/pixel rate", func(d *Driver, r *Registers) error {
		d.SetMickeyPixelRate(signed16(r.CX), signed16(r.DX))
		return nil
	}},
	0x10: {"define screen region for updating", func(d *Driver, r *Registers) error {
		d.SetUpdateRegion(signed16(r.CX), signed16(r.DX), signed16(r.SI), signed16(r.DI))
		return nil
	}},
	0x11: {"get mouse capabilities", func(d *Driver, r *Registers) error {
		r.AX, r.BX, r.CX = d.WheelCapabilities()
		return nil
	}},
	0x12: notImplemented("set large graphics cursor block"),
	0x13: {"set double-speed threshold", func(d *Driver, r *Registers) error {
		d.SetDoubleSpeedThreshold(r.BX)
		return nil
	}},
	0x14: {"exchange event-handler", func(d *Driver, r *Registers) error {
		old := d.ExchangeCallback(Callback{Mask: r.CX, Handler: RealPtr{Segment: r.ES, Offset: r.DX}})
		r.CX = old.Mask
		r.DX = old.Handler.Offset
		r.ES = old.Handler.Segment
		return nil
	}},
	0x15: {"get driver storage space requirements", func(d *Driver, r *Registers) error {
		r.BX = uint16(StateSize)
		return nil
	}},
	0x16: {"save driver state", func(d *Driver, r *Registers) error {
		return d.SaveState(PhysAddr(r.ES, r.DX))
	}},
	0x17: {"load driver state", func(d *Driver, r *Registers) error {
		return d.LoadState(PhysAddr(r.ES, r.DX))
	}},
	0x18: notImplemented("set alternate mouse user handler"),
	0x19: notImplemented("set alternate mouse user handler"),
	0x1a: {"set mouse sensitivity", func(d *Driver, r *Registers) error {
		d.SetSensitivity(r.BX, r.CX, r.DX)
		return nil
	}},
	0x1b: {"get mouse sensitivity", func(d *Driver, r *Registers) error {
		r.BX, r.CX, r.DX = d.Sensitivity()
		return nil
	}},
	0x1c: {"set interrupt rate", func(d *Driver, r *Registers) error {
		d.SetInterruptRate(r.BX)
		return nil
	}},
	0x1d: {"set display page number", func(d *Driver, r *Registers) error {
		d.SetPage(r.BL())
		return nil
	}},
	0x1e: {"get display page number", func(d *Driver, r *Registers) error {
		r.BX = uint16(d.Page())
		return nil
	}},
	0x1f: {"disable mouse driver", func(d *Driver, r *Registers) error {
		// ES:BX would be the previous driver; there is none.
		r.BX = 0
		r.ES = 0
		d.Disable()
		// RBIL says AX=0x20 on success, CuteMouse says 0x1f; AX already
		// holds 0x1f.
		return nil
	}},
	0x20: {"enable mouse driver", func(d *Driver, r *Registers) error {
		d.Enable()
		return nil
	}},
	0x21: {"software reset", func(d *Driver, r *Registers) error {
		r.AX, r.BX = d.ResetDriver(false)
		return nil
	}},
	0x22: {"set language for messages", func(d *Driver, r *Registers) error {
		d.SetLanguage(r.BX)
		return nil
	}},
	0x23: {"get language for messages", func(d *Driver, r *Registers) error {
		r.BX = d.Language()
		return nil
	}},
	0x24: {"get software version, mouse type and IRQ number", func(d *Driver, r *Registers) error {
		r.BX = DriverVersion
		r.SetCH(MouseTypePS2)
		r.SetCL(0) // PS/2 has no IRQ number to report
		return nil
	}},
	0x25: notImplemented("get general driver information"),
	0x26: {"get maximum virtual coordinates", func(d *Driver, r *Registers) error {
		_, _, maxX, maxY := d.Bounds()
		if d.state.Enabled {
			r.BX = 0x0000
		} else {
			r.BX = 0xffff
		}
		r.CX = word16(maxX)
		r.DX = word16(maxY)
		return nil
	}},
	0x27: {"get screen/cursor masks and mickey counts", func(d *Driver, r *Registers) error {
		r.AX, r.BX = d.TextMasks()
		readMotion(d, r)
		return nil
	}},
	0x28: notImplemented("set video mode"),
	0x29: notImplemented("enumerate video modes"),
	0x2a: {"get cursor hot spot", func(d *Driver, r *Registers) error {
		visibility, x, y := d.HotSpot()
		r.SetAL(visibility)
		r.BX = word16(x)
		r.CX = word16(y)
		r.DX = MouseTypePS2
		return nil
	}},
	0x2b: notImplemented("load acceleration profiles"),
	0x2c: notImplemented("get acceleration profiles"),
	0x2d: notImplemented("select acceleration profile"),
	0x2e: notImplemented("set acceleration profile names"),
	0x2f: notImplemented("mouse hardware reset"),
	0x30: notImplemented("get/set BallPoint information"),
	0x31: {"get current min/max virtual coordinates", func(d *Driver, r *Registers) error {
		minX, minY, maxX, maxY := d.Bounds()
		r.AX = word16(minX)
		r.BX = word16(minY)
		r.CX = word16(maxX)
		r.DX = word16(maxY)
		return nil
	}},
	0x32: notImplemented("get active advanced functions"),
	0x33: notImplemented("get/switch acceleration profile"),
	0x34: notImplemented("get initialization file"),
	0x35: notImplemented("LCD screen large pointer support"),
	0x4d: notImplemented("return pointer to copyright string"),
	0x6d: notImplemented("get version string"),
	0x70: notImplemented("Mouse Systems installation check"),
	0x72: notImplemented("Mouse Systems unknown function"),
	0x73: notImplemented("Mouse Systems get button assignments"),
	0x53c1: {"Logitech CyberMan", func(d *Driver, r *Registers) error {
		d.logger.Info("Mouse function 0x53c1 for Logitech CyberMan called, ignored by regular mouse driver")
		return nil
	}},
}

// notImplemented leaves the registers as they are and logs the call.
func notImplemented(name string) operation {
	return operation{name, func(d *Driver, r *Registers) error {
		d.logger.Error("Mouse function not implemented", "function", fmt.Sprintf("0x%04x", r.AX), "name", name)
		return nil
	}}
}

// FunctionName returns the name of a known function code.
func FunctionName(code uint16) (string, bool) {
	op, ok := functions[code]
	return op.name, ok
}

// Dispatch runs the function selected by AX. Unknown functions leave the
// registers untouched. A returned error comes from a collaborator (guest
// memory access); the call still counts as handled.
func (d *Driver) Dispatch(r *Registers) error {
	op, ok := functions[r.AX]
	if !ok {
		d.logger.Error("Mouse function not implemented", "function", fmt.Sprintf("0x%04x", r.AX))
		return nil
	}
	d.logger.Log(context.Background(), log.LevelTrace, "INT 33h", "function", fmt.Sprintf("0x%04x", r.AX), "name", op.name)
	return op.run(d, r)
}

func setButtonInfo(r *Registers, query func(uint16) (ButtonInfo, bool)) {
	info, ok := query(r.BX)
	if ok {
		r.AX = uint16(info.Buttons)
	}
	r.BX = info.Count
	r.CX = info.X
	r.DX = info.Y
}

func readMotion(d *Driver, r *Registers) {
	x, y := d.ReadMotion()
	r.CX = word16(x)
	r.DX = word16(y)
}

func defineGraphicsCursor(d *Driver, r *Registers) error {
	buf := make([]byte, 2*cursorSizeY*2)
	if err := d.host.Memory.ReadBlock(PhysAddr(r.ES, r.DX), buf); err != nil {
		return fmt.Errorf("read cursor masks: %w", err)
	}
	d.rawLogger.Log(true, buf)

	var screen, cursor [cursorSizeY]uint16
	for i := range screen {
		screen[i] = binary.LittleEndian.Uint16(buf[2*i:])
		cursor[i] = binary.LittleEndian.Uint16(buf[2*cursorSizeY+2*i:])
	}
	d.DefineGraphicsCursor(signed16(r.BX), signed16(r.CX), screen, cursor)
	return nil
}
