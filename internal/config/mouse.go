// Package config holds the user facing mouse settings and their parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidSensitivity is returned for sensitivity values that are
// neither an integer step count nor a decimal multiplier.
var ErrInvalidSensitivity = errors.New("invalid sensitivity value")

const (
	sensitivityBase        = 50
	sensitivityDoubleSteps = 10
	sensitivityUserMax     = 999
)

// MinRates are the accepted minimum sampling rates in Hz; 0 means no
// minimum.
var MinRates = []uint16{
	40,  // PS/2, about the limit of a 1200 baud serial mouse
	60,  // PS/2, Microsoft Mouse Driver 8.20
	80,  // PS/2, about the limit of a 2400 baud serial mouse
	100, // PS/2 and bus mouse, CuteMouse 2.1b4
	125, // basic USB mouse
	160, // about the limit of a 4800 baud serial mouse
	200, // PS/2 and bus mouse
	250, // gaming USB mouse
	330, // about the limit of a 9600 baud serial mouse
	500, // gaming USB mouse
}

// Mouse is the [mouse] section: kong flags, environment variables and
// config file keys.
type Mouse struct {
	Sensitivity  string `help:"Sensitivity as xsens[,ysens]. Integers are steps (50 is neutral, +10 doubles), decimals are multipliers (1.0 neutral). Negative reverses, 0 stops movement" default:"1.0" env:"DOSMOUSE_MOUSE_SENSITIVITY"`
	RawInput     bool   `help:"Bypass host acceleration; enables the driver's own ballistics" default:"true" negatable:"" env:"DOSMOUSE_MOUSE_RAW_INPUT"`
	DosDriver    bool   `help:"Enable the built-in DOS mouse driver" default:"true" negatable:"" env:"DOSMOUSE_MOUSE_DOS_DRIVER"`
	DosImmediate bool   `help:"Update movement counters immediately, without waiting for the interrupt" default:"false" env:"DOSMOUSE_MOUSE_DOS_IMMEDIATE"`
	MinRate      uint16 `help:"Minimum sampling rate in Hz (0, 40, 60, 80, 100, 125, 160, 200, 250, 330, 500)" default:"0" env:"DOSMOUSE_MOUSE_MIN_RATE"`
}

// Settings is the parsed and validated form of Mouse.
type Settings struct {
	SensitivityX int8
	SensitivityY int8
	RawInput     bool
	DosDriver    bool
	DosImmediate bool
	MinRateHz    uint16
}

// DefaultSettings matches the defaults of Mouse.
func DefaultSettings() Settings {
	return Settings{
		SensitivityX: sensitivityBase,
		SensitivityY: sensitivityBase,
		RawInput:     true,
		DosDriver:    true,
	}
}

// CoeffX returns the horizontal sensitivity multiplier.
func (s Settings) CoeffX() float32 { return SensitivityCoeff(s.SensitivityX) }

// CoeffY returns the vertical sensitivity multiplier.
func (s Settings) CoeffY() float32 { return SensitivityCoeff(s.SensitivityY) }

// Resolve parses the settings. Invalid values are logged and replaced by
// defaults, so a bad config file never stops the program.
func (m Mouse) Resolve(logger *slog.Logger) Settings {
	s := Settings{
		RawInput:     m.RawInput,
		DosDriver:    m.DosDriver,
		DosImmediate: m.DosImmediate,
	}

	var err error
	s.SensitivityX, s.SensitivityY, err = ParseSensitivityPair(m.Sensitivity)
	if err != nil {
		logger.Error("Invalid mouse sensitivity", "value", m.Sensitivity, "error", err)
	}

	if m.MinRate == 0 || slices.Contains(MinRates, m.MinRate) {
		s.MinRateHz = m.MinRate
	} else {
		logger.Error("Invalid minimum mouse rate, ignoring", "rate", m.MinRate)
	}
	return s
}

// ParseSensitivityPair parses "xsens[,ysens]"; a missing ysens copies
// xsens. On error the failing axis holds the neutral value.
func ParseSensitivityPair(v string) (x, y int8, err error) {
	xs, ys, found := strings.Cut(v, ",")
	x, err = ParseSensitivity(xs)
	if !found || strings.TrimSpace(ys) == "" {
		return x, x, err
	}
	y, errY := ParseSensitivity(ys)
	return x, y, errors.Join(err, errY)
}

// ParseSensitivity converts one sensitivity value into user steps. A value
// with a decimal point is a multiplier, mapped logarithmically (1.0 is
// 50, 2.0 is 60); anything else is taken as a step count. An empty string
// is neutral.
func ParseSensitivity(v string) (int8, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return sensitivityBase, nil
	}

	steps := int64(sensitivityBase)
	if strings.Contains(v, ".") {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return sensitivityBase, fmt.Errorf("%w: %q", ErrInvalidSensitivity, v)
		}
		sign := int64(1)
		if f < 0 {
			sign = -1
			f = -f
		}
		if f == 0 {
			return 0, nil
		}
		scaled := math.Log2(f)*sensitivityDoubleSteps + sensitivityBase
		steps = sign * int64(math.Round(math.Max(scaled, 1)))
	} else {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return sensitivityBase, fmt.Errorf("%w: %q", ErrInvalidSensitivity, v)
		}
		steps = n
	}

	steps = min(max(steps, -sensitivityUserMax), sensitivityUserMax)
	return int8(min(max(steps, math.MinInt8), math.MaxInt8)), nil
}

// SensitivityCoeff turns user steps into a movement multiplier:
// 2^((|steps|-50)/10) with the sign of steps, 0 for 0.
func SensitivityCoeff(steps int8) float32 {
	if steps == 0 {
		return 0
	}
	abs := math.Abs(float64(steps))
	coeff := math.Pow(2, (abs-sensitivityBase)/sensitivityDoubleSteps)
	if steps < 0 {
		coeff = -coeff
	}
	return float32(coeff)
}
