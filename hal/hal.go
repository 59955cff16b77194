// Package hal is a small hardware abstraction layer for digital GPIO pins.
//
// Callers program against the GPIO interface.  Two backends implement it: a
// Virtual backend that simulates pin state in memory (the default, so the
// collector runs on a desktop machine without any hardware attached) and a
// Hardware backend whose five platform primitives are supplied per target.
// Backends are obtained from the factory functions in factory.go.
//
// Backends are not safe for concurrent use.  Every operation is a bounded
// array lookup and completes immediately.
package hal

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
)

// MaxPins is the number of addressable pins.  Valid identifiers are
// [0, MaxPins).
const MaxPins = 64

// Pin identifies a digital I/O line.
type Pin uint8

// Valid reports whether p is addressable.
func (p Pin) Valid() bool { return p < MaxPins }

// Mode is the electrical configuration of a pin.
type Mode uint8

const (
	Input Mode = iota
	Output
	InputPullUp
	InputPullDown
)

var modeNames = [...]string{
	Input:         "input",
	Output:        "output",
	InputPullUp:   "input_pullup",
	InputPullDown: "input_pulldown",
}

func (m Mode) valid() bool { return int(m) < len(modeNames) }

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseMode converts a configuration string such as "input_pullup" into a
// Mode.  Matching is case insensitive.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name {
			return Mode(m), nil
		}
	}
	return Input, fmt.Errorf("unknown pin mode %q", s)
}

// PinConfig describes how one pin should be initialised.  InitState is only
// used when Mode is Output; the zero value is gpio.Low.
type PinConfig struct {
	Pin       Pin
	Mode      Mode
	InitState gpio.Level
}

// GPIO is the capability set every backend provides.
type GPIO interface {
	// Init marks the pin initialised with the given mode and applies the
	// mode's default level.  Re-initialising a pin overwrites its record.
	Init(cfg PinConfig) error

	// Read returns the pin's level.  Out of range and uninitialised pins
	// read gpio.Low.
	Read(pin Pin) gpio.Level

	// Write drives an initialised Output pin.
	Write(pin Pin, level gpio.Level) error

	// SetMode changes the pin's mode.  Pull-up and pull-down modes also set
	// the level to High and Low respectively.  The initialised flag is left
	// alone.
	SetMode(pin Pin, mode Mode) error

	// ReadMultiple reads each pin in order.  The result always has the same
	// length as pins; invalid entries read gpio.Low.
	ReadMultiple(pins []Pin) []gpio.Level

	// Deinit returns the pin to {Input, Low, uninitialised}.
	Deinit(pin Pin) error
}

// Validation failures.  Backends return these unwrapped so callers can
// compare with errors.Is.
var (
	ErrPinOutOfRange  = errors.New("pin out of range")
	ErrNotInitialized = errors.New("pin not initialized")
	ErrNotOutput      = errors.New("pin not configured as output")
	ErrInvalidMode    = errors.New("invalid pin mode")
)

// defaultLevel is the level a pin takes when it is initialised with mode.
func defaultLevel(mode Mode, initState gpio.Level) gpio.Level {
	switch mode {
	case Output:
		return initState
	case InputPullUp:
		return gpio.High
	default:
		return gpio.Low
	}
}

// readEach applies read to every pin in order.
func readEach(pins []Pin, read func(Pin) gpio.Level) []gpio.Level {
	levels := make([]gpio.Level, len(pins))
	for i, p := range pins {
		levels[i] = read(p)
	}
	return levels
}
