//go:build linux && (arm || arm64) && !disablegpio

// This file provides Raspberry Pi primitives for the Hardware backend using
// periph.io.  When cross-compiling for other platforms or when the build
// tag "disablegpio" is given, platform_stub.go is used instead.

package hal

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultPlatform returns periph.io backed primitives.  Pins are addressed
// by their BCM numbers.
func DefaultPlatform() Platform { return &periphPlatform{} }

type periphPlatform struct {
	ready bool
	pins  [MaxPins]gpio.PinIO
}

// resolve initialises the periph host on first use and looks up the pin by
// name, caching the handle.
func (pp *periphPlatform) resolve(pin Pin) (gpio.PinIO, error) {
	if !pp.ready {
		// host.Init can safely be called multiple times; only the first
		// call does any work.
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
		pp.ready = true
	}
	if p := pp.pins[pin]; p != nil {
		return p, nil
	}
	name := fmt.Sprintf("GPIO%d", pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	pp.pins[pin] = p
	return p, nil
}

func pullFor(mode Mode) gpio.Pull {
	switch mode {
	case InputPullUp:
		return gpio.PullUp
	case InputPullDown:
		return gpio.PullDown
	default:
		return gpio.Float
	}
}

func (pp *periphPlatform) configure(p gpio.PinIO, mode Mode, level gpio.Level) error {
	if mode == Output {
		return p.Out(level)
	}
	return p.In(pullFor(mode), gpio.NoEdge)
}

func (pp *periphPlatform) Init(pin Pin, mode Mode, level gpio.Level) error {
	p, err := pp.resolve(pin)
	if err != nil {
		return err
	}
	return pp.configure(p, mode, level)
}

// Read returns Low if the pin cannot be resolved.
func (pp *periphPlatform) Read(pin Pin) gpio.Level {
	p, err := pp.resolve(pin)
	if err != nil {
		return gpio.Low
	}
	return p.Read()
}

func (pp *periphPlatform) Write(pin Pin, level gpio.Level) error {
	p, err := pp.resolve(pin)
	if err != nil {
		return err
	}
	return p.Out(level)
}

// SetMode keeps the pin's present level when switching to Output.
func (pp *periphPlatform) SetMode(pin Pin, mode Mode) error {
	p, err := pp.resolve(pin)
	if err != nil {
		return err
	}
	return pp.configure(p, mode, p.Read())
}

func (pp *periphPlatform) Deinit(pin Pin) error {
	p := pp.pins[pin]
	if p == nil {
		return nil
	}
	pp.pins[pin] = nil
	return errors.Join(p.Halt(), p.In(gpio.Float, gpio.NoEdge))
}
