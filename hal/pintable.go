package hal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"pinhal/logging"
)

// logTag is the component tag used for every HAL log line.
const logTag = "gpio"

// pinRecord is the bookkeeping kept for one pin.  The zero value is the
// default record {Input, Low, uninitialised}.
type pinRecord struct {
	mode        Mode
	state       gpio.Level
	initialized bool
}

// pinTable holds the record bookkeeping shared by all backends: range
// checks, mode enforcement and initialised tracking.  When plat is non-nil
// each mutation is first forwarded to the platform primitive and only
// recorded if the primitive succeeds.
type pinTable struct {
	name string
	pins [MaxPins]pinRecord
	plat Platform
	log  *logging.Logger
}

func (t *pinTable) reject(op string, pin Pin, err error) error {
	t.log.Debug(logTag, "%s: %s pin %d: %v", t.name, op, pin, err)
	return err
}

func (t *pinTable) init(cfg PinConfig) error {
	if !cfg.Pin.Valid() {
		return t.reject("init", cfg.Pin, ErrPinOutOfRange)
	}
	if !cfg.Mode.valid() {
		return t.reject("init", cfg.Pin, ErrInvalidMode)
	}
	level := defaultLevel(cfg.Mode, cfg.InitState)
	if t.plat != nil {
		if err := t.plat.Init(cfg.Pin, cfg.Mode, level); err != nil {
			return t.reject("init", cfg.Pin, fmt.Errorf("platform init pin %d: %w", cfg.Pin, err))
		}
	}
	t.pins[cfg.Pin] = pinRecord{mode: cfg.Mode, state: level, initialized: true}
	t.log.Verbose(logTag, "%s: pin %d initialised as %s, level %s", t.name, cfg.Pin, cfg.Mode, level)
	return nil
}

// active returns the record for pin if it is in range and initialised.
func (t *pinTable) active(pin Pin) (*pinRecord, bool) {
	if !pin.Valid() || !t.pins[pin].initialized {
		return nil, false
	}
	return &t.pins[pin], true
}

func (t *pinTable) write(pin Pin, level gpio.Level) error {
	if !pin.Valid() {
		return t.reject("write", pin, ErrPinOutOfRange)
	}
	rec := &t.pins[pin]
	if !rec.initialized {
		return t.reject("write", pin, ErrNotInitialized)
	}
	if rec.mode != Output {
		return t.reject("write", pin, ErrNotOutput)
	}
	if t.plat != nil {
		if err := t.plat.Write(pin, level); err != nil {
			return t.reject("write", pin, fmt.Errorf("platform write pin %d: %w", pin, err))
		}
	}
	rec.state = level
	return nil
}

func (t *pinTable) setMode(pin Pin, mode Mode) error {
	if !pin.Valid() {
		return t.reject("set mode", pin, ErrPinOutOfRange)
	}
	if !mode.valid() {
		return t.reject("set mode", pin, ErrInvalidMode)
	}
	if t.plat != nil {
		if err := t.plat.SetMode(pin, mode); err != nil {
			return t.reject("set mode", pin, fmt.Errorf("platform set mode pin %d: %w", pin, err))
		}
	}
	rec := &t.pins[pin]
	rec.mode = mode
	switch mode {
	case InputPullUp:
		rec.state = gpio.High
	case InputPullDown:
		rec.state = gpio.Low
	}
	t.log.Verbose(logTag, "%s: pin %d mode %s", t.name, pin, mode)
	return nil
}

func (t *pinTable) deinit(pin Pin) error {
	if !pin.Valid() {
		return t.reject("deinit", pin, ErrPinOutOfRange)
	}
	// Only claimed pins are released on the platform, so a second deinit
	// is a pure record reset.
	if t.plat != nil && t.pins[pin].initialized {
		if err := t.plat.Deinit(pin); err != nil {
			return t.reject("deinit", pin, fmt.Errorf("platform deinit pin %d: %w", pin, err))
		}
	}
	t.pins[pin] = pinRecord{}
	return nil
}

func (t *pinTable) initialized(pin Pin) bool {
	return pin.Valid() && t.pins[pin].initialized
}

func (t *pinTable) mode(pin Pin) Mode {
	if !pin.Valid() {
		return Input
	}
	return t.pins[pin].mode
}

func (t *pinTable) reset() {
	t.pins = [MaxPins]pinRecord{}
}
