package hal

import (
	"golang.org/x/exp/rand"
	"periph.io/x/conn/v3/gpio"
)

// Virtual simulates a bank of MaxPins pins in memory.  Input pins drift
// according to the configured Drift so callers get exercised against
// readings that change underneath them.
type Virtual struct {
	pinTable
	drift Drift
	rng   *rand.Rand
	reads uint64
}

var _ GPIO = (*Virtual)(nil)

// NewVirtual returns a simulated backend with every pin in its default
// record.
func NewVirtual(opts ...Option) *Virtual {
	o := newOptions(opts)
	return &Virtual{
		pinTable: pinTable{name: "virtual", log: o.log},
		drift:    o.drift,
		rng:      rand.New(rand.NewSource(o.seed)),
	}
}

func (v *Virtual) Init(cfg PinConfig) error { return v.init(cfg) }

// Read returns the stored level.  Reads of initialised non-output pins
// advance the read counter and may flip the stored level.
func (v *Virtual) Read(pin Pin) gpio.Level {
	rec, ok := v.active(pin)
	if !ok {
		return gpio.Low
	}
	if rec.mode != Output {
		v.reads++
		if v.drift.enabled() && v.reads%v.drift.Every == 0 && v.rng.Intn(v.drift.Outcomes) < v.drift.Threshold {
			rec.state = !rec.state
			v.log.Verbose(logTag, "virtual: pin %d drifted to %s", pin, rec.state)
		}
	}
	return rec.state
}

func (v *Virtual) Write(pin Pin, level gpio.Level) error { return v.write(pin, level) }

func (v *Virtual) SetMode(pin Pin, mode Mode) error { return v.setMode(pin, mode) }

func (v *Virtual) ReadMultiple(pins []Pin) []gpio.Level { return readEach(pins, v.Read) }

func (v *Virtual) Deinit(pin Pin) error { return v.deinit(pin) }

// ForceState overwrites the stored level of pin regardless of its mode or
// whether it is initialised.  It exists for staging test fixtures and is
// deliberately not part of GPIO.
func (v *Virtual) ForceState(pin Pin, level gpio.Level) error {
	if !pin.Valid() {
		return v.reject("force", pin, ErrPinOutOfRange)
	}
	v.pins[pin].state = level
	return nil
}

// Initialized reports whether pin has been initialised.  Out of range pins
// report false.
func (v *Virtual) Initialized(pin Pin) bool { return v.initialized(pin) }

// Mode returns the pin's mode, or Input for out of range pins.
func (v *Virtual) Mode(pin Pin) Mode { return v.mode(pin) }

// Reads returns the number of input reads counted towards drift.
func (v *Virtual) Reads() uint64 { return v.reads }

// ResetAll returns every pin to its default record and zeroes the read
// counter.
func (v *Virtual) ResetAll() {
	v.reset()
	v.reads = 0
	v.log.Verbose(logTag, "virtual: all pins reset")
}

// SimulateContinuityPattern stages pin i in [0, min(numPins, MaxPins)) to
// bit i%32 of pattern, ignoring mode and initialisation.  Bit 0 maps to
// pin 0.
func (v *Virtual) SimulateContinuityPattern(numPins int, pattern uint32) {
	if numPins > MaxPins {
		numPins = MaxPins
	}
	for i := 0; i < numPins; i++ {
		v.pins[i].state = gpio.Level(pattern&(1<<(uint(i)%32)) != 0)
	}
	v.log.Verbose(logTag, "virtual: staged pattern %#08x on %d pins", pattern, numPins)
}
