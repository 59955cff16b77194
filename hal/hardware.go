package hal

import "periph.io/x/conn/v3/gpio"

// Platform is the set of low-level primitives a target supplies to the
// Hardware backend.  The backend validates every call before reaching the
// platform, so implementations only ever see in-range pins with a valid
// mode.  Returning an error aborts the operation and leaves the pin record
// unchanged.
type Platform interface {
	// Init claims the pin and configures it.  level is the level an output
	// should start at, or the expected pull level for inputs.
	Init(pin Pin, mode Mode, level gpio.Level) error
	// Read samples an input pin.
	Read(pin Pin) gpio.Level
	// Write drives an output pin.
	Write(pin Pin, level gpio.Level) error
	// SetMode reconfigures a pin.
	SetMode(pin Pin, mode Mode) error
	// Deinit releases a pin previously claimed by Init.
	Deinit(pin Pin) error
}

// Hardware drives real pins through a Platform.  The record bookkeeping is
// the same as the Virtual backend's; only the primitives differ.
//
// Output reads return the latched record rather than sampling the pin.
type Hardware struct {
	pinTable
}

var _ GPIO = (*Hardware)(nil)

// NewHardware returns a hardware backend using the platform given with
// WithPlatform, or DefaultPlatform when none is given.
func NewHardware(opts ...Option) *Hardware {
	o := newOptions(opts)
	plat := o.plat
	if plat == nil {
		plat = DefaultPlatform()
	}
	return &Hardware{pinTable: pinTable{name: "hardware", plat: plat, log: o.log}}
}

func (h *Hardware) Init(cfg PinConfig) error { return h.init(cfg) }

func (h *Hardware) Read(pin Pin) gpio.Level {
	rec, ok := h.active(pin)
	if !ok {
		return gpio.Low
	}
	if rec.mode != Output {
		rec.state = h.plat.Read(pin)
	}
	return rec.state
}

func (h *Hardware) Write(pin Pin, level gpio.Level) error { return h.write(pin, level) }

func (h *Hardware) SetMode(pin Pin, mode Mode) error { return h.setMode(pin, mode) }

func (h *Hardware) ReadMultiple(pins []Pin) []gpio.Level { return readEach(pins, h.Read) }

func (h *Hardware) Deinit(pin Pin) error { return h.deinit(pin) }

// Close deinitialises every claimed pin.  The first platform error is
// returned, but all pins are attempted.
func (h *Hardware) Close() error {
	var first error
	for p := Pin(0); p < MaxPins; p++ {
		if !h.initialized(p) {
			continue
		}
		if err := h.deinit(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// placeholderPlatform touches no hardware.  Every primitive succeeds and
// reads return Low.  Targets without a real platform file build with it.
type placeholderPlatform struct{}

func (placeholderPlatform) Init(Pin, Mode, gpio.Level) error { return nil }
func (placeholderPlatform) Read(Pin) gpio.Level              { return gpio.Low }
func (placeholderPlatform) Write(Pin, gpio.Level) error      { return nil }
func (placeholderPlatform) SetMode(Pin, Mode) error          { return nil }
func (placeholderPlatform) Deinit(Pin) error                 { return nil }
