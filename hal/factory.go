package hal

import (
	"fmt"
	"strings"
)

// BackendType selects a GPIO backend.
type BackendType int

const (
	BackendVirtual BackendType = iota
	BackendHardware
)

func (t BackendType) String() string {
	switch t {
	case BackendVirtual:
		return "virtual"
	case BackendHardware:
		return "hardware"
	default:
		return fmt.Sprintf("BackendType(%d)", int(t))
	}
}

// ParseBackendType accepts "virtual" or "hardware".  An empty string means
// DefaultBackend.
func ParseBackendType(s string) (BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultBackend, nil
	case "virtual", "sim", "simulated":
		return BackendVirtual, nil
	case "hardware", "hw":
		return BackendHardware, nil
	default:
		return BackendVirtual, fmt.Errorf("unknown gpio backend %q", s)
	}
}

// New returns the backend chosen at build time: the "gpio_hardware" tag
// selects hardware, "gpio_virtual" forces the simulation, and with neither
// tag the simulation is used.
func New(opts ...Option) GPIO { return NewGPIO(DefaultBackend, opts...) }

// NewGPIO returns the requested backend.  Unknown types get the virtual
// backend.
func NewGPIO(t BackendType, opts ...Option) GPIO {
	switch t {
	case BackendHardware:
		return NewHardwareGPIO(opts...)
	default:
		return NewVirtualGPIO(opts...)
	}
}

// NewVirtualGPIO returns a *Virtual as a GPIO.
func NewVirtualGPIO(opts ...Option) GPIO { return NewVirtual(opts...) }

// NewHardwareGPIO returns a *Hardware as a GPIO.
func NewHardwareGPIO(opts ...Option) GPIO { return NewHardware(opts...) }
