package hal

import (
	"time"

	"pinhal/logging"
)

// Drift controls the virtual backend's simulated spontaneous level changes
// on input pins.  Every Every-th input read draws a number in
// [0, Outcomes); a draw below Threshold flips the pin.  A zero Every or
// Outcomes disables drift.
type Drift struct {
	Every     uint64 `json:"every"`
	Outcomes  int    `json:"outcomes"`
	Threshold int    `json:"threshold"`
}

// DefaultDrift flips an input pin with 30% probability on every 100th read.
var DefaultDrift = Drift{Every: 100, Outcomes: 10, Threshold: 3}

// NoDrift disables simulated drift.
var NoDrift = Drift{}

func (d Drift) enabled() bool { return d.Every > 0 && d.Outcomes > 0 }

// Option configures a backend at construction.  Options that do not apply
// to the chosen backend are ignored.
type Option func(*options)

type options struct {
	log   *logging.Logger
	seed  uint64
	drift Drift
	plat  Platform
}

func newOptions(opts []Option) options {
	o := options{
		seed:  uint64(time.Now().UnixNano()),
		drift: DefaultDrift,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger routes backend diagnostics to l.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSeed seeds the virtual backend's random source so drift is
// reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithDrift replaces DefaultDrift on the virtual backend.
func WithDrift(d Drift) Option {
	return func(o *options) { o.drift = d }
}

// WithPlatform supplies the hardware backend's primitives.  A nil platform
// keeps DefaultPlatform.
func WithPlatform(p Platform) Option {
	return func(o *options) { o.plat = p }
}
