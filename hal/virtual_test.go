package hal

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

// flipAlways flips an input pin on every read.
var flipAlways = Drift{Every: 1, Outcomes: 1, Threshold: 1}

func newTestVirtual(opts ...Option) *Virtual {
	return NewVirtual(append([]Option{WithSeed(1), WithDrift(NoDrift)}, opts...)...)
}

func TestVirtualOutOfRangeNeverMutates(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 5, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatal(err)
	}
	before := v.pins
	for p := MaxPins; p <= 255; p++ {
		pin := Pin(p)
		if err := v.Init(PinConfig{Pin: pin, Mode: Output}); !errors.Is(err, ErrPinOutOfRange) {
			t.Errorf("Init(%d) = %v", pin, err)
		}
		if got := v.Read(pin); got != gpio.Low {
			t.Errorf("Read(%d) = %v", pin, got)
		}
		if err := v.Write(pin, gpio.High); !errors.Is(err, ErrPinOutOfRange) {
			t.Errorf("Write(%d) = %v", pin, err)
		}
		if err := v.SetMode(pin, InputPullUp); !errors.Is(err, ErrPinOutOfRange) {
			t.Errorf("SetMode(%d) = %v", pin, err)
		}
		if err := v.Deinit(pin); !errors.Is(err, ErrPinOutOfRange) {
			t.Errorf("Deinit(%d) = %v", pin, err)
		}
		if err := v.ForceState(pin, gpio.High); !errors.Is(err, ErrPinOutOfRange) {
			t.Errorf("ForceState(%d) = %v", pin, err)
		}
		if v.Initialized(pin) || v.Mode(pin) != Input {
			t.Errorf("accessors for %d: initialized=%v mode=%v", pin, v.Initialized(pin), v.Mode(pin))
		}
	}
	if v.pins != before {
		t.Error("out of range operations changed pin records")
	}
}

func TestVirtualReadUninitialized(t *testing.T) {
	v := newTestVirtual(WithDrift(flipAlways))
	if err := v.ForceState(7, gpio.High); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if got := v.Read(7); got != gpio.Low {
			t.Fatalf("Read of uninitialized pin = %v, want Low", got)
		}
	}
	if v.Reads() != 0 {
		t.Errorf("uninitialized reads counted: %d", v.Reads())
	}
	if v.pins[7].state != gpio.High {
		t.Error("read of uninitialized pin mutated its record")
	}
}

func TestVirtualOutputInitAndWrite(t *testing.T) {
	v := NewVirtual(WithSeed(42))
	if err := v.Init(PinConfig{Pin: 5, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := v.Read(5); got != gpio.High {
		t.Fatalf("Read(5) after init = %v, want High", got)
	}
	if err := v.Write(5, gpio.Low); err != nil {
		t.Fatalf("Write(5, Low): %v", err)
	}
	if got := v.Read(5); got != gpio.Low {
		t.Errorf("Read(5) after write = %v, want Low", got)
	}
}

func TestVirtualInitDefaults(t *testing.T) {
	v := newTestVirtual()
	for _, tt := range []struct {
		cfg  PinConfig
		want gpio.Level
	}{
		{PinConfig{Pin: 0, Mode: Input, InitState: gpio.High}, gpio.Low},
		{PinConfig{Pin: 1, Mode: Output}, gpio.Low},
		{PinConfig{Pin: 2, Mode: Output, InitState: gpio.High}, gpio.High},
		{PinConfig{Pin: 3, Mode: InputPullUp}, gpio.High},
		{PinConfig{Pin: 4, Mode: InputPullDown, InitState: gpio.High}, gpio.Low},
	} {
		if err := v.Init(tt.cfg); err != nil {
			t.Fatalf("Init(%+v): %v", tt.cfg, err)
		}
		if got := v.Read(tt.cfg.Pin); got != tt.want {
			t.Errorf("Init(%+v) then Read = %v, want %v", tt.cfg, got, tt.want)
		}
		if !v.Initialized(tt.cfg.Pin) || v.Mode(tt.cfg.Pin) != tt.cfg.Mode {
			t.Errorf("pin %d: initialized=%v mode=%v", tt.cfg.Pin, v.Initialized(tt.cfg.Pin), v.Mode(tt.cfg.Pin))
		}
	}
}

func TestVirtualInitInvalidMode(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 1, Mode: Mode(9)}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Init with bad mode = %v", err)
	}
	if v.Initialized(1) {
		t.Error("failed init marked pin initialized")
	}
	if err := v.SetMode(1, Mode(9)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetMode with bad mode = %v", err)
	}
}

func TestVirtualReinitOverwrites(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 9, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatal(err)
	}
	if err := v.Init(PinConfig{Pin: 9, Mode: InputPullDown}); err != nil {
		t.Fatal(err)
	}
	if v.Mode(9) != InputPullDown || v.Read(9) != gpio.Low {
		t.Errorf("re-init left mode=%v level=%v", v.Mode(9), v.Read(9))
	}
}

func TestVirtualWriteRejected(t *testing.T) {
	v := newTestVirtual()
	if err := v.Write(3, gpio.High); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Write to uninitialized pin = %v", err)
	}
	if err := v.Init(PinConfig{Pin: 3, Mode: Input}); err != nil {
		t.Fatal(err)
	}
	if err := v.Write(3, gpio.High); !errors.Is(err, ErrNotOutput) {
		t.Errorf("Write to input pin = %v", err)
	}
	if got := v.Read(3); got != gpio.Low {
		t.Errorf("rejected write changed level to %v", got)
	}
}

func TestVirtualSetMode(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 4, Mode: Output, InitState: gpio.Low}); err != nil {
		t.Fatal(err)
	}
	if err := v.SetMode(4, InputPullUp); err != nil {
		t.Fatal(err)
	}
	if got := v.Read(4); got != gpio.High {
		t.Errorf("after pull-up Read = %v, want High", got)
	}
	if err := v.SetMode(4, InputPullDown); err != nil {
		t.Fatal(err)
	}
	if got := v.Read(4); got != gpio.Low {
		t.Errorf("after pull-down Read = %v, want Low", got)
	}

	// Plain modes leave the level alone.
	if err := v.ForceState(4, gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := v.SetMode(4, Output); err != nil {
		t.Fatal(err)
	}
	if got := v.Read(4); got != gpio.High {
		t.Errorf("after SetMode(Output) Read = %v, want High", got)
	}
}

func TestVirtualSetModeKeepsInitialized(t *testing.T) {
	v := newTestVirtual()
	if err := v.SetMode(8, InputPullUp); err != nil {
		t.Fatal(err)
	}
	if v.Initialized(8) {
		t.Error("SetMode initialized the pin")
	}
	if got := v.Read(8); got != gpio.Low {
		t.Errorf("Read of uninitialized pin after SetMode = %v", got)
	}
	if v.Mode(8) != InputPullUp {
		t.Errorf("Mode(8) = %v", v.Mode(8))
	}
}

func TestVirtualReadMultiple(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 3, Mode: InputPullUp}); err != nil {
		t.Fatal(err)
	}
	if err := v.Init(PinConfig{Pin: 5, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatal(err)
	}
	got := v.ReadMultiple([]Pin{3, 5, 70})
	want := []gpio.Level{v.Read(3), v.Read(5), gpio.Low}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadMultiple mismatch (-want +got):\n%s", diff)
	}
	if got := v.ReadMultiple(nil); len(got) != 0 {
		t.Errorf("ReadMultiple(nil) = %v", got)
	}
}

func TestVirtualDeinitIdempotent(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 6, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatal(err)
	}
	if err := v.Deinit(6); err != nil {
		t.Fatal(err)
	}
	first := v.pins
	if err := v.Deinit(6); err != nil {
		t.Fatal(err)
	}
	if v.pins != first {
		t.Error("second Deinit changed records")
	}
	if v.Initialized(6) || v.Mode(6) != Input || v.Read(6) != gpio.Low {
		t.Errorf("deinit left initialized=%v mode=%v", v.Initialized(6), v.Mode(6))
	}
}

func TestVirtualContinuityPattern(t *testing.T) {
	v := newTestVirtual()
	for p := Pin(0); p < 4; p++ {
		if err := v.Init(PinConfig{Pin: p, Mode: Input}); err != nil {
			t.Fatal(err)
		}
	}
	v.SimulateContinuityPattern(4, 0b1010)
	got := v.ReadMultiple([]Pin{0, 1, 2, 3})
	want := []gpio.Level{gpio.Low, gpio.High, gpio.Low, gpio.High}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestVirtualContinuityPatternWraps(t *testing.T) {
	v := newTestVirtual()
	v.SimulateContinuityPattern(1000, 1)
	for p := 0; p < MaxPins; p++ {
		want := gpio.Level(p%32 == 0)
		if v.pins[p].state != want {
			t.Errorf("pin %d = %v, want %v", p, v.pins[p].state, want)
		}
	}
	v.SimulateContinuityPattern(-1, 0)
	if v.pins[0].state != gpio.High {
		t.Error("negative pin count modified pins")
	}
}

func TestVirtualResetAll(t *testing.T) {
	v := newTestVirtual(WithDrift(flipAlways))
	for p := Pin(0); p < MaxPins; p++ {
		if err := v.Init(PinConfig{Pin: p, Mode: InputPullUp}); err != nil {
			t.Fatal(err)
		}
	}
	v.Read(0)
	v.ResetAll()
	for p := Pin(0); p < MaxPins; p++ {
		if v.Initialized(p) {
			t.Fatalf("pin %d still initialized after ResetAll", p)
		}
	}
	if v.Reads() != 0 {
		t.Errorf("Reads() = %d after reset", v.Reads())
	}
}

func TestVirtualDriftOnlyAffectsInputs(t *testing.T) {
	v := newTestVirtual(WithDrift(flipAlways))
	if err := v.Init(PinConfig{Pin: 0, Mode: Output, InitState: gpio.High}); err != nil {
		t.Fatal(err)
	}
	if err := v.Init(PinConfig{Pin: 1, Mode: InputPullDown}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if got := v.Read(0); got != gpio.High {
			t.Fatalf("output pin drifted to %v", got)
		}
	}
	var got []gpio.Level
	for i := 0; i < 4; i++ {
		got = append(got, v.Read(1))
	}
	want := []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input drift mismatch (-want +got):\n%s", diff)
	}
	if v.Reads() != 4 {
		t.Errorf("Reads() = %d, want 4", v.Reads())
	}
}

func TestVirtualDriftCadence(t *testing.T) {
	v := newTestVirtual(WithDrift(Drift{Every: 100, Outcomes: 1, Threshold: 1}))
	if err := v.Init(PinConfig{Pin: 2, Mode: Input}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 99; i++ {
		if got := v.Read(2); got != gpio.Low {
			t.Fatalf("read %d drifted early", i)
		}
	}
	if got := v.Read(2); got != gpio.High {
		t.Errorf("100th read = %v, want High", got)
	}
}

func TestVirtualDriftReproducible(t *testing.T) {
	sample := func() []gpio.Level {
		v := NewVirtual(WithSeed(7), WithDrift(Drift{Every: 1, Outcomes: 10, Threshold: 3}))
		if err := v.Init(PinConfig{Pin: 0, Mode: Input}); err != nil {
			t.Fatal(err)
		}
		out := make([]gpio.Level, 200)
		for i := range out {
			out[i] = v.Read(0)
		}
		return out
	}
	a, b := sample(), sample()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different drift (-a +b):\n%s", diff)
	}
	flips := 0
	for i := 1; i < len(a); i++ {
		if a[i] != a[i-1] {
			flips++
		}
	}
	if flips == 0 || flips == len(a)-1 {
		t.Errorf("implausible flip count %d for 30%% drift", flips)
	}
}

func TestVirtualNoDrift(t *testing.T) {
	v := newTestVirtual()
	if err := v.Init(PinConfig{Pin: 0, Mode: InputPullUp}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		if v.Read(0) != gpio.High {
			t.Fatalf("read %d drifted with NoDrift", i)
		}
	}
}
