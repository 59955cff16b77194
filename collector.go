package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"pinhal/hal"
	"pinhal/logging"
)

const collectorTag = "collector"

// NetResult is the outcome of testing one net in a scan.
type NetResult struct {
	Net    string  `json:"net"`
	Drive  hal.Pin `json:"drive"`
	Sense  hal.Pin `json:"sense"`
	Closed bool    `json:"closed"`
	Fault  bool    `json:"fault"`
	Err    string  `json:"error,omitempty"`
}

// ScanResult is one pass over every configured net.
type ScanResult struct {
	Seq     int         `json:"seq"`
	Time    time.Time   `json:"time"`
	Results []NetResult `json:"results"`
}

// Faults returns the number of faulty nets in the scan.
func (s ScanResult) Faults() int {
	n := 0
	for _, r := range s.Results {
		if r.Fault {
			n++
		}
	}
	return n
}

// Collector drives each net's drive pin high in turn and records which
// sense pins follow it.  It only depends on the hal.GPIO contract.
type Collector struct {
	gpio hal.GPIO
	nets []Net
	log  *logging.Logger
	seq  int

	drives []hal.Pin         // distinct drive pins in configuration order
	senses []hal.Pin         // distinct sense pins in configuration order
	byPin  map[hal.Pin][]int // drive pin -> indexes into nets
	slot   map[hal.Pin]int   // sense pin -> index into senses
}

// NewCollector prepares a collector for nets.  Nets are expected to have
// passed Config.Validate.
func NewCollector(g hal.GPIO, nets []Net, logger *logging.Logger) *Collector {
	c := &Collector{
		gpio:  g,
		nets:  nets,
		log:   logger,
		byPin: make(map[hal.Pin][]int),
		slot:  make(map[hal.Pin]int),
	}
	for i, n := range nets {
		if _, ok := c.byPin[n.Drive]; !ok {
			c.drives = append(c.drives, n.Drive)
		}
		c.byPin[n.Drive] = append(c.byPin[n.Drive], i)
		if _, ok := c.slot[n.Sense]; !ok {
			c.slot[n.Sense] = len(c.senses)
			c.senses = append(c.senses, n.Sense)
		}
	}
	return c
}

// Setup configures drive pins as outputs held low and sense pins as
// pulled-down inputs.
func (c *Collector) Setup() error {
	for _, p := range c.drives {
		if err := c.gpio.Init(hal.PinConfig{Pin: p, Mode: hal.Output, InitState: gpio.Low}); err != nil {
			return fmt.Errorf("setup drive pin %d: %w", p, err)
		}
	}
	for _, p := range c.senses {
		if err := c.gpio.Init(hal.PinConfig{Pin: p, Mode: hal.InputPullDown}); err != nil {
			return fmt.Errorf("setup sense pin %d: %w", p, err)
		}
	}
	c.log.Info(collectorTag, "configured %d drive and %d sense pins", len(c.drives), len(c.senses))
	return nil
}

// Scan tests every net once.  Results are in configuration order.  A drive
// pin that cannot be written marks all of its nets faulty.
func (c *Collector) Scan() ScanResult {
	c.seq++
	scan := ScanResult{Seq: c.seq, Time: time.Now(), Results: make([]NetResult, len(c.nets))}
	for _, drive := range c.drives {
		idx := c.byPin[drive]
		if err := c.gpio.Write(drive, gpio.High); err != nil {
			c.log.Warn(collectorTag, "scan %d: drive pin %d: %v", c.seq, drive, err)
			for _, i := range idx {
				n := c.nets[i]
				scan.Results[i] = NetResult{Net: n.Name, Drive: n.Drive, Sense: n.Sense, Fault: true, Err: err.Error()}
			}
			continue
		}
		levels := c.gpio.ReadMultiple(c.senses)
		if err := c.gpio.Write(drive, gpio.Low); err != nil {
			c.log.Warn(collectorTag, "scan %d: release drive pin %d: %v", c.seq, drive, err)
		}
		for _, i := range idx {
			n := c.nets[i]
			closed, fault := evaluateNet(n, levels[c.slot[n.Sense]])
			scan.Results[i] = NetResult{Net: n.Name, Drive: n.Drive, Sense: n.Sense, Closed: closed, Fault: fault}
		}
	}
	return scan
}

// Run scans every interval until scans passes have been made, or until ctx
// is cancelled when scans is zero.  Each pass is handed to every reporter;
// reporter errors are logged and do not stop the run.
func (c *Collector) Run(ctx context.Context, interval time.Duration, scans int, reporters []Reporter) error {
	if interval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %v", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 0; scans == 0 || n < scans; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		scan := c.Scan()
		for _, r := range reporters {
			if err := r.Report(scan); err != nil {
				c.log.Error(collectorTag, "reporter %s: %v", r.Name(), err)
			}
		}
	}
	return nil
}

// Teardown deinitialises every pin the collector configured.  All pins are
// attempted; the errors are joined.
func (c *Collector) Teardown() error {
	var errs []error
	for _, p := range c.drives {
		errs = append(errs, c.gpio.Deinit(p))
	}
	for _, p := range c.senses {
		errs = append(errs, c.gpio.Deinit(p))
	}
	return errors.Join(errs...)
}
