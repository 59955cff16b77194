package main

import "pinhal/hal"

// Expectation is the continuity a net should show when its drive pin is
// high.
type Expectation string

const (
	// ExpectClosed nets are wired through: the sense pin must follow the drive.
	ExpectClosed Expectation = "closed"
	// ExpectOpen nets must be isolated: the sense pin must stay low.
	ExpectOpen Expectation = "open"
)

// Net is one drive/sense pin pair under test.  Pins use the HAL's numbering
// (BCM numbers on the Raspberry Pi platform).
type Net struct {
	Name   string      `json:"name"`
	Drive  hal.Pin     `json:"drive"`
	Sense  hal.Pin     `json:"sense"`
	Expect Expectation `json:"expect"`
}

// ReportConfig selects a reporter.  Type is "log" or "json"; Path is the
// file the json reporter appends to ("-" or empty for standard output).
type ReportConfig struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// Config is the top-level structure serialized to the configuration file.
type Config struct {
	Backend    string         `json:"backend"`            // "virtual" or "hardware"; empty uses the build default
	LogLevel   string         `json:"log_level"`          // verbose, debug, info, warn, error
	LogFile    string         `json:"log_file,omitempty"` // events are also appended here when set
	Seed       uint64         `json:"seed,omitempty"`     // virtual drift seed; 0 seeds from the clock
	Drift      *hal.Drift     `json:"drift,omitempty"`    // nil keeps hal.DefaultDrift
	IntervalMs int            `json:"interval_ms"`        // delay between scans
	Scans      int            `json:"scans"`              // 0 scans until interrupted
	Pattern    *uint32        `json:"pattern,omitempty"`  // staged on the virtual backend after setup
	Nets       []Net          `json:"nets"`
	Reports    []ReportConfig `json:"reports"`
}
