package main

// This file defines pluggable reporters that receive every scan.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pinhal/logging"
)

// Reporter receives each completed scan.  If an error is returned, the
// collector logs it but continues scanning.
type Reporter interface {
	Name() string
	Report(scan ScanResult) error
}

// LogReporter writes faulty nets at warn level and a one-line summary at
// info level.  It is the default reporter when none are configured.
type LogReporter struct {
	Log *logging.Logger
}

// Name returns the type name of the reporter.
func (LogReporter) Name() string { return "log" }

// Report logs the scan.
func (r LogReporter) Report(scan ScanResult) error {
	for _, res := range scan.Results {
		if !res.Fault {
			continue
		}
		switch {
		case res.Err != "":
			r.Log.Warn(collectorTag, "scan %d: net %s untested: %s", scan.Seq, res.Net, res.Err)
		case res.Closed:
			r.Log.Warn(collectorTag, "scan %d: net %s short (pin %d -> %d)", scan.Seq, res.Net, res.Drive, res.Sense)
		default:
			r.Log.Warn(collectorTag, "scan %d: net %s open (pin %d -> %d)", scan.Seq, res.Net, res.Drive, res.Sense)
		}
	}
	r.Log.Info(collectorTag, "scan %d: %d nets, %d faults", scan.Seq, len(scan.Results), scan.Faults())
	return nil
}

// JSONReporter writes each scan as one JSON line.
type JSONReporter struct {
	W io.Writer
}

// Name returns the type name of the reporter.
func (JSONReporter) Name() string { return "json" }

// Report encodes the scan to W.
func (r JSONReporter) Report(scan ScanResult) error {
	return json.NewEncoder(r.W).Encode(scan)
}

// initReporters constructs the reporters named in cfg.  If none are
// configured a single LogReporter is returned so that faults are always
// recorded.  The returned close function releases any files opened.
func initReporters(cfg Config, logger *logging.Logger, stdout io.Writer) ([]Reporter, func() error, error) {
	var (
		reporters []Reporter
		files     []*os.File
	)
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}
	for _, rc := range cfg.Reports {
		switch strings.ToLower(rc.Type) {
		case "log":
			reporters = append(reporters, LogReporter{Log: logger})
		case "json":
			if rc.Path == "" || rc.Path == "-" {
				reporters = append(reporters, JSONReporter{W: stdout})
				continue
			}
			f, err := os.OpenFile(rc.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return nil, nil, errors.Join(fmt.Errorf("open report file: %w", err), closeAll())
			}
			files = append(files, f)
			reporters = append(reporters, JSONReporter{W: f})
		default:
			return nil, nil, errors.Join(fmt.Errorf("unknown report type %q", rc.Type), closeAll())
		}
	}
	if len(reporters) == 0 {
		reporters = append(reporters, LogReporter{Log: logger})
	}
	return reporters, closeAll, nil
}
