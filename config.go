package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"pinhal/hal"
	"pinhal/logging"
)

// defaultConfigPath is the default filename for persisted configuration.
const defaultConfigPath = "collector.json"

// ConfigManager wraps the loaded configuration and a mutex for concurrent
// access.
type ConfigManager struct {
	path   string
	mu     sync.RWMutex
	cfg    Config
	loaded bool
}

// NewConfigManager returns a manager for the configuration file at path.
func NewConfigManager(path string) *ConfigManager {
	if path == "" {
		path = defaultConfigPath
	}
	return &ConfigManager{path: path}
}

// defaultConfig runs three nets against the virtual backend with a staged
// pattern: two wired loops and one isolated pair.
func defaultConfig() Config {
	pattern := uint32(0b1010)
	return Config{
		Backend:    hal.BackendVirtual.String(),
		LogLevel:   logging.Info.String(),
		IntervalMs: 500,
		Scans:      10,
		Pattern:    &pattern,
		Nets: []Net{
			{Name: "loop-a", Drive: 0, Sense: 1, Expect: ExpectClosed},
			{Name: "loop-b", Drive: 2, Sense: 3, Expect: ExpectClosed},
			{Name: "isolation", Drive: 4, Sense: 5, Expect: ExpectOpen},
		},
		Reports: []ReportConfig{{Type: "log"}},
	}
}

// Load reads configuration from disk.  If the file does not exist, the
// default configuration is persisted and used.
func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	if cm.loaded {
		cm.mu.Unlock()
		return nil
	}
	data, err := os.ReadFile(cm.path)
	if err != nil {
		if os.IsNotExist(err) {
			cm.cfg = defaultConfig()
			cm.loaded = true
			// Release the write lock before saving: Save takes a read lock
			// on the same mutex.
			cm.mu.Unlock()
			return cm.Save()
		}
		cm.mu.Unlock()
		return fmt.Errorf("unable to read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid %s: %w", cm.path, err)
	}
	if err := cfg.Validate(); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid %s: %w", cm.path, err)
	}
	cm.cfg = cfg
	cm.loaded = true
	cm.mu.Unlock()
	return nil
}

// Save writes the configuration to disk through a temporary file.
func (cm *ConfigManager) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	bytes, err := json.MarshalIndent(cm.cfg, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := cm.path + ".tmp"
	if err := os.WriteFile(tmpPath, bytes, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, cm.path)
}

// Get returns a copy of the current configuration.  Callers must treat the
// returned Config as immutable.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.cfg
}

// Interval returns the delay between scans.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Validate checks values that cannot be caught by unmarshalling.
func (c Config) Validate() error {
	var errs []error
	if _, err := hal.ParseBackendType(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}
	if c.IntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("interval_ms must be positive, got %d", c.IntervalMs))
	}
	if c.Scans < 0 {
		errs = append(errs, fmt.Errorf("scans must not be negative, got %d", c.Scans))
	}
	if len(c.Nets) == 0 {
		errs = append(errs, errors.New("no nets configured"))
	}
	drives := make(map[hal.Pin]bool)
	for _, n := range c.Nets {
		drives[n.Drive] = true
	}
	for i, n := range c.Nets {
		if drives[n.Sense] {
			errs = append(errs, fmt.Errorf("net %d (%s): sense pin %d is also driven", i, n.Name, n.Sense))
		}
		if !n.Drive.Valid() || !n.Sense.Valid() {
			errs = append(errs, fmt.Errorf("net %d (%s): pins must be below %d", i, n.Name, hal.MaxPins))
		}
		if n.Drive == n.Sense {
			errs = append(errs, fmt.Errorf("net %d (%s): drive and sense are both pin %d", i, n.Name, n.Drive))
		}
		if n.Expect != ExpectClosed && n.Expect != ExpectOpen {
			errs = append(errs, fmt.Errorf("net %d (%s): unknown expectation %q", i, n.Name, n.Expect))
		}
	}
	for _, rc := range c.Reports {
		switch strings.ToLower(rc.Type) {
		case "log", "json":
		default:
			errs = append(errs, fmt.Errorf("unknown report type %q", rc.Type))
		}
	}
	return errors.Join(errs...)
}
