//go:build gpio_hardware && !gpio_virtual

package hal

// DefaultBackend is the backend New constructs.
const DefaultBackend = BackendHardware
