//go:build !linux || !(arm || arm64) || disablegpio

package hal

// DefaultPlatform returns the placeholder primitives.  On a Raspberry Pi
// build (linux/arm without the "disablegpio" tag) platform_periph.go
// provides a periph.io implementation instead.
func DefaultPlatform() Platform { return placeholderPlatform{} }
