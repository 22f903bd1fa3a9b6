// Package expander reads and drives the 16-bit I/O banks behind the
// engines. The real implementations use an MCP23017 I/O expander over I2C
// or Linux GPIO character-device lines; the fake allows testing without
// hardware.
package expander

// Bank is a pair of 16-bit I/O banks: one sampled for the input engine,
// one driven by the output engine.
type Bank interface {
	// Read samples all 16 input lines. Bit i is the raw logic level of
	// input channel i (1 = inactive/HIGH).
	Read() (uint16, error)

	// Write drives all 16 output lines from the bit pattern.
	Write(value uint16) error

	// Close releases hardware resources.
	Close() error
}

// Default I2C location of the input and output MCP23017 chips.
const (
	DefaultBus        = 1
	DefaultInputAddr  = 0x20
	DefaultOutputAddr = 0x21
)
