//go:build linux

package expander

import (
	"fmt"

	"github.com/racerxdl/go-mcp23017"
)

// pinCount is the number of pins on one MCP23017.
const pinCount = 16

// MCP23017 drives a pair of MCP23017 expanders on the same I2C bus: one
// chip provides the input bank, the other the output bank, matching the
// usual rack wiring of separate input and output boards.
type MCP23017 struct {
	inputs  *mcp23017.Device
	outputs *mcp23017.Device
	shadow  uint16 // last value written to the output chip
}

// NewMCP23017 opens both chips and configures all 16 pins of the input
// chip as pulled-up inputs and all 16 pins of the output chip as outputs
// driven LOW.
func NewMCP23017(bus, inputAddr, outputAddr uint8) (*MCP23017, error) {
	in, err := mcp23017.Open(bus, inputAddr)
	if err != nil {
		return nil, fmt.Errorf("open input expander 0x%02x: %w", inputAddr, err)
	}
	out, err := mcp23017.Open(bus, outputAddr)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("open output expander 0x%02x: %w", outputAddr, err)
	}

	m := &MCP23017{inputs: in, outputs: out}

	for pin := uint8(0); pin < pinCount; pin++ {
		if err := in.PinMode(pin, mcp23017.INPUT); err != nil {
			m.Close()
			return nil, fmt.Errorf("input pin %d mode: %w", pin, err)
		}
		// Pull-ups so open (inactive) contacts read HIGH.
		if err := in.SetPullUp(pin, true); err != nil {
			m.Close()
			return nil, fmt.Errorf("input pin %d pull-up: %w", pin, err)
		}
		if err := out.PinMode(pin, mcp23017.OUTPUT); err != nil {
			m.Close()
			return nil, fmt.Errorf("output pin %d mode: %w", pin, err)
		}
		if err := out.DigitalWrite(pin, mcp23017.PinLevel(false)); err != nil {
			m.Close()
			return nil, fmt.Errorf("output pin %d init: %w", pin, err)
		}
	}

	return m, nil
}

// Read samples all 16 pins of the input chip.
func (m *MCP23017) Read() (uint16, error) {
	var value uint16
	for pin := uint8(0); pin < pinCount; pin++ {
		level, err := m.inputs.DigitalRead(pin)
		if err != nil {
			return 0, fmt.Errorf("read input pin %d: %w", pin, err)
		}
		if bool(level) {
			value |= 1 << pin
		}
	}
	return value, nil
}

// Write drives the output chip's pins, touching only the ones that changed
// since the previous write.
func (m *MCP23017) Write(value uint16) error {
	for pin := uint8(0); pin < pinCount; pin++ {
		bit := value >> pin & 1
		if m.shadow>>pin&1 == bit {
			continue
		}
		if err := m.outputs.DigitalWrite(pin, mcp23017.PinLevel(bit == 1)); err != nil {
			return fmt.Errorf("write output pin %d: %w", pin, err)
		}
	}
	m.shadow = value
	return nil
}

// Close releases both chips, driving all outputs LOW first so actuators
// are left in a safe state.
func (m *MCP23017) Close() error {
	var errs []error
	if m.outputs != nil {
		if err := m.Write(0); err != nil {
			errs = append(errs, err)
		}
		if err := m.outputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output expander: %w", err))
		}
	}
	if m.inputs != nil {
		if err := m.inputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input expander: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
