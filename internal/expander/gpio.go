//go:build linux

package expander

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO implements Bank on plain GPIO character-device lines for boards
// wired without an I/O expander chip. Lines beyond the configured offsets
// read as HIGH (inactive) and ignore writes.
type GPIO struct {
	chip    *gpiocdev.Chip
	inputs  *gpiocdev.Lines
	outputs *gpiocdev.Lines
	nin     int
	nout    int
}

// NewGPIO requests the given line offsets from the chip (e.g. "gpiochip0")
// as pulled-up inputs and LOW-driven outputs. Either slice may be empty.
func NewGPIO(chipName string, inputLines, outputLines []int) (*GPIO, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	g := &GPIO{chip: chip, nin: len(inputLines), nout: len(outputLines)}

	if len(inputLines) > 0 {
		g.inputs, err = chip.RequestLines(inputLines, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			chip.Close()
			return nil, fmt.Errorf("request input lines: %w", err)
		}
	}
	if len(outputLines) > 0 {
		init := make([]int, len(outputLines))
		g.outputs, err = chip.RequestLines(outputLines, gpiocdev.AsOutput(init...))
		if err != nil {
			if g.inputs != nil {
				g.inputs.Close()
			}
			chip.Close()
			return nil, fmt.Errorf("request output lines: %w", err)
		}
	}

	return g, nil
}

// Read samples the input lines into the low bits of the result; unwired
// channels read HIGH.
func (g *GPIO) Read() (uint16, error) {
	value := ^uint16(0)
	if g.inputs == nil {
		return value, nil
	}

	vals := make([]int, g.nin)
	if err := g.inputs.Values(vals); err != nil {
		return 0, fmt.Errorf("read input lines: %w", err)
	}
	for i, v := range vals {
		if v == 0 {
			value &^= 1 << i
		}
	}
	return value, nil
}

// Write drives the output lines from the low bits of value.
func (g *GPIO) Write(value uint16) error {
	if g.outputs == nil {
		return nil
	}

	vals := make([]int, g.nout)
	for i := range vals {
		vals[i] = int(value >> i & 1)
	}
	if err := g.outputs.SetValues(vals); err != nil {
		return fmt.Errorf("write output lines: %w", err)
	}
	return nil
}

// Close releases the lines and the chip, driving outputs LOW first.
func (g *GPIO) Close() error {
	var errs []error
	if g.outputs != nil {
		if err := g.Write(0); err != nil {
			errs = append(errs, err)
		}
		if err := g.outputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output lines: %w", err))
		}
	}
	if g.inputs != nil {
		if err := g.inputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input lines: %w", err))
		}
	}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
