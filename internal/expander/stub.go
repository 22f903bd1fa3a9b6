//go:build !linux

package expander

import "errors"

var errNotSupported = errors.New("expander: not supported on this platform (requires Linux)")

// MCP23017 is not available on non-Linux platforms.
type MCP23017 struct{}

// NewMCP23017 returns an error on non-Linux platforms.
func NewMCP23017(bus, inputAddr, outputAddr uint8) (*MCP23017, error) {
	return nil, errNotSupported
}

func (m *MCP23017) Read() (uint16, error) { return 0, errNotSupported }
func (m *MCP23017) Write(value uint16) error { return errNotSupported }
func (m *MCP23017) Close() error { return nil }

// GPIO is not available on non-Linux platforms.
type GPIO struct{}

// NewGPIO returns an error on non-Linux platforms.
func NewGPIO(chipName string, inputLines, outputLines []int) (*GPIO, error) {
	return nil, errNotSupported
}

func (g *GPIO) Read() (uint16, error) { return 0, errNotSupported }
func (g *GPIO) Write(value uint16) error { return errNotSupported }
func (g *GPIO) Close() error { return nil }
