// Package config loads the daemon configuration from YAML: broker and HTTP
// settings, the I/O driver selection, and the per-channel input/output
// setup applied to the engines at startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/rack-io/internal/input"
	"github.com/sweeney/rack-io/internal/output"
)

// Config is the root configuration structure.
type Config struct {
	// Device names this controller; it scopes the MQTT topics.
	Device string `yaml:"device"`

	// PollMs is the sampling interval in milliseconds.
	PollMs int `yaml:"poll_ms"`

	// HeartbeatSecs is the heartbeat publish interval (0 disables).
	HeartbeatSecs int `yaml:"heartbeat_secs"`

	Broker string `yaml:"broker"`
	HTTP   string `yaml:"http"`

	IO      IOConfig        `yaml:"io"`
	Inputs  []InputChannel  `yaml:"inputs"`
	Outputs []OutputChannel `yaml:"outputs"`
}

// IOConfig selects and configures the I/O bank driver.
type IOConfig struct {
	// Driver is one of "mcp23017", "gpio" or "fake".
	Driver string `yaml:"driver"`

	// Bus and Address locate the MCP23017 on the I2C bus.
	Bus     uint8 `yaml:"bus"`
	Address uint8 `yaml:"address"`

	// Chip and the line offsets configure the gpio driver.
	Chip        string `yaml:"chip"`
	InputLines  []int  `yaml:"input_lines"`
	OutputLines []int  `yaml:"output_lines"`
}

// InputChannel configures one input engine channel.
type InputChannel struct {
	Channel  uint8  `yaml:"channel"`
	Type     string `yaml:"type"`
	Invert   bool   `yaml:"invert"`
	Disabled bool   `yaml:"disabled"`
}

// OutputChannel configures one output engine channel.
type OutputChannel struct {
	Channel uint8  `yaml:"channel"`
	Type    string `yaml:"type"`
	// Interlock links this channel to a partner; omitted means none.
	Interlock *uint8 `yaml:"interlock"`
	// TimerSecs overrides the auto-off duration for timer outputs.
	TimerSecs uint16 `yaml:"timer_secs"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device:        "rack-io",
		PollMs:        20,
		HeartbeatSecs: 900,
		Broker:        "tcp://127.0.0.1:1883",
		HTTP:          ":8080",
		IO: IOConfig{
			Driver:  "mcp23017",
			Bus:     1,
			Address: 0x20,
		},
	}
}

// Load reads and validates the YAML file at path, layered over the
// defaults. An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and type names without touching the engines.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMs)
	}
	switch c.IO.Driver {
	case "mcp23017", "gpio", "fake":
	default:
		return fmt.Errorf("unknown io driver %q", c.IO.Driver)
	}

	for _, in := range c.Inputs {
		if in.Channel >= input.Count {
			return fmt.Errorf("input channel %d out of range [0,%d)", in.Channel, input.Count)
		}
		if _, err := input.ParseType(in.Type); err != nil {
			return fmt.Errorf("input channel %d: %w", in.Channel, err)
		}
	}
	for _, out := range c.Outputs {
		if out.Channel >= output.Count {
			return fmt.Errorf("output channel %d out of range [0,%d)", out.Channel, output.Count)
		}
		if _, err := output.ParseType(out.Type); err != nil {
			return fmt.Errorf("output channel %d: %w", out.Channel, err)
		}
		if out.Interlock != nil && *out.Interlock >= output.Count {
			return fmt.Errorf("output channel %d: interlock %d out of range [0,%d)",
				out.Channel, *out.Interlock, output.Count)
		}
	}
	return nil
}

// ApplyInputs configures an input engine from the per-channel settings.
// Call only after Validate (or Load) has accepted the configuration.
func (c *Config) ApplyInputs(e *input.Engine) {
	for _, in := range c.Inputs {
		t, _ := input.ParseType(in.Type)
		e.SetType(in.Channel, t)
		e.SetInvert(in.Channel, in.Invert)
		e.SetDisabled(in.Channel, in.Disabled)
	}
}

// ApplyOutputs configures an output engine from the per-channel settings.
func (c *Config) ApplyOutputs(e *output.Engine) {
	for _, out := range c.Outputs {
		t, _ := output.ParseType(out.Type)
		e.SetType(out.Channel, t)
		if out.Interlock != nil {
			e.SetInterlock(out.Channel, *out.Interlock)
		}
		if out.TimerSecs > 0 {
			e.SetTimer(out.Channel, out.TimerSecs)
		}
	}
}
