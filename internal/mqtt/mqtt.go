// Package mqtt publishes classified I/O events and receives output
// commands, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/rack-io/internal/input"
	"github.com/sweeney/rack-io/internal/output"
)

// Topic layout, scoped by the configured device name:
//
//	stat/<device>/input   classified input events
//	stat/<device>/output  output level changes
//	stat/<device>/system  lifecycle events (startup, shutdown, heartbeat)
//	cmnd/<device>         inbound output commands and queries

// InputTopic returns the topic for input events.
func InputTopic(device string) string { return "stat/" + device + "/input" }

// OutputTopic returns the topic for output events.
func OutputTopic(device string) string { return "stat/" + device + "/output" }

// SystemTopic returns the topic for system lifecycle events.
func SystemTopic(device string) string { return "stat/" + device + "/system" }

// CommandTopic returns the topic commands are received on.
func CommandTopic(device string) string { return "cmnd/" + device }

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishInput sends a classified input event to the broker.
	PublishInput(event InputEvent) error

	// PublishOutput sends an output level change to the broker.
	PublishOutput(event OutputEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// PublishSystemRaw sends a pre-rendered JSON document on the system
	// topic, keeping the event's retention. Used for full status
	// snapshots built outside this package.
	PublishSystemRaw(event SystemEvent, payload []byte) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// InputEvent is a classified input event ready for publishing.
type InputEvent struct {
	Timestamp time.Time
	Channel   uint8
	Type      input.Type
	Event     input.Event
}

// OutputEvent is an output level change ready for publishing.
type OutputEvent struct {
	Timestamp time.Time
	Channel   uint8
	Type      output.Type
	Level     output.Level
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Retained  bool   // Whether the message should be retained by the broker
}

// Command is a decoded message from the command topic.
type Command struct {
	// Channel is nil for a broadcast query.
	Channel *uint8 `json:"channel"`

	// Command is "on", "off" or "query".
	Command string `json:"command"`
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}

	switch cmd.Command {
	case "on", "off":
		if cmd.Channel == nil {
			return Command{}, fmt.Errorf("command %q requires a channel", cmd.Command)
		}
	case "query":
		// Channel optional: absent means query everything.
	default:
		return Command{}, fmt.Errorf("unknown command %q", cmd.Command)
	}

	if cmd.Channel != nil && *cmd.Channel >= output.Count {
		return Command{}, fmt.Errorf("channel %d out of range [0,%d)", *cmd.Channel, output.Count)
	}
	return cmd, nil
}

// Level converts an on/off command into an output level.
func (c Command) Level() output.Level {
	if c.Command == "on" {
		return output.On
	}
	return output.Off
}

// InputPayload is the MQTT message payload for input events.
type InputPayload struct {
	Input InputPayloadInner `json:"input"`
}

// InputPayloadInner contains the input event details.
type InputPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Channel   uint8  `json:"channel"`
	Type      string `json:"type"`
	Event     string `json:"event"`
}

// FormatInputPayload creates the JSON payload for an input event.
func FormatInputPayload(event InputEvent) ([]byte, error) {
	payload := InputPayload{
		Input: InputPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Channel:   event.Channel,
			Type:      event.Type.String(),
			Event:     event.Event.String(),
		},
	}
	return json.Marshal(payload)
}

// OutputPayload is the MQTT message payload for output events.
type OutputPayload struct {
	Output OutputPayloadInner `json:"output"`
}

// OutputPayloadInner contains the output event details.
type OutputPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Channel   uint8  `json:"channel"`
	Type      string `json:"type"`
	State     string `json:"state"`
}

// FormatOutputPayload creates the JSON payload for an output event.
func FormatOutputPayload(event OutputEvent) ([]byte, error) {
	payload := OutputPayload{
		Output: OutputPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Channel:   event.Channel,
			Type:      event.Type.String(),
			State:     event.Level.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
