package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Device        string           `json:"device"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	MQTT          MQTTStatus       `json:"mqtt"`
	Counts        CountsJSON       `json:"event_counts"`
	Inputs        []InputChanJSON  `json:"inputs"`
	Outputs       []OutputChanJSON `json:"outputs"`
	Config        ConfigJSON       `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	InputEvents   uint64 `json:"input_events"`
	OutputChanges uint64 `json:"output_changes"`
	Commands      uint64 `json:"commands"`
	BadCommands   uint64 `json:"bad_commands"`
}

// InputChanJSON is the JSON representation of one input channel.
type InputChanJSON struct {
	Channel     uint8  `json:"channel"`
	Type        string `json:"type"`
	Invert      bool   `json:"invert,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	LastEvent   string `json:"last_event,omitempty"`
	LastEventAt string `json:"last_event_at,omitempty"`
	Events      uint64 `json:"events"`
}

// OutputChanJSON is the JSON representation of one output channel.
type OutputChanJSON struct {
	Channel      uint8  `json:"channel"`
	Type         string `json:"type"`
	Interlock    uint8  `json:"interlock"`
	TimerSecs    uint16 `json:"timer_secs,omitempty"`
	State        string `json:"state"`
	LastChangeAt string `json:"last_change_at,omitempty"`
	Changes      uint64 `json:"changes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Device        string `json:"device"`
	PollMs        int64  `json:"poll_ms"`
	HeartbeatSecs int64  `json:"heartbeat_secs"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
	Driver        string `json:"driver"`
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	inputs := make([]InputChanJSON, len(snap.Inputs))
	for i, in := range snap.Inputs {
		inputs[i] = InputChanJSON{
			Channel:     uint8(i),
			Type:        in.Type.String(),
			Invert:      in.Invert,
			Disabled:    in.Disabled,
			LastEvent:   eventName(in),
			LastEventAt: stamp(in.LastEventAt),
			Events:      in.Events,
		}
	}

	outputs := make([]OutputChanJSON, len(snap.Outputs))
	for i, out := range snap.Outputs {
		outputs[i] = OutputChanJSON{
			Channel:      uint8(i),
			Type:         out.Type.String(),
			Interlock:    out.Interlock,
			TimerSecs:    out.TimerSecs,
			State:        out.Level.String(),
			LastChangeAt: stamp(out.LastChangeAt),
			Changes:      out.Changes,
		}
	}

	return StatusInner{
		Device:        snap.Config.Device,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     stamp(snap.StartTime),
		Timestamp:     stamp(snap.Now),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			InputEvents:   snap.Counts.InputEvents,
			OutputChanges: snap.Counts.OutputChanges,
			Commands:      snap.Counts.Commands,
			BadCommands:   snap.Counts.BadCommands,
		},
		Inputs:  inputs,
		Outputs: outputs,
		Config: ConfigJSON{
			Device:        snap.Config.Device,
			PollMs:        snap.Config.PollMs,
			HeartbeatSecs: snap.Config.HeartbeatSecs,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
			Driver:        snap.Config.Driver,
		},
	}
}

func eventName(in InputChannel) string {
	if in.Events == 0 {
		return ""
	}
	return in.LastEvent.String()
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
