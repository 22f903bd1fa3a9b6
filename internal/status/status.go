// Package status provides a thread-safe status tracker for the rack-io daemon.
// It is designed to be read by HTTP handlers and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rack-io/internal/input"
	"github.com/sweeney/rack-io/internal/output"
)

// InputChannel is the tracked state of one input channel.
type InputChannel struct {
	Type        input.Type
	Invert      bool
	Disabled    bool
	LastEvent   input.Event
	LastEventAt time.Time
	Events      uint64
}

// OutputChannel is the tracked state of one output channel.
type OutputChannel struct {
	Type         output.Type
	Interlock    uint8
	TimerSecs    uint16
	Level        output.Level
	LastChangeAt time.Time
	Changes      uint64
}

// Counts accumulates totals since startup.
type Counts struct {
	InputEvents   uint64
	OutputChanges uint64
	Commands      uint64
	BadCommands   uint64
}

// Config contains daemon configuration for display.
type Config struct {
	Device        string
	PollMs        int64
	HeartbeatSecs int64
	Broker        string
	HTTPPort      string
	Driver        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Inputs        [input.Count]InputChannel
	Outputs       [output.Count]OutputChannel
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// ConfigureInput records the configuration of an input channel.
// Called once at startup and again if the type changes at runtime.
func (t *Tracker) ConfigureInput(ch uint8, typ input.Type, invert, disabled bool) {
	if int(ch) >= input.Count {
		return
	}
	t.mu.Lock()
	t.snap.Inputs[ch].Type = typ
	t.snap.Inputs[ch].Invert = invert
	t.snap.Inputs[ch].Disabled = disabled
	t.mu.Unlock()
}

// ConfigureOutput records the configuration of an output channel.
func (t *Tracker) ConfigureOutput(ch uint8, typ output.Type, interlock uint8, timerSecs uint16) {
	if int(ch) >= output.Count {
		return
	}
	t.mu.Lock()
	t.snap.Outputs[ch].Type = typ
	t.snap.Outputs[ch].Interlock = interlock
	t.snap.Outputs[ch].TimerSecs = timerSecs
	t.mu.Unlock()
}

// RecordInputEvent records an emitted input event.
// Called from runLoop whenever the input engine fires.
func (t *Tracker) RecordInputEvent(ch uint8, event input.Event, at time.Time) {
	if int(ch) >= input.Count {
		return
	}
	t.mu.Lock()
	t.snap.Inputs[ch].LastEvent = event
	t.snap.Inputs[ch].LastEventAt = at
	t.snap.Inputs[ch].Events++
	t.snap.Counts.InputEvents++
	t.mu.Unlock()
}

// RecordOutputChange records an applied output level change.
func (t *Tracker) RecordOutputChange(ch uint8, level output.Level, at time.Time) {
	if int(ch) >= output.Count {
		return
	}
	t.mu.Lock()
	t.snap.Outputs[ch].Level = level
	t.snap.Outputs[ch].LastChangeAt = at
	t.snap.Outputs[ch].Changes++
	t.snap.Counts.OutputChanges++
	t.mu.Unlock()
}

// RecordCommand counts a received broker command. Rejected payloads
// count separately so bad senders show up in the status page.
func (t *Tracker) RecordCommand(ok bool) {
	t.mu.Lock()
	if ok {
		t.snap.Counts.Commands++
	} else {
		t.snap.Counts.BadCommands++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
