// Package output translates ON/OFF commands into physically safe actuator
// transitions: interlocked outputs are forced mutually exclusive with a
// settle delay between them, and timer outputs revert automatically. Like
// package input it is pure logic: no I/O, no goroutines, time injected as
// a millisecond counter.
package output

import (
	"fmt"

	"github.com/sweeney/rack-io/internal/tick"
)

// Count is the fixed number of output channels.
const Count = 16

// Type configures how commands to a channel are handled.
type Type uint8

const (
	TypeMotor Type = iota
	TypeRelay
	TypeTimer
)

// String returns the configuration name for the type.
func (t Type) String() string {
	switch t {
	case TypeMotor:
		return "motor"
	case TypeRelay:
		return "relay"
	case TypeTimer:
		return "timer"
	}
	return "unknown"
}

// ParseType converts a configuration name into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "motor":
		return TypeMotor, nil
	case "relay":
		return TypeRelay, nil
	case "timer":
		return TypeTimer, nil
	}
	return 0, fmt.Errorf("unknown output type %q", s)
}

// Level is an output's binary state.
type Level uint8

const (
	Off Level = 0
	On  Level = 1
)

// String returns "on" or "off".
func (l Level) String() string {
	if l == On {
		return "on"
	}
	return "off"
}

// Settle delay between deactivating an interlocked output and activating
// its partner. Motors get longer to spin down before reversal.
const (
	relayInterlockDelayMs = 500
	motorInterlockDelayMs = 2000
)

// DefaultTimerSecs is the initial auto-off duration for TIMER outputs.
const DefaultTimerSecs = 60

// Callback receives one call per actual level change, synchronously, and
// must not call back into the engine. The id is the one supplied with the
// command that caused the change, even when the change was applied later
// by an expiring delay.
type Callback func(id, channel uint8, t Type, level Level)

// channel holds configuration and runtime state for one output.
type channel struct {
	typ       Type
	interlock uint8 // partner channel; own index means no interlock
	timerSecs uint16

	current  Level
	next     Level  // level to apply when the delay expires
	originID uint8  // id that requested the pending transition
	elapsed  uint32 // ms since the delay was scheduled
	delay    uint32 // pending delay in ms; 0 means nothing pending
}

// Engine advances per-channel delay state on every Process call and applies
// commands through HandleCommand. Single-threaded by contract: all methods
// must be invoked from the same polling loop.
type Engine struct {
	ch    [Count]channel
	ticks tick.Accumulator
	cb    Callback
}

// New creates an engine with every channel set to defaultType, OFF, not
// interlocked and with the default timer duration.
func New(cb Callback, defaultType Type) *Engine {
	e := &Engine{cb: cb}
	for i := range e.ch {
		e.ch[i].typ = defaultType
		e.ch[i].interlock = uint8(i)
		e.ch[i].timerSecs = DefaultTimerSecs
	}
	return e
}

// Channel indices are a caller precondition: they must be in [0, Count).

// Type returns the configured type of a channel.
func (e *Engine) Type(ch uint8) Type { return e.ch[ch].typ }

// SetType reconfigures a channel's type and cancels any pending transition.
func (e *Engine) SetType(ch uint8, t Type) {
	c := &e.ch[ch]
	c.typ = t
	c.elapsed = 0
	c.delay = 0
}

// Interlock returns the channel's interlock partner (its own index when not
// interlocked).
func (e *Engine) Interlock(ch uint8) uint8 { return e.ch[ch].interlock }

// SetInterlock links ch to a partner channel; pass ch itself to remove the
// linkage.
func (e *Engine) SetInterlock(ch, partner uint8) { e.ch[ch].interlock = partner }

// Timer returns the auto-off duration in seconds for a TIMER channel.
func (e *Engine) Timer(ch uint8) uint16 { return e.ch[ch].timerSecs }

// SetTimer sets the auto-off duration in seconds.
func (e *Engine) SetTimer(ch uint8, secs uint16) { e.ch[ch].timerSecs = secs }

// State returns the channel's current level.
func (e *Engine) State(ch uint8) Level { return e.ch[ch].current }

// HandleCommand applies an ON/OFF command to a channel. Repeated identical
// commands are absorbed (no duplicate events) and a new command overwrites
// any pending delayed transition for the channel.
func (e *Engine) HandleCommand(id, ch uint8, command Level) {
	c := &e.ch[ch]

	if c.typ == TypeTimer {
		e.apply(id, ch, command)
		if command == On {
			// Schedule the auto-off; an explicit OFF cancels it.
			e.schedule(id, ch, Off, uint32(c.timerSecs)*1000)
		} else {
			c.delay = 0
		}
		return
	}

	if c.interlock != ch && command == On {
		// Force the partner off first. Only wait out the settle delay
		// if that was an actual change. If the partner was already
		// off there is no conflict and no reason for latency.
		if e.apply(id, c.interlock, Off) {
			e.schedule(id, ch, On, interlockDelayMs(c.typ))
			return
		}
	}

	// Last command wins: drop any still-pending delayed transition.
	c.delay = 0
	e.apply(id, ch, command)
}

// Process advances pending delays by the tick delta and applies any that
// have expired, attributing the resulting events to the id stored with the
// pending transition.
func (e *Engine) Process(now uint32) {
	delta := e.ticks.Delta(now)

	for i := range e.ch {
		c := &e.ch[i]
		c.elapsed += delta

		if c.delay > 0 && c.elapsed > c.delay {
			e.apply(c.originID, uint8(i), c.next)
			c.delay = 0
		}
	}
}

// apply changes a channel's level if it differs from the current one,
// reporting the change through the callback. It refuses to activate a
// channel whose interlocked partner is still ON. Returns whether a change
// was made.
func (e *Engine) apply(id, ch uint8, level Level) bool {
	c := &e.ch[ch]
	if c.current == level {
		return false
	}

	if c.interlock != ch && level == On && e.ch[c.interlock].current == On {
		return false
	}

	if e.cb != nil {
		e.cb(id, ch, c.typ, level)
	}
	c.current = level
	return true
}

// schedule records a pending transition to level after ms milliseconds,
// replacing any transition already pending for the channel.
func (e *Engine) schedule(id, ch uint8, level Level, ms uint32) {
	c := &e.ch[ch]
	c.elapsed = 0
	c.delay = ms
	c.originID = id
	c.next = level
}

func interlockDelayMs(t Type) uint32 {
	if t == TypeMotor {
		return motorInterlockDelayMs
	}
	return relayInterlockDelayMs
}
