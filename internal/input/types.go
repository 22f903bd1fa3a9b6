// Package input classifies raw 16-bit input samples into semantic events:
// debounced transitions, multi-click and hold detection, rotary encoder
// direction and security loop states. This package has NO external
// dependencies (no I/O, MQTT, OS, or time.Sleep). Time is always injected
// as a millisecond counter passed to Process.
package input

import "fmt"

// Count is the fixed number of input channels, matching the 16 pins of an
// MCP23017-style I/O expander.
const Count = 16

// Type configures how a channel's raw signal is interpreted.
type Type uint8

const (
	TypeButton Type = iota
	TypeContact
	TypePress
	TypeRotary
	TypeSecurity
	TypeSwitch
	TypeToggle
)

// String returns the configuration name for the type.
func (t Type) String() string {
	switch t {
	case TypeButton:
		return "button"
	case TypeContact:
		return "contact"
	case TypePress:
		return "press"
	case TypeRotary:
		return "rotary"
	case TypeSecurity:
		return "security"
	case TypeSwitch:
		return "switch"
	case TypeToggle:
		return "toggle"
	}
	return "unknown"
}

// ParseType converts a configuration name into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "button":
		return TypeButton, nil
	case "contact":
		return TypeContact, nil
	case "press":
		return TypePress, nil
	case "rotary":
		return TypeRotary, nil
	case "security":
		return TypeSecurity, nil
	case "switch":
		return TypeSwitch, nil
	case "toggle":
		return TypeToggle, nil
	}
	return 0, fmt.Errorf("unknown input type %q", s)
}

// Event identifies what happened on a channel. Values 1..MaxClicks report
// multi-click counts; the remaining codes follow the original firmware
// numbering so downstream consumers see stable values.
type Event uint8

const (
	NoEvent      Event = 0
	LowEvent     Event = 11
	HighEvent    Event = 12
	HoldEvent    Event = 13
	TamperEvent  Event = 14
	ShortEvent   Event = 15
	FaultEvent   Event = 16
	ReleaseEvent Event = 17
)

// String returns the event name used in published payloads.
func (e Event) String() string {
	switch e {
	case 1:
		return "single"
	case 2:
		return "double"
	case 3:
		return "triple"
	case 4:
		return "quad"
	case 5:
		return "penta"
	case LowEvent:
		return "low"
	case HighEvent:
		return "high"
	case HoldEvent:
		return "hold"
	case TamperEvent:
		return "tamper"
	case ShortEvent:
		return "short"
	case FaultEvent:
		return "fault"
	case ReleaseEvent:
		return "release"
	}
	return "none"
}

// Callback receives one call per channel that produced an event during
// Process, Query or QueryAll. Calls are made synchronously, in ascending
// channel order, before the engine method returns. The callback must not
// call back into the engine.
type Callback func(id, channel uint8, t Type, event Event)

// state tracks where a channel is in its machine. Discrete, rotary and
// security channels reuse the same field with different value sets.
type state uint8

// Discrete debounce states.
const (
	isHigh state = iota
	debounceLow
	isLow
	debounceHigh
	awaitMulti
)

// Security loop classifications, stored on the last channel of each quad.
// They start above the discrete range so a freshly (re)configured channel
// (state isHigh) always differs from its first classification and reports
// it immediately.
const (
	secNormal state = iota + 5
	secAlarm
	secTamper
	secShort
	secFault
)

// Rotary quadrature states, stored on the second channel of each pair.
const (
	rotStart state = iota
	rotCWFinal
	rotCWBegin
	rotCWNext
	rotCCWBegin
	rotCCWFinal
	rotCCWNext
)

// Debounce and multi-click timing in milliseconds. Buttons and rotary
// encoders need short debounce so fast clicks and rotations are not missed;
// everything else only reports simple transitions and can settle longer.
const (
	buttonDebounceLowMs  = 15
	buttonDebounceHighMs = 30
	rotaryDebounceLowMs  = 15
	rotaryDebounceHighMs = 30
	otherDebounceLowMs   = 50
	otherDebounceHighMs  = 100

	buttonMultiClickMs = 200
	buttonHoldMs       = 500
)

// MaxClicks caps the count reported in a multi-click event.
const MaxClicks = 5

// holdClicks marks a press that already reported HOLD, so the release is
// reported as RELEASE instead of a click count.
const holdClicks = 0x0F
