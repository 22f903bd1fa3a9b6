package input

import "github.com/sweeney/rack-io/internal/tick"

// channel holds the static configuration and runtime state for one input.
type channel struct {
	typ      Type
	invert   bool
	disabled bool

	state   state
	clicks  uint8
	elapsed uint32 // ms spent in the current state
}

// Engine advances the per-channel state machines on every Process call and
// reports classified events through its callback. It is single-threaded by
// contract: all methods must be invoked from the same polling loop.
type Engine struct {
	ch    [Count]channel
	ticks tick.Accumulator
	cb    Callback
}

// New creates an engine with every channel set to defaultType, not
// inverted, enabled, and idle (signal HIGH, zero clicks).
func New(cb Callback, defaultType Type) *Engine {
	e := &Engine{cb: cb}
	for i := range e.ch {
		e.ch[i].typ = defaultType
	}
	return e
}

// Channel indices passed to the accessors and to Query are a caller
// precondition: they must be in [0, Count). The engine does not range-check
// them.

// Type returns the configured type of a channel.
func (e *Engine) Type(ch uint8) Type { return e.ch[ch].typ }

// SetType reconfigures a channel's type and resets its runtime state, so
// the machine starts over from idle under the new interpretation.
func (e *Engine) SetType(ch uint8, t Type) {
	c := &e.ch[ch]
	c.typ = t
	c.state = isHigh
	c.clicks = 0
	c.elapsed = 0
}

// Invert returns the channel's invert flag.
func (e *Engine) Invert(ch uint8) bool { return e.ch[ch].invert }

// SetInvert sets the channel's invert flag.
func (e *Engine) SetInvert(ch uint8, invert bool) { e.ch[ch].invert = invert }

// Disabled returns whether the channel is excluded from processing.
func (e *Engine) Disabled(ch uint8) bool { return e.ch[ch].disabled }

// SetDisabled sets the channel's disabled flag. A disabled channel is
// skipped entirely: its state machine freezes in place and it produces no
// events until re-enabled.
func (e *Engine) SetDisabled(ch uint8, disabled bool) { e.ch[ch].disabled = disabled }

// Process takes one sample of all 16 raw input levels (bit i = channel i,
// 1 = inactive/HIGH before inversion) and the current millisecond counter,
// advances every enabled channel, and delivers any resulting events to the
// callback before returning. The id is opaque to the engine and handed
// straight back to the callback.
func (e *Engine) Process(id uint8, sample uint16, now uint32) {
	delta := e.ticks.Delta(now)

	var events [Count]Event

	// Rotary channels are consumed in pairs and security channels in
	// quads, in index order, skipping channels of other types.
	rotaryPending := false
	var rotaryFirst uint8
	var secValues [4]uint8
	secCount := 0

	for i := 0; i < Count; i++ {
		c := &e.ch[i]
		if c.disabled {
			continue
		}
		c.elapsed += delta

		switch c.typ {
		case TypeRotary:
			v := effectiveLevel(sample, uint8(i), c.invert)
			if !rotaryPending {
				rotaryFirst = v
				rotaryPending = true
				continue
			}
			rotaryPending = false
			// Gray-code symbol from the pair; the second channel
			// carries the decoder state and reports the events.
			sym := v<<1 | rotaryFirst
			events[i] = rotaryEvents[c.state][sym]
			c.state = rotaryStates[c.state][sym]

		case TypeSecurity:
			// Security readings are taken raw; only the last
			// channel's invert flag matters (it selects
			// normally-open vs normally-closed wiring).
			secValues[secCount] = rawLevel(sample, uint8(i))
			secCount++
			if secCount < 4 {
				continue
			}
			secCount = 0
			s := classifySecurity(secValues, c.invert)
			if s != c.state {
				c.state = s
				c.elapsed = 0
				events[i] = securityEvent(s)
			}

		default:
			low := effectiveLevel(sample, uint8(i), c.invert) == 0
			events[i] = stepDiscrete(c, low)
		}
	}

	if e.cb == nil {
		return
	}
	for i := 0; i < Count; i++ {
		if events[i] != NoEvent {
			e.cb(id, uint8(i), e.ch[i].typ, events[i])
		}
	}
}

// stepDiscrete advances the five-state debounce machine used by BUTTON,
// CONTACT, PRESS, SWITCH and TOGGLE channels. low is the effective
// (inversion-applied) level of the sample.
func stepDiscrete(c *channel, low bool) Event {
	switch c.state {
	case isHigh:
		c.clicks = 0
		if low {
			c.state = debounceLow
			c.elapsed = 0
		}

	case debounceLow:
		if !low {
			// Bounced back before the debounce expired: a glitch.
			c.state = isHigh
			c.elapsed = 0
		} else if c.elapsed > debounceLowMs(c.typ) {
			c.state = isLow
			c.elapsed = 0
			// Buttons report clicks on release, everything else
			// reports the transition now.
			if c.typ != TypeButton {
				return LowEvent
			}
		}

	case isLow:
		if !low {
			c.state = debounceHigh
			c.elapsed = 0
		} else if c.typ == TypeButton && c.clicks != holdClicks && c.elapsed > buttonHoldMs {
			c.clicks = holdClicks
			return HoldEvent
		}

	case debounceHigh:
		if low {
			// Glitch on the release edge.
			c.state = isLow
			c.elapsed = 0
		} else if c.elapsed > debounceHighMs(c.typ) {
			if c.typ != TypeButton {
				c.state = isHigh
				c.elapsed = 0
				// PRESS only reports HIGH -> LOW transitions.
				if c.typ != TypePress {
					return HighEvent
				}
			} else if c.clicks == holdClicks {
				c.state = isHigh
				return ReleaseEvent
			} else {
				if c.clicks < MaxClicks {
					c.clicks++
				}
				c.state = awaitMulti
				c.elapsed = 0
			}
		}

	case awaitMulti:
		if low {
			// Another click started.
			c.state = debounceLow
			c.elapsed = 0
		} else if c.elapsed > buttonMultiClickMs {
			c.state = isHigh
			return Event(c.clicks)
		}
	}

	return NoEvent
}

// Query re-publishes the current stable classification of a single channel
// through the callback without advancing any state. Only CONTACT and SWITCH
// channels (stable HIGH/LOW, suppressed mid-debounce) and the last channel
// of a security quad respond; other types and disabled channels are
// skipped. Repeated queries with no intervening Process yield the same
// callback payload.
func (e *Engine) Query(id, ch uint8) {
	e.publishState(id, ch)
}

// QueryAll queries every channel in ascending index order.
func (e *Engine) QueryAll(id uint8) {
	for i := uint8(0); i < Count; i++ {
		e.publishState(id, i)
	}
}

func (e *Engine) publishState(id, ch uint8) {
	c := &e.ch[ch]
	if c.disabled || e.cb == nil {
		return
	}
	switch c.typ {
	case TypeContact, TypeSwitch:
		switch c.state {
		case isHigh:
			e.cb(id, ch, c.typ, HighEvent)
		case isLow:
			e.cb(id, ch, c.typ, LowEvent)
		}
	case TypeSecurity:
		if !e.securityLast(ch) {
			return
		}
		if ev := securityEvent(c.state); ev != NoEvent {
			e.cb(id, ch, c.typ, ev)
		}
	}
}

// securityLast reports whether ch is the fourth member of its security
// quad, counting enabled SECURITY channels in index order.
func (e *Engine) securityLast(ch uint8) bool {
	n := 0
	for i := uint8(0); i < Count; i++ {
		c := &e.ch[i]
		if c.typ != TypeSecurity || c.disabled {
			continue
		}
		if i == ch {
			return n%4 == 3
		}
		n++
	}
	return false
}

// rawLevel extracts channel ch's bit from the sample.
func rawLevel(sample uint16, ch uint8) uint8 {
	return uint8(sample>>ch) & 1
}

// effectiveLevel applies the channel's invert flag to its raw bit.
func effectiveLevel(sample uint16, ch uint8, invert bool) uint8 {
	v := rawLevel(sample, ch)
	if invert {
		v ^= 1
	}
	return v
}

func debounceLowMs(t Type) uint32 {
	switch t {
	case TypeButton:
		return buttonDebounceLowMs
	case TypeRotary:
		return rotaryDebounceLowMs
	default:
		return otherDebounceLowMs
	}
}

func debounceHighMs(t Type) uint32 {
	switch t {
	case TypeButton:
		return buttonDebounceHighMs
	case TypeRotary:
		return rotaryDebounceHighMs
	default:
		return otherDebounceHighMs
	}
}
