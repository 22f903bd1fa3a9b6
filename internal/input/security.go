package input

// Security loop classification. A quad of channels carries a 4-wire
// resistor-network loop whose raw levels form one of four recognised
// patterns; anything else is a wiring fault. Classification is
// level-triggered: an event is only reported when the classified state
// differs from the one stored on the quad's last channel.

// classifySecurity matches the four raw readings against the fixed truth
// table. swap (the last channel's invert flag) exchanges NORMAL and ALARM
// to support normally-open loop wiring.
func classifySecurity(v [4]uint8, swap bool) state {
	var s state
	switch v[0]<<3 | v[1]<<2 | v[2]<<1 | v[3] {
	case 0b1010: // H,L,H,L
		s = secNormal
	case 0b1000: // H,L,L,L
		s = secAlarm
	case 0b0100: // L,H,L,L
		s = secTamper
	case 0b1011: // H,L,H,H
		s = secShort
	default:
		s = secFault
	}
	if swap {
		switch s {
		case secNormal:
			s = secAlarm
		case secAlarm:
			s = secNormal
		}
	}
	return s
}

// securityEvent maps a classification to its event code. An unclassified
// channel (freshly configured, no sample seen yet) maps to NoEvent.
func securityEvent(s state) Event {
	switch s {
	case secNormal:
		return HighEvent
	case secAlarm:
		return LowEvent
	case secTamper:
		return TamperEvent
	case secShort:
		return ShortEvent
	case secFault:
		return FaultEvent
	}
	return NoEvent
}
