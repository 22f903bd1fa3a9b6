package input

// Quadrature decoder tables. Each rotary pair produces a 2-bit Gray-code
// symbol (second<<1 | first) on every sample; the tables advance a
// seven-state machine that only reports an event on the two transitions
// completing a full detent, so partial or reversed movement is silent.
// No debounce timing is applied; decoding is purely combinatorial.

// rotaryStates maps [current state][symbol] to the next state.
var rotaryStates = [7][4]state{
	// rotStart
	{rotStart, rotCWBegin, rotCCWBegin, rotStart},
	// rotCWFinal
	{rotCWNext, rotStart, rotCWFinal, rotStart},
	// rotCWBegin
	{rotCWNext, rotCWBegin, rotStart, rotStart},
	// rotCWNext
	{rotCWNext, rotCWBegin, rotCWFinal, rotStart},
	// rotCCWBegin
	{rotCCWNext, rotStart, rotCCWBegin, rotStart},
	// rotCCWFinal
	{rotCCWNext, rotCCWFinal, rotStart, rotStart},
	// rotCCWNext
	{rotCCWNext, rotCCWFinal, rotCCWBegin, rotStart},
}

// rotaryEvents maps [current state][symbol] to the event reported for the
// transition: LOW for a completed clockwise detent, HIGH for
// counter-clockwise.
var rotaryEvents = [7][4]Event{
	// rotStart
	{NoEvent, NoEvent, NoEvent, NoEvent},
	// rotCWFinal
	{NoEvent, NoEvent, NoEvent, LowEvent},
	// rotCWBegin
	{NoEvent, NoEvent, NoEvent, NoEvent},
	// rotCWNext
	{NoEvent, NoEvent, NoEvent, NoEvent},
	// rotCCWBegin
	{NoEvent, NoEvent, NoEvent, NoEvent},
	// rotCCWFinal
	{NoEvent, NoEvent, NoEvent, HighEvent},
	// rotCCWNext
	{NoEvent, NoEvent, NoEvent, NoEvent},
}
