package input

import "testing"

// allHigh is the idle sample: every channel inactive.
const allHigh = uint16(0xFFFF)

// fired records one callback invocation.
type fired struct {
	id      uint8
	channel uint8
	typ     Type
	event   Event
}

// recorder collects callback invocations for assertions.
type recorder struct {
	events []fired
}

func (r *recorder) callback(id, channel uint8, t Type, event Event) {
	r.events = append(r.events, fired{id, channel, t, event})
}

func (r *recorder) reset() { r.events = nil }

// run feeds the sample repeatedly in 5 ms steps until ms milliseconds have
// elapsed, advancing *now.
func run(e *Engine, sample uint16, now *uint32, ms uint32) {
	const step = 5
	end := *now + ms
	for *now < end {
		*now += step
		if *now > end {
			*now = end
		}
		e.Process(7, sample, *now)
	}
}

// newTestEngine returns a primed engine: one idle sample has been processed
// so the tick accumulator is warm.
func newTestEngine(t *testing.T, defaultType Type) (*Engine, *recorder, uint32) {
	t.Helper()
	rec := &recorder{}
	e := New(rec.callback, defaultType)
	now := uint32(0)
	e.Process(7, allHigh, now)
	if len(rec.events) != 0 {
		t.Fatalf("expected no events from idle sample, got %v", rec.events)
	}
	return e, rec, now
}

func lowBit(ch uint8) uint16 { return allHigh &^ (1 << ch) }

func TestNewDefaultsAllChannels(t *testing.T) {
	e := New(nil, TypeToggle)
	for i := uint8(0); i < Count; i++ {
		if e.Type(i) != TypeToggle {
			t.Errorf("channel %d: expected toggle, got %v", i, e.Type(i))
		}
		if e.Invert(i) {
			t.Errorf("channel %d: expected invert off", i)
		}
		if e.Disabled(i) {
			t.Errorf("channel %d: expected enabled", i)
		}
	}
}

func TestSwitchLowThenHighEvents(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	run(e, lowBit(3), &now, 60) // past the 50 ms low debounce
	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	got := rec.events[0]
	if got.channel != 3 || got.typ != TypeSwitch || got.event != LowEvent {
		t.Errorf("expected LOW on channel 3, got %+v", got)
	}
	if got.id != 7 {
		t.Errorf("expected id 7, got %d", got.id)
	}

	// Holding LOW produces nothing further.
	rec.reset()
	run(e, lowBit(3), &now, 500)
	if len(rec.events) != 0 {
		t.Errorf("expected no events while stable LOW, got %v", rec.events)
	}

	run(e, allHigh, &now, 110) // past the 100 ms high debounce
	if len(rec.events) != 1 || rec.events[0].event != HighEvent {
		t.Fatalf("expected HIGH event, got %v", rec.events)
	}
}

func TestContactAndToggleReportBothEdges(t *testing.T) {
	for _, typ := range []Type{TypeContact, TypeToggle} {
		e, rec, now := newTestEngine(t, typ)

		run(e, lowBit(0), &now, 60)
		run(e, allHigh, &now, 110)

		if len(rec.events) != 2 {
			t.Fatalf("%v: expected 2 events, got %v", typ, rec.events)
		}
		if rec.events[0].event != LowEvent || rec.events[1].event != HighEvent {
			t.Errorf("%v: expected LOW then HIGH, got %v", typ, rec.events)
		}
	}
}

func TestPressOnlyReportsLow(t *testing.T) {
	e, rec, now := newTestEngine(t, TypePress)

	run(e, lowBit(5), &now, 60)
	run(e, allHigh, &now, 110)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	if rec.events[0].event != LowEvent {
		t.Errorf("expected LOW only, got %v", rec.events)
	}
}

func TestGlitchShorterThanDebounceIsDropped(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	// 10 ms blip, well under the 50 ms debounce.
	run(e, lowBit(0), &now, 10)
	run(e, allHigh, &now, 300)

	if len(rec.events) != 0 {
		t.Errorf("expected glitch to be absorbed, got %v", rec.events)
	}
}

func TestReleaseGlitchIsDropped(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	run(e, lowBit(0), &now, 60)
	rec.reset()

	// Bounce HIGH for 10 ms mid-release, then settle LOW again.
	run(e, allHigh, &now, 10)
	run(e, lowBit(0), &now, 300)

	if len(rec.events) != 0 {
		t.Errorf("expected release glitch to be absorbed, got %v", rec.events)
	}
}

func TestButtonSingleClick(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeButton)

	run(e, lowBit(2), &now, 40)  // press, past 15 ms debounce
	run(e, allHigh, &now, 40)    // release, past 30 ms debounce
	run(e, allHigh, &now, 210)   // multi-click window expires

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	if rec.events[0].event != Event(1) {
		t.Errorf("expected single click, got %v", rec.events[0].event)
	}
}

func TestButtonMultiClick(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeButton)

	for i := 0; i < 3; i++ {
		run(e, lowBit(0), &now, 40)
		run(e, allHigh, &now, 40)
	}
	run(e, allHigh, &now, 210)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	if rec.events[0].event != Event(3) {
		t.Errorf("expected triple click, got %v", rec.events[0].event)
	}
}

func TestButtonClickCountCapped(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeButton)

	for i := 0; i < 8; i++ {
		run(e, lowBit(0), &now, 40)
		run(e, allHigh, &now, 40)
	}
	run(e, allHigh, &now, 210)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	if rec.events[0].event != Event(MaxClicks) {
		t.Errorf("expected count capped at %d, got %v", MaxClicks, rec.events[0].event)
	}
}

func TestButtonHoldAndRelease(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeButton)

	run(e, lowBit(0), &now, 600) // past debounce + 500 ms hold
	if len(rec.events) != 1 || rec.events[0].event != HoldEvent {
		t.Fatalf("expected exactly one HOLD, got %v", rec.events)
	}

	// Keep holding: HOLD must not repeat.
	run(e, lowBit(0), &now, 2000)
	if len(rec.events) != 1 {
		t.Fatalf("HOLD repeated while held: %v", rec.events)
	}

	rec.reset()
	run(e, allHigh, &now, 40)
	if len(rec.events) != 1 || rec.events[0].event != ReleaseEvent {
		t.Fatalf("expected RELEASE, got %v", rec.events)
	}

	// No click-count event follows a hold.
	run(e, allHigh, &now, 400)
	if len(rec.events) != 1 {
		t.Errorf("expected no further events after RELEASE, got %v", rec.events)
	}
}

func TestInvertFlipsSense(t *testing.T) {
	rec := &recorder{}
	e := New(rec.callback, TypeSwitch)
	e.SetInvert(4, true)

	// With invert set, a raw 0 bit is the idle (HIGH) level.
	idle := lowBit(4)
	now := uint32(0)
	e.Process(7, idle, now)
	run(e, idle, &now, 200)
	if len(rec.events) != 0 {
		t.Fatalf("expected no events at inverted idle, got %v", rec.events)
	}

	run(e, allHigh, &now, 60) // raw 1 = effective LOW
	if len(rec.events) != 1 || rec.events[0].event != LowEvent {
		t.Errorf("expected LOW on inverted channel, got %v", rec.events)
	}
}

func TestDisabledChannelFreezes(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)
	e.SetDisabled(0, true)

	run(e, lowBit(0), &now, 500)
	if len(rec.events) != 0 {
		t.Fatalf("disabled channel produced events: %v", rec.events)
	}

	// Re-enabled mid-LOW: the machine resumes from its frozen state and
	// debounces as usual.
	e.SetDisabled(0, false)
	run(e, lowBit(0), &now, 60)
	if len(rec.events) != 1 || rec.events[0].event != LowEvent {
		t.Errorf("expected LOW after re-enable, got %v", rec.events)
	}
}

func TestSetTypeResetsRuntimeState(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	run(e, lowBit(0), &now, 60)
	if len(rec.events) != 1 {
		t.Fatalf("expected LOW first, got %v", rec.events)
	}
	rec.reset()

	// Retyping resets to idle, so the still-LOW signal re-debounces and
	// reports LOW again.
	e.SetType(0, TypeContact)
	run(e, lowBit(0), &now, 60)
	if len(rec.events) != 1 || rec.events[0].event != LowEvent {
		t.Errorf("expected fresh LOW after SetType, got %v", rec.events)
	}
}

func TestEventsDeliveredInChannelOrder(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	sample := allHigh &^ (1 << 9) &^ (1 << 2) &^ (1 << 14)
	run(e, sample, &now, 60)

	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %v", rec.events)
	}
	want := []uint8{2, 9, 14}
	for i, ev := range rec.events {
		if ev.channel != want[i] {
			t.Errorf("event %d: expected channel %d, got %d", i, want[i], ev.channel)
		}
	}
}

func TestStableLevelProducesNoFurtherEvents(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeSwitch)

	run(e, lowBit(0), &now, 60)
	rec.reset()

	// A long stretch of constant level stays silent.
	run(e, lowBit(0), &now, 10000)
	if len(rec.events) != 0 {
		t.Errorf("expected silence on constant level, got %v", rec.events)
	}
}

func TestQueryContactRepublishesStableState(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeContact)

	e.Query(9, 0)
	if len(rec.events) != 1 || rec.events[0].event != HighEvent || rec.events[0].id != 9 {
		t.Fatalf("expected HIGH from idle query, got %v", rec.events)
	}

	// Idempotent: same answer again.
	e.Query(9, 0)
	if len(rec.events) != 2 || rec.events[1].event != HighEvent {
		t.Fatalf("expected repeated HIGH, got %v", rec.events)
	}

	rec.reset()
	run(e, lowBit(0), &now, 60)
	rec.reset()
	e.Query(9, 0)
	if len(rec.events) != 1 || rec.events[0].event != LowEvent {
		t.Errorf("expected LOW from query after transition, got %v", rec.events)
	}
}

func TestQuerySuppressedMidDebounce(t *testing.T) {
	e, rec, now := newTestEngine(t, TypeContact)

	run(e, lowBit(0), &now, 20) // mid low-debounce
	rec.reset()
	e.Query(9, 0)
	if len(rec.events) != 0 {
		t.Errorf("expected no answer mid-debounce, got %v", rec.events)
	}
}

func TestQueryIgnoresButtonAndDisabled(t *testing.T) {
	e, rec, _ := newTestEngine(t, TypeButton)

	e.Query(9, 0)
	if len(rec.events) != 0 {
		t.Errorf("button query should be silent, got %v", rec.events)
	}

	e.SetType(1, TypeContact)
	e.SetDisabled(1, true)
	e.Query(9, 1)
	if len(rec.events) != 0 {
		t.Errorf("disabled query should be silent, got %v", rec.events)
	}
}

func TestQueryAllAnswersInChannelOrder(t *testing.T) {
	e, rec, _ := newTestEngine(t, TypeButton)
	e.SetType(2, TypeContact)
	e.SetType(6, TypeSwitch)

	e.QueryAll(9)
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 answers, got %v", rec.events)
	}
	if rec.events[0].channel != 2 || rec.events[1].channel != 6 {
		t.Errorf("expected channels 2 then 6, got %v", rec.events)
	}
}
