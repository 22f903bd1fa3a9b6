package input

import "testing"

// Security loop wiring patterns as raw levels on channels 0..3 (H=1).
const (
	secPatternNormal = uint16(0b0101) // H,L,H,L
	secPatternAlarm  = uint16(0b0001) // H,L,L,L
	secPatternTamper = uint16(0b0010) // L,H,L,L
	secPatternShort  = uint16(0b1101) // H,L,H,H
	secPatternJunk   = uint16(0b1111)
)

// secSample puts the 4-bit pattern on channels 0..3 with all other
// channels idle HIGH.
func secSample(pattern uint16) uint16 {
	return 0xFFF0 | pattern
}

func newSecurityEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(rec.callback, TypeSwitch)
	for ch := uint8(0); ch < 4; ch++ {
		e.SetType(ch, TypeSecurity)
	}
	return e, rec
}

func TestSecurityInitialClassificationIsReported(t *testing.T) {
	e, rec := newSecurityEngine(t)

	e.Process(7, secSample(secPatternNormal), 0)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %v", rec.events)
	}
	got := rec.events[0]
	if got.event != HighEvent {
		t.Errorf("expected HIGH (normal), got %v", got.event)
	}
	if got.channel != 3 || got.typ != TypeSecurity {
		t.Errorf("expected event on quad's last channel, got %+v", got)
	}
}

func TestSecurityTransitionsAreLevelTriggered(t *testing.T) {
	e, rec := newSecurityEngine(t)

	e.Process(7, secSample(secPatternNormal), 0)
	e.Process(7, secSample(secPatternAlarm), 10)
	e.Process(7, secSample(secPatternAlarm), 20) // unchanged: no repeat

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %v", rec.events)
	}
	if rec.events[0].event != HighEvent || rec.events[1].event != LowEvent {
		t.Errorf("expected HIGH then LOW, got %v", rec.events)
	}
}

func TestSecurityClassifications(t *testing.T) {
	cases := []struct {
		name    string
		pattern uint16
		want    Event
	}{
		{"normal", secPatternNormal, HighEvent},
		{"alarm", secPatternAlarm, LowEvent},
		{"tamper", secPatternTamper, TamperEvent},
		{"short", secPatternShort, ShortEvent},
		{"fault", secPatternJunk, FaultEvent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, rec := newSecurityEngine(t)
			e.Process(7, secSample(tc.pattern), 0)
			if len(rec.events) != 1 || rec.events[0].event != tc.want {
				t.Errorf("pattern %04b: expected %v, got %v", tc.pattern, tc.want, rec.events)
			}
		})
	}
}

func TestSecurityInvertSwapsNormalAndAlarm(t *testing.T) {
	e, rec := newSecurityEngine(t)
	e.SetInvert(3, true)

	e.Process(7, secSample(secPatternNormal), 0)
	if len(rec.events) != 1 || rec.events[0].event != LowEvent {
		t.Fatalf("expected normal pattern to read as alarm, got %v", rec.events)
	}

	e.Process(7, secSample(secPatternAlarm), 10)
	if len(rec.events) != 2 || rec.events[1].event != HighEvent {
		t.Fatalf("expected alarm pattern to read as normal, got %v", rec.events)
	}

	// Tamper and short are unaffected by the swap.
	e.Process(7, secSample(secPatternTamper), 20)
	if len(rec.events) != 3 || rec.events[2].event != TamperEvent {
		t.Errorf("expected tamper unaffected, got %v", rec.events)
	}
}

func TestSecurityFaultRecovers(t *testing.T) {
	e, rec := newSecurityEngine(t)

	e.Process(7, secSample(secPatternJunk), 0)
	e.Process(7, secSample(secPatternNormal), 10)

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %v", rec.events)
	}
	if rec.events[0].event != FaultEvent || rec.events[1].event != HighEvent {
		t.Errorf("expected FAULT then HIGH, got %v", rec.events)
	}
}

func TestSecurityTwoQuads(t *testing.T) {
	rec := &recorder{}
	e := New(rec.callback, TypeSecurity)
	for ch := uint8(8); ch < Count; ch++ {
		e.SetType(ch, TypeSwitch)
	}

	// First quad normal, second quad alarm.
	sample := uint16(0xFF00) | secPatternNormal | secPatternAlarm<<4
	e.Process(7, sample, 0)

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %v", rec.events)
	}
	if rec.events[0].channel != 3 || rec.events[0].event != HighEvent {
		t.Errorf("first quad: expected HIGH on channel 3, got %+v", rec.events[0])
	}
	if rec.events[1].channel != 7 || rec.events[1].event != LowEvent {
		t.Errorf("second quad: expected LOW on channel 7, got %+v", rec.events[1])
	}
}

func TestSecurityQueryRepublishesClassification(t *testing.T) {
	e, rec := newSecurityEngine(t)

	// Before any sample there is nothing to report.
	e.QueryAll(9)
	if len(rec.events) != 0 {
		t.Fatalf("expected silence before classification, got %v", rec.events)
	}

	e.Process(7, secSample(secPatternShort), 0)
	rec.reset()

	e.Query(9, 3)
	e.Query(9, 3)
	if len(rec.events) != 2 {
		t.Fatalf("expected 2 answers, got %v", rec.events)
	}
	for _, ev := range rec.events {
		if ev.event != ShortEvent || ev.channel != 3 || ev.id != 9 {
			t.Errorf("expected SHORT on channel 3 id 9, got %+v", ev)
		}
	}

	// Only the quad's last channel answers.
	rec.reset()
	e.Query(9, 0)
	e.Query(9, 1)
	e.Query(9, 2)
	if len(rec.events) != 0 {
		t.Errorf("expected first three channels silent, got %v", rec.events)
	}
}
