package ostinato

import (
	"strings"
	"testing"
)

func TestParsePerformance(t *testing.T) {
	yml := `
bpm: 120
steps: 6
seed: 42
looped: true
loop_measures: 2
lookahead_beats: {num: 1, den: 2}
poll_millis: 250
programs:
  piano: 0
  bass: 33
percussion: [drums]
`
	p, err := ParsePerformance([]byte(yml))
	if err != nil {
		t.Fatalf("ParsePerformance failed: %v", err)
	}
	if p.BPM != 120 || p.Steps != 6 || p.Seed != 42 || !p.Looped {
		t.Fatalf("unexpected fields: %+v", p)
	}
	if p.TimeSignature != CommonTime {
		t.Fatalf("time signature should default to common time, got %v", p.TimeSignature)
	}
	if p.LookaheadBeats != B(1, 2) {
		t.Fatalf("lookahead: got %v, expected 1/2", p.LookaheadBeats)
	}
	if p.Programs["bass"] != 33 {
		t.Fatalf("programs: got %v", p.Programs)
	}
	if len(p.Percussion) != 1 || p.Percussion[0] != "drums" {
		t.Fatalf("percussion: got %v", p.Percussion)
	}
}

func TestParsePerformanceDefaults(t *testing.T) {
	p, err := ParsePerformance([]byte(""))
	if err != nil {
		t.Fatalf("empty performance should use defaults: %v", err)
	}
	d := DefaultPerformance()
	if p.BPM != d.BPM || p.Steps != d.Steps || p.PollMillis != d.PollMillis {
		t.Fatalf("got %+v, expected defaults %+v", p, d)
	}
}

func TestParsePerformanceInvalid(t *testing.T) {
	for _, yml := range []string{
		"bpm: -10",
		"time_signature: {beats_per_measure: 0, beat_unit: 4}",
		"steps: -1",
		"poll_millis: 0",
	} {
		if _, err := ParsePerformance([]byte(yml)); err == nil {
			t.Errorf("expected %q to fail validation", yml)
		}
	}
	if _, err := ParsePerformance([]byte("bpm: [nonsense")); err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("malformed yaml should fail to unmarshal, got %v", err)
	}
}

func TestPerformanceLoopTime(t *testing.T) {
	c := sineComposition()
	p := DefaultPerformance()
	if got := p.LoopTime(&c); got != (MusicTime{Measure: 1}) {
		t.Fatalf("2 beats should round up to one measure, got %v", got)
	}
	p.LoopMeasures = 3
	if got := p.LoopTime(&c); got != (MusicTime{Measure: 3}) {
		t.Fatalf("explicit loop measures should win, got %v", got)
	}
}
