package ostinato

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Performance holds everything about playing a composition that is not part
// of the score itself: tempo, how many rewrite steps to derive, how to loop,
// and how sinks should map instruments. It is loaded from a yaml file and
// missing fields keep their defaults.
type Performance struct {
	BPM           float64       `yaml:"bpm"`
	TimeSignature TimeSignature `yaml:"time_signature"`
	// Steps is the number of parallel rewrite steps applied to the start
	// symbol before composing.
	Steps int `yaml:"steps"`
	// Seed seeds the production selection; 0 means deterministic first-match
	// selection.
	Seed   uint64 `yaml:"seed"`
	Looped bool   `yaml:"looped"`
	// LoopMeasures is the loop length; 0 means the whole composition,
	// rounded up to whole measures.
	LoopMeasures uint32 `yaml:"loop_measures"`
	// LookaheadBeats is how far ahead of the wall clock the scheduler
	// prepares sounds on each poll.
	LookaheadBeats Beat `yaml:"lookahead_beats"`
	// PollMillis is the scheduler polling period during playback.
	PollMillis int `yaml:"poll_millis"`
	// Programs maps instrument names to MIDI program numbers for the MIDI
	// sink. Unlisted instruments use program 0.
	Programs map[Instrument]uint8 `yaml:"programs"`
	// Percussion lists the instruments the MIDI sink routes to the
	// percussion channel.
	Percussion []Instrument `yaml:"percussion"`
}

// DefaultPerformance returns the performance used when no file is given: 60
// bpm common time, four deterministic rewrite steps, looping over the whole
// composition with a one beat lookahead polled every 500 ms.
func DefaultPerformance() Performance {
	return Performance{
		BPM:            60,
		TimeSignature:  CommonTime,
		Steps:          4,
		Looped:         true,
		LookaheadBeats: W(1),
		PollMillis:     500,
	}
}

// ParsePerformance unmarshals a yaml performance on top of the defaults.
func ParsePerformance(data []byte) (Performance, error) {
	p := DefaultPerformance()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Performance{}, fmt.Errorf("could not unmarshal performance: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Performance{}, err
	}
	return p, nil
}

// Validate checks the fields a scheduler cannot work without.
func (p *Performance) Validate() error {
	if p.BPM <= 0 {
		return fmt.Errorf("performance bpm must be positive, got %v", p.BPM)
	}
	if p.TimeSignature.BeatsPerMeasure == 0 || p.TimeSignature.BeatUnit == 0 {
		return fmt.Errorf("performance time signature %v is invalid", p.TimeSignature)
	}
	if p.Steps < 0 {
		return fmt.Errorf("performance steps must be non-negative, got %v", p.Steps)
	}
	if p.PollMillis <= 0 {
		return fmt.Errorf("performance poll period must be positive, got %v ms", p.PollMillis)
	}
	return nil
}

// LoopTime returns the loop length for the given composition: LoopMeasures
// if set, otherwise the composition's duration rounded up to whole measures.
func (p *Performance) LoopTime(c *Composition) MusicTime {
	if p.LoopMeasures > 0 {
		return Measures(p.LoopMeasures)
	}
	d := c.Duration()
	if !d.Beat.IsZero() {
		return Measures(d.Measure + 1)
	}
	return d
}
