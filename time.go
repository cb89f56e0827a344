package ostinato

import (
	"errors"
	"fmt"
	"math"
)

type (
	// Beat is an exact, non-negative amount of beat units, stored as a
	// reduced rational Num/Den. The zero value is 0 beats. All the arithmetic
	// keeps the fraction reduced, so Beats can be compared for equality with
	// ==. Den is never 0 for a Beat constructed through B, W or the
	// arithmetic methods; the zero value is normalized on first use.
	Beat struct {
		Num uint32 `yaml:"num" json:"num"`
		Den uint32 `yaml:"den" json:"den"`
	}

	// MusicTime is either an absolute position or a duration in music: a
	// number of whole measures plus beats into the measure. For a normalized
	// MusicTime, Beat is in [0, beatsPerMeasure) of some TimeSignature; all
	// the signature-aware operations return normalized values. Durations
	// parsed from text (e.g. <6> in 4/4 time) may be denormalized until they
	// pass through Add or Normalize.
	MusicTime struct {
		Measure uint32 `yaml:"measure" json:"measure"`
		Beat    Beat   `yaml:"beat" json:"beat"`
	}

	// TimeSignature tells how many beats a measure has and which note value
	// is one beat. Since measure carry and borrow depend on it, the MusicTime
	// arithmetic takes the signature as an explicit parameter instead of
	// storing it in every MusicTime.
	TimeSignature struct {
		BeatsPerMeasure uint32 `yaml:"beats_per_measure" json:"beats_per_measure"`
		BeatUnit        uint32 `yaml:"beat_unit" json:"beat_unit"`
	}
)

// CommonTime is the 4/4 time signature.
var CommonTime = TimeSignature{BeatsPerMeasure: 4, BeatUnit: 4}

func (s TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", s.BeatsPerMeasure, s.BeatUnit)
}

// ErrTimeUnderflow is returned when a subtraction would produce a position
// before measure 0; measures are unsigned so such a time cannot exist.
var ErrTimeUnderflow = errors.New("music time subtraction underflows measure 0")

// fromSecondsPrecision is the fixed denominator used when rationalizing a
// floating point beat count, so that denominators cannot grow without bound.
const fromSecondsPrecision = 1000000

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func reduce(num, den uint64) Beat {
	if den == 0 {
		den = 1
	}
	g := gcd(num, den)
	return Beat{Num: uint32(num / g), Den: uint32(den / g)}
}

// B returns the beat num/den, reduced to lowest terms. A zero denominator is
// treated as 1.
func B(num, den uint32) Beat {
	return reduce(uint64(num), uint64(den))
}

// W returns n whole beats.
func W(n uint32) Beat {
	return Beat{Num: n, Den: 1}
}

func (b Beat) norm() (num, den uint64) {
	if b.Den == 0 {
		return uint64(b.Num), 1
	}
	return uint64(b.Num), uint64(b.Den)
}

func (b Beat) Add(o Beat) Beat {
	bn, bd := b.norm()
	on, od := o.norm()
	return reduce(bn*od+on*bd, bd*od)
}

// Sub returns b - o, or an error if o > b; Beats cannot be negative.
func (b Beat) Sub(o Beat) (Beat, error) {
	bn, bd := b.norm()
	on, od := o.norm()
	if on*bd > bn*od {
		return Beat{}, ErrTimeUnderflow
	}
	return reduce(bn*od-on*bd, bd*od), nil
}

func (b Beat) MulInt(n uint32) Beat {
	bn, bd := b.norm()
	return reduce(bn*uint64(n), bd)
}

// Cmp compares two beats, returning -1, 0 or 1.
func (b Beat) Cmp(o Beat) int {
	bn, bd := b.norm()
	on, od := o.norm()
	l, r := bn*od, on*bd
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (b Beat) IsZero() bool {
	return b.Num == 0
}

func (b Beat) Float() float64 {
	num, den := b.norm()
	return float64(num) / float64(den)
}

// MusicTime normalizes a raw beat count into whole measures plus the
// remaining beats, by floor division with the beats per measure.
func (b Beat) MusicTime(sig TimeSignature) MusicTime {
	num, den := b.norm()
	per := uint64(sig.BeatsPerMeasure)
	if per == 0 {
		return MusicTime{Beat: reduce(num, den)}
	}
	measures := num / (den * per)
	return MusicTime{
		Measure: uint32(measures),
		Beat:    reduce(num-measures*den*per, den),
	}
}

func (b Beat) String() string {
	num, den := b.norm()
	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

// Beats returns the position/duration of n whole beats in measure 0.
func Beats(n uint32) MusicTime {
	return MusicTime{Beat: W(n)}
}

// Measures returns the position/duration of n whole measures.
func Measures(n uint32) MusicTime {
	return MusicTime{Measure: n}
}

// Normalize re-establishes the beat-in-measure invariant under sig.
func (t MusicTime) Normalize(sig TimeSignature) MusicTime {
	carried := t.Beat.MusicTime(sig)
	carried.Measure += t.Measure
	return carried
}

// Add returns t + o under sig, carrying overflowing beats into measures.
func (t MusicTime) Add(o MusicTime, sig TimeSignature) MusicTime {
	sum := t.Beat.Add(o.Beat).MusicTime(sig)
	sum.Measure += t.Measure + o.Measure
	return sum
}

// Sub returns t - o under sig, borrowing measures as needed. Subtracting past
// measure 0 returns ErrTimeUnderflow. Both operands should be normalized; the
// result always is.
func (t MusicTime) Sub(o MusicTime, sig TimeSignature) (MusicTime, error) {
	t, o = t.Normalize(sig), o.Normalize(sig)
	measure, beat := t.Measure, t.Beat
	for o.Beat.Cmp(beat) > 0 {
		if measure == 0 {
			return MusicTime{}, ErrTimeUnderflow
		}
		measure--
		beat = beat.Add(W(sig.BeatsPerMeasure))
	}
	if measure < o.Measure {
		return MusicTime{}, ErrTimeUnderflow
	}
	beat, err := beat.Sub(o.Beat)
	if err != nil {
		return MusicTime{}, err
	}
	res := beat.MusicTime(sig)
	res.Measure += measure - o.Measure
	return res, nil
}

// Cmp orders positions lexicographically by measure, then beat. Both sides
// must be normalized under the same signature for the order to be meaningful.
func (t MusicTime) Cmp(o MusicTime) int {
	switch {
	case t.Measure < o.Measure:
		return -1
	case t.Measure > o.Measure:
		return 1
	}
	return t.Beat.Cmp(o.Beat)
}

func (t MusicTime) IsZero() bool {
	return t.Measure == 0 && t.Beat.IsZero()
}

// TotalBeats flattens t into a raw beat count under sig.
func (t MusicTime) TotalBeats(sig TimeSignature) Beat {
	return W(t.Measure * sig.BeatsPerMeasure).Add(t.Beat)
}

// Seconds converts t to wall clock seconds at the given tempo.
func (t MusicTime) Seconds(sig TimeSignature, bpm float64) float64 {
	return t.TotalBeats(sig).Float() * 60 / bpm
}

// MusicTimeFromSeconds converts elapsed wall clock seconds into a normalized
// MusicTime. The floating point beat count is rationalized with a fixed
// precision denominator so repeated conversions cannot grow the denominator.
func MusicTimeFromSeconds(sig TimeSignature, bpm float64, seconds float64) MusicTime {
	beats := bpm / 60 * seconds
	if beats < 0 || math.IsNaN(beats) || math.IsInf(beats, 0) {
		return MusicTime{}
	}
	num := uint64(math.Floor(beats * fromSecondsPrecision))
	return reduce(num, fromSecondsPrecision).MusicTime(sig)
}

func (t MusicTime) String() string {
	if t.Measure == 0 {
		return t.Beat.String()
	}
	return fmt.Sprintf("%dm+%s", t.Measure, t.Beat.String())
}
