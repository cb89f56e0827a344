package ostinato

import "math"

type (
	// NoteNum is a chromatic note index within an octave, in [0, 12).
	NoteNum uint8

	// Octave is a scientific pitch octave number. Octave 4 holds A440.
	Octave uint8

	// Pitch is a note at a specific octave.
	Pitch struct {
		Octave Octave  `yaml:"octave" json:"octave"`
		Note   NoteNum `yaml:"note" json:"note"`
	}

	// Volume is a playback volume in [0, MaxVolume].
	Volume uint32

	// Instrument names the sound used to render a track. Sinks map the name
	// to whatever they support; unknown names fall back to a sink default.
	Instrument string
)

// MaxVolume is the loudest Volume; Float maps it to 1.0.
const MaxVolume Volume = 100

// DefaultInstrument is used for events before any i= control is seen.
const DefaultInstrument Instrument = "sine"

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Frequency returns the equal temperament frequency of p in Hz, anchored at
// 440 Hz for note 9 of octave 4.
func (p Pitch) Frequency() float64 {
	return 440 * math.Pow(2, float64(p.Octave)-4+(float64(p.Note)-9)/12)
}

// MIDINote returns the MIDI note number of p.
func (p Pitch) MIDINote() uint8 {
	return uint8(p.Octave)*12 + uint8(p.Note) + 9
}

// LetterName returns the chromatic name of the note, without the octave.
func (p Pitch) LetterName() string {
	return noteNames[p.Note%12]
}

func (p Pitch) String() string {
	return p.LetterName() + string('0'+rune(p.Octave%10))
}

// Float maps v onto [0, 1], clamping values above MaxVolume.
func (v Volume) Float() float64 {
	if v > MaxVolume {
		v = MaxVolume
	}
	return float64(v) / float64(MaxVolume)
}
