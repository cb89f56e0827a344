package ostinato

type (
	// Sound is one scheduled note in wall clock terms: when it starts
	// (seconds from playback start), how long it lasts, and what to play.
	// Sinks that synthesize audio use Frequency; MIDI sinks use the Pitch
	// directly.
	Sound struct {
		Start      float64
		Duration   float64
		Volume     Volume
		Instrument Instrument
		Pitch      Pitch
	}

	// Sink realizes scheduled sounds. Play is called with the sounds of one
	// batch in non-decreasing start order; it should not block for the
	// duration of the sound. Close releases whatever the sink holds open and
	// may block until pending sounds finish.
	Sink interface {
		Play(Sound) error
		Close() error
	}
)

// Frequency returns the pitch of the sound in Hz.
func (s Sound) Frequency() float64 {
	return s.Pitch.Frequency()
}

// End returns the time the sound stops, in seconds from playback start.
func (s Sound) End() float64 {
	return s.Start + s.Duration
}
