package vis

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/ovaskain/ostinato"
)

// trackPalette colors tracks in the order they appear in the composition.
var trackPalette = [][3]float64{
	{0.36, 0.68, 0.89},
	{0.94, 0.56, 0.22},
	{0.47, 0.78, 0.47},
	{0.84, 0.38, 0.42},
	{0.66, 0.52, 0.79},
	{0.78, 0.72, 0.40},
}

// Roll draws the composition as a piano roll: time left to right in beats,
// pitch bottom to top, one color per track, rests as ghosted boxes.
func Roll(c *ostinato.Composition, width, height int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetRGB(0.10, 0.10, 0.12)
	dc.Clear()
	sig := c.TimeSignature
	totalBeats := c.Duration().TotalBeats(sig).Float()
	if totalBeats == 0 {
		return dc
	}
	lo, hi := pitchRange(c)
	rows := float64(hi-lo) + 1
	xScale := float64(width) / totalBeats
	rowHeight := float64(height) / rows

	// measure grid
	dc.SetRGB(0.20, 0.20, 0.24)
	for beat := float64(sig.BeatsPerMeasure); beat < totalBeats; beat += float64(sig.BeatsPerMeasure) {
		dc.DrawLine(beat*xScale, 0, beat*xScale, float64(height))
		dc.Stroke()
	}

	for i := range c.Tracks {
		tr := &c.Tracks[i]
		color := trackPalette[i%len(trackPalette)]
		for _, e := range tr.Rests {
			x := e.Start.TotalBeats(sig).Float() * xScale
			w := e.Duration.Float() * xScale
			dc.SetRGBA(color[0], color[1], color[2], 0.15)
			dc.DrawRectangle(x, 0, w, float64(height))
			dc.Fill()
		}
		for _, e := range tr.Events {
			x := e.Start.TotalBeats(sig).Float() * xScale
			w := e.Duration.Float() * xScale
			y := float64(hi-int(e.Pitch.MIDINote())) * rowHeight
			dc.SetRGB(color[0], color[1], color[2])
			dc.DrawRectangle(x, y, w, rowHeight-1)
			dc.Fill()
		}
	}
	return dc
}

// SaveRoll writes the piano roll as a PNG file.
func SaveRoll(c *ostinato.Composition, path string, width, height int) error {
	if err := Roll(c, width, height).SavePNG(path); err != nil {
		return fmt.Errorf("cannot save piano roll: %w", err)
	}
	return nil
}

func pitchRange(c *ostinato.Composition) (lo, hi int) {
	lo, hi = 127, 0
	for i := range c.Tracks {
		for _, e := range c.Tracks[i].Events {
			if n := int(e.Pitch.MIDINote()); n < lo {
				lo = n
			}
			if n := int(e.Pitch.MIDINote()); n > hi {
				hi = n
			}
		}
	}
	if lo > hi {
		lo, hi = 60, 72
	}
	// a little headroom so notes do not hug the edges
	if lo > 0 {
		lo--
	}
	if hi < 127 {
		hi++
	}
	return lo, hi
}
