// Package gomidi sends scheduled sounds to a MIDI output port. Instruments
// are mapped to MIDI channels as they appear, with a ProgramChange on first
// use; percussion instruments share the percussion channel.
package gomidi

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/ovaskain/ostinato"
)

// percussionChannel is channel 10 in MIDI terms, reserved by General MIDI
// for drums; melodic instruments skip it during allocation.
const percussionChannel = 9

type Sink struct {
	driver *rtmididrv.Driver
	out    drivers.Out
	send   func(midi.Message) error

	programs   map[ostinato.Instrument]uint8
	percussion map[ostinato.Instrument]bool

	// mu guards the channel table and send; NoteOffs fire from timer
	// goroutines concurrently with Play.
	mu          sync.Mutex
	channels    map[ostinato.Instrument]uint8
	nextChannel uint8
	pending     sync.WaitGroup
}

// NewSink opens the MIDI output port with the given index and configures the
// instrument mapping from the performance.
func NewSink(p ostinato.Performance, port int) (*Sink, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	outs, err := driver.Outs()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot list MIDI outputs: %w", err)
	}
	if port < 0 || port >= len(outs) {
		driver.Close()
		return nil, fmt.Errorf("no MIDI output port %d (%d available)", port, len(outs))
	}
	out := outs[port]
	if err := out.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot open MIDI output %v: %w", out, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		out.Close()
		driver.Close()
		return nil, fmt.Errorf("cannot send to MIDI output %v: %w", out, err)
	}
	s := &Sink{
		driver:     driver,
		out:        out,
		send:       send,
		programs:   p.Programs,
		percussion: make(map[ostinato.Instrument]bool),
		channels:   make(map[ostinato.Instrument]uint8),
	}
	for _, instrument := range p.Percussion {
		s.percussion[instrument] = true
	}
	return s, nil
}

// channel returns the MIDI channel for the instrument, allocating the next
// free one and sending its ProgramChange on first use. Callers must hold mu.
func (s *Sink) channel(instrument ostinato.Instrument) (uint8, error) {
	if ch, ok := s.channels[instrument]; ok {
		return ch, nil
	}
	var ch uint8
	if s.percussion[instrument] {
		ch = percussionChannel
	} else {
		if s.nextChannel == percussionChannel {
			s.nextChannel++
		}
		ch = s.nextChannel % 16
		s.nextChannel++
	}
	s.channels[instrument] = ch
	if err := s.send(midi.ProgramChange(ch, s.programs[instrument])); err != nil {
		return 0, fmt.Errorf("cannot send program change for %q: %w", instrument, err)
	}
	return ch, nil
}

// Play sends the NoteOn immediately and schedules the NoteOff for when the
// sound's duration has passed.
func (s *Sink) Play(sound ostinato.Sound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, err := s.channel(sound.Instrument)
	if err != nil {
		return err
	}
	key := sound.Pitch.MIDINote()
	velocity := uint8(sound.Volume.Float() * 127)
	if err := s.send(midi.NoteOn(ch, key, velocity)); err != nil {
		return fmt.Errorf("cannot send note on: %w", err)
	}
	s.pending.Add(1)
	time.AfterFunc(time.Duration(sound.Duration*float64(time.Second)), func() {
		defer s.pending.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		s.send(midi.NoteOff(ch, key))
	})
	return nil
}

// Close waits for pending NoteOffs and releases the port and driver.
func (s *Sink) Close() error {
	s.pending.Wait()
	if err := s.out.Close(); err != nil {
		return fmt.Errorf("cannot close MIDI output: %w", err)
	}
	return s.driver.Close()
}
