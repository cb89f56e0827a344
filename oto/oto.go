// Package oto plays scheduled sounds through the system audio device using
// ebitengine/oto. Each sound gets its own player fed from a pre-synthesized
// sine voice; oto mixes overlapping players.
package oto

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ovaskain/ostinato"
)

type Sink struct {
	ctx *oto.Context

	mu      sync.Mutex
	players []*oto.Player
}

// NewSink opens the audio device and waits until it is ready.
func NewSink() (*Sink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   ostinato.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Sink{ctx: ctx}, nil
}

// Play starts the sound immediately on its own player and returns without
// waiting for it to finish.
func (s *Sink) Play(sound ostinato.Sound) error {
	voice := ostinato.SineVoice(sound)
	if len(voice) == 0 {
		return nil
	}
	player := s.ctx.NewPlayer(bytes.NewReader(FloatBufferToLE(voice, nil)))
	player.Play()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.players = append(s.players, player)
	return nil
}

// prune closes players that have finished. Callers must hold mu.
func (s *Sink) prune() {
	alive := s.players[:0]
	for _, p := range s.players {
		if p.IsPlaying() {
			alive = append(alive, p)
			continue
		}
		p.Close()
	}
	s.players = alive
}

// Close waits for all playing sounds to finish and releases their players.
func (s *Sink) Close() error {
	for {
		s.mu.Lock()
		s.prune()
		n := len(s.players)
		s.mu.Unlock()
		if n == 0 {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}
