package player

import (
	"context"
	"fmt"
	"time"

	"github.com/ovaskain/ostinato"
)

const queueSize = 1024

// Run plays the scheduler through the sink until the composition ends or ctx
// is cancelled. A producer goroutine polls the scheduler every poll period
// and queues the resulting sounds; the calling goroutine consumes the queue,
// sleeping until each sound's start before handing it to the sink, and
// finally waits for the last sound to finish. Looping schedulers run until
// cancellation.
func Run(ctx context.Context, s *Scheduler, sink ostinato.Sink, poll time.Duration) error {
	if poll <= 0 {
		return fmt.Errorf("poll period must be positive, got %v", poll)
	}
	queue := make(chan ostinato.Sound, queueSize)
	start := time.Now()
	go produce(ctx, s, queue, start, poll)
	var lastEnd float64
	for sound := range queue {
		if err := sleepUntil(ctx, start, sound.Start); err != nil {
			return err
		}
		if err := sink.Play(sound); err != nil {
			return fmt.Errorf("could not play sound: %w", err)
		}
		if end := sound.End(); end > lastEnd {
			lastEnd = end
		}
	}
	if err := sleepUntil(ctx, start, lastEnd); err != nil {
		return err
	}
	return nil
}

func produce(ctx context.Context, s *Scheduler, queue chan<- ostinato.Sound, start time.Time, poll time.Duration) {
	defer close(queue)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		for _, sound := range s.Next(time.Since(start).Seconds()) {
			select {
			case queue <- sound:
			case <-ctx.Done():
				return
			}
		}
		if s.Ended() {
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// sleepUntil blocks until the given offset from start has passed, or ctx is
// cancelled.
func sleepUntil(ctx context.Context, start time.Time, offsetSeconds float64) error {
	d := time.Duration(offsetSeconds*float64(time.Second)) - time.Since(start)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
