package main

import (
	"context"
	"time"

	"osutimeline/dotosu"
)

// Song advances a playback clock over a decoded timeline and hands out events
// as they come due.
type Song struct {
	events  []dotosu.HitEvent
	next    int
	elapsed time.Duration
}

func NewSong(b *dotosu.Beatmap) *Song {
	return &Song{events: b.Events()}
}

func (s *Song) Update(elapsed time.Duration) {
	s.elapsed += elapsed
}

func (s *Song) TimeMillis() int {
	return int(s.elapsed.Milliseconds())
}

// Due returns the events whose start time has been reached since the last
// call, in timeline order.
func (s *Song) Due() []dotosu.HitEvent {
	now := s.TimeMillis()
	start := s.next
	for s.next < len(s.events) && s.events[s.next].StartTimeMs <= now {
		s.next++
	}
	return s.events[start:s.next:s.next]
}

func (s *Song) Done() bool { return s.next == len(s.events) }

// Play runs the song clock in real time scaled by speed, calling emit for
// every event as it comes due, until all events are out or ctx ends.
func Play(ctx context.Context, song *Song, speed float64, tick time.Duration, emit func(ms int, ev dotosu.HitEvent)) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for !song.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			song.Update(time.Duration(float64(now.Sub(last)) * speed))
			last = now
			for _, ev := range song.Due() {
				emit(song.TimeMillis(), ev)
			}
		}
	}
	return nil
}
