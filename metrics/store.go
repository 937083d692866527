package metrics

import (
	"sync"
	"time"
)

// Store holds the two metric outputs visible to the host. The aggregator is
// the only writer while a capture is live, and the supervisor's Stopping
// transition is the only caller of Reset, so a plain RWMutex suffices.
type Store struct {
	mu sync.RWMutex

	fps         float64
	frameTimeMS float64

	published  int64
	discarded  int64
	lastUpdate time.Time
}

// NewStore creates an empty Store with both outputs at zero.
func NewStore() *Store {
	return &Store{}
}

// Publish sets both metric outputs.
func (s *Store) Publish(fps, frameTimeMS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fps = fps
	s.frameTimeMS = frameTimeMS
	s.published++
	s.lastUpdate = time.Now()
}

// Reset zeroes both metric outputs. The bookkeeping counters survive so the
// status view can report lifetime totals.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fps = 0
	s.frameTimeMS = 0
}

// CountDiscard records one malformed CSV line.
func (s *Store) CountDiscard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded++
}

// FPS returns the current smoothed frames-per-second value.
func (s *Store) FPS() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fps
}

// FrameTimeMS returns the current smoothed frame time in milliseconds.
func (s *Store) FrameTimeMS() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameTimeMS
}

// Snapshot returns a copy of the outputs and counters.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		FPS:              s.fps,
		FrameTimeMS:      s.frameTimeMS,
		PublishedSamples: s.published,
		DiscardedLines:   s.discarded,
		LastUpdate:       s.lastUpdate,
	}
}
