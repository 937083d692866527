// Package metrics turns the tracer's raw frame intervals into the smoothed
// FPS and frame-time values the host reads.
package metrics

import "time"

// Snapshot is a point-in-time copy of the published metric outputs and their
// bookkeeping counters.
type Snapshot struct {
	// FPS is the current smoothed frames-per-second value; 0 while no
	// capture session is active.
	FPS float64

	// FrameTimeMS is the current smoothed frame time in milliseconds; 0
	// while no capture session is active.
	FrameTimeMS float64

	// PublishedSamples counts metric updates since startup.
	PublishedSamples int64

	// DiscardedLines counts malformed CSV lines since startup.
	DiscardedLines int64

	// LastUpdate is when the outputs last changed; zero until the first
	// publish.
	LastUpdate time.Time
}
