package metrics

import (
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
)

// frameLine builds a CSV data line with the interval in the expected column.
func frameLine(intervalMS string) string {
	return fmt.Sprintf("game.exe,5120,0x0000000000000000,DXGI,1,0,0,Hardware: Flip,0,%s,0.2", intervalMS)
}

func TestIngest_PublishesAfterFullWindow(t *testing.T) {
	store := NewStore()
	agg := NewAggregator(store, zap.NewNop())

	for i := 0; i < 4; i++ {
		agg.Ingest(frameLine("16.0"))
	}
	if snap := store.Snapshot(); snap.PublishedSamples != 0 {
		t.Fatalf("published after 4 samples = %d, want 0", snap.PublishedSamples)
	}
	if got := store.FPS(); got != 0 {
		t.Errorf("FPS before full window = %v, want 0", got)
	}

	agg.Ingest(frameLine("16.0"))

	if got := store.FrameTimeMS(); got != 16.0 {
		t.Errorf("FrameTimeMS = %v, want 16.0", got)
	}
	if got := store.FPS(); math.Abs(got-62.5) > 1e-9 {
		t.Errorf("FPS = %v, want 62.5", got)
	}
	if snap := store.Snapshot(); snap.PublishedSamples != 1 {
		t.Errorf("PublishedSamples = %d, want 1", snap.PublishedSamples)
	}
}

func TestIngest_AveragesMixedIntervals(t *testing.T) {
	store := NewStore()
	agg := NewAggregator(store, zap.NewNop())

	for _, v := range []string{"10.0", "12.0", "14.0", "16.0", "18.0"} {
		agg.Ingest(frameLine(v))
	}

	if got := store.FrameTimeMS(); math.Abs(got-14.0) > 1e-9 {
		t.Errorf("FrameTimeMS = %v, want 14.0", got)
	}
	if got := store.FPS(); math.Abs(got-1000.0/14.0) > 1e-9 {
		t.Errorf("FPS = %v, want %v", got, 1000.0/14.0)
	}
}

func TestIngest_ZeroAverageGuardsDivideByZero(t *testing.T) {
	store := NewStore()
	agg := NewAggregator(store, zap.NewNop())

	for i := 0; i < 5; i++ {
		agg.Ingest(frameLine("0.0"))
	}

	if got := store.FPS(); got != 0 {
		t.Errorf("FPS with zero frame time = %v, want 0", got)
	}
}

func TestIngest_DiscardsMalformedLines(t *testing.T) {
	store := NewStore()
	agg := NewAggregator(store, zap.NewNop())

	agg.Ingest("too,few,columns")
	agg.Ingest(frameLine("not-a-number"))

	if snap := store.Snapshot(); snap.DiscardedLines != 2 {
		t.Errorf("DiscardedLines = %d, want 2", snap.DiscardedLines)
	}

	// The running window is untouched: the next 5 valid lines publish.
	for i := 0; i < 5; i++ {
		agg.Ingest(frameLine("20.0"))
	}
	if got := store.FrameTimeMS(); got != 20.0 {
		t.Errorf("FrameTimeMS = %v, want 20.0 (window unaffected by discards)", got)
	}
	if got := store.FPS(); got != 50.0 {
		t.Errorf("FPS = %v, want 50.0", got)
	}
}

func TestReset_DropsPartialWindow(t *testing.T) {
	store := NewStore()
	agg := NewAggregator(store, zap.NewNop())

	for i := 0; i < 3; i++ {
		agg.Ingest(frameLine("16.0"))
	}
	agg.Reset()

	// A fresh window needs all 5 samples again.
	for i := 0; i < 4; i++ {
		agg.Ingest(frameLine("10.0"))
	}
	if snap := store.Snapshot(); snap.PublishedSamples != 0 {
		t.Errorf("published after reset + 4 samples = %d, want 0", snap.PublishedSamples)
	}

	agg.Ingest(frameLine("10.0"))
	if got := store.FrameTimeMS(); got != 10.0 {
		t.Errorf("FrameTimeMS = %v, want 10.0 (no carryover from before Reset)", got)
	}
}
