package metrics

import (
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fpsmon/core"
)

// Aggregator consumes raw CSV data lines from the tracer and publishes a
// smoothed sample to the Store once per full smoothing window.
//
// The smoothing is a fixed-size non-overlapping moving average: simple, and
// responsive enough at a handful of samples per update. The stdout reader is
// the only caller of Ingest, but Reset arrives from the supervisor's
// goroutine, hence the mutex.
type Aggregator struct {
	store  *Store
	logger *zap.Logger

	mu    sync.Mutex
	sum   float64
	count int
}

// NewAggregator creates an Aggregator publishing into store.
func NewAggregator(store *Store, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// Ingest parses one CSV data line and accumulates its inter-present
// interval. Malformed lines are counted, logged and discarded without
// touching the running window.
func (a *Aggregator) Ingest(line string) {
	fields := strings.Split(line, ",")
	if len(fields) < core.FrameColumnCount {
		a.discard(line, "short line")
		return
	}

	interval, err := strconv.ParseFloat(strings.TrimSpace(fields[core.FrameTimeColumn]), 64)
	if err != nil {
		a.discard(line, "unparsable frame interval")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.sum += interval
	a.count++
	if a.count < core.SmoothingWindowSize {
		return
	}

	avg := a.sum / float64(core.SmoothingWindowSize)
	fps := 0.0
	if avg != 0 {
		fps = 1000.0 / avg
	}
	a.store.Publish(fps, avg)

	a.sum = 0
	a.count = 0
}

// Reset discards any partially accumulated window. Called whenever a capture
// session starts or stops; samples never carry across sessions.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum = 0
	a.count = 0
}

func (a *Aggregator) discard(line, reason string) {
	a.store.CountDiscard()
	a.logger.Debug("discarding frame line",
		zap.String("reason", reason),
		zap.String("line", line),
	)
}
