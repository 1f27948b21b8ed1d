package stats

import (
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/bytedance/sonic"
)

// QuantileTracker keeps an approximate latency distribution with 1% relative
// accuracy.
type QuantileTracker struct {
	mu     sync.RWMutex
	sketch *ddsketch.DDSketch
}

func NewQuantileTracker() *QuantileTracker {
	sketch, _ := ddsketch.NewDefaultDDSketch(0.01)
	return &QuantileTracker{
		sketch: sketch,
	}
}

func (q *QuantileTracker) Add(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	_ = q.sketch.Add(d.Seconds())
}

func (q *QuantileTracker) Count() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.sketch.GetCount()
}

func (q *QuantileTracker) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sketch, _ = ddsketch.NewDefaultDDSketch(0.01)
}

// GetQuantile returns 0 when nothing was recorded.
func (q *QuantileTracker) GetQuantile(qtile float64) time.Duration {
	q.mu.RLock()
	defer q.mu.RUnlock()
	val, err := q.sketch.GetValueAtQuantile(qtile)
	if err != nil {
		return 0
	}
	return time.Duration(val * float64(time.Second))
}

type LatencySummary struct {
	P50 time.Duration `json:"p50"`
	P90 time.Duration `json:"p90"`
	P99 time.Duration `json:"p99"`
}

func (q *QuantileTracker) Summary() LatencySummary {
	return LatencySummary{
		P50: q.GetQuantile(0.50),
		P90: q.GetQuantile(0.90),
		P99: q.GetQuantile(0.99),
	}
}

func (l LatencySummary) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		P50 string `json:"p50"`
		P90 string `json:"p90"`
		P99 string `json:"p99"`
	}{
		P50: l.P50.String(),
		P90: l.P90.String(),
		P99: l.P99.String(),
	})
}
