package tokens

import (
	"time"

	"github.com/streamchat/chat-service/internal/domain/models"
)

// defaultHistorySize bounds the TPS sample history. Averaging over recent
// samples damps early-stream noise where elapsed time is near zero.
const defaultHistorySize = 10

// Tracker accumulates token counts during one streaming exchange and
// produces a smoothed tokens-per-second reading. One tracker serves one
// exchange with a single writer; it is not safe for concurrent use.
type Tracker struct {
	start      time.Time
	tokenCount int
	history    []float64
	capacity   int
}

// NewTracker creates a tracker with the start time set to now.
func NewTracker() *Tracker {
	return &Tracker{
		start:    time.Now(),
		capacity: defaultHistorySize,
	}
}

// AddTokens increments the cumulative count and records an instantaneous
// TPS sample. Returns the instantaneous value, or 0 when no time has
// elapsed yet.
func (t *Tracker) AddTokens(n int) float64 {
	t.tokenCount += n

	elapsed := time.Since(t.start).Seconds()
	if elapsed <= 0 {
		return 0
	}

	tps := float64(t.tokenCount) / elapsed
	t.history = append(t.history, tps)
	if len(t.history) > t.capacity {
		t.history = t.history[1:]
	}
	return tps
}

// CurrentTPS returns the arithmetic mean of the sample history, or 0 when
// no samples have been recorded.
func (t *Tracker) CurrentTPS() float64 {
	if len(t.history) == 0 {
		return 0
	}
	sum := 0.0
	for _, tps := range t.history {
		sum += tps
	}
	return sum / float64(len(t.history))
}

// Count returns the cumulative token count.
func (t *Tracker) Count() int {
	return t.tokenCount
}

// StartTime returns the tracked exchange's start time.
func (t *Tracker) StartTime() time.Time {
	return t.start
}

// Reset clears the count and history and restarts the start time, for
// beginning a new tracked exchange.
func (t *Tracker) Reset() {
	t.start = time.Now()
	t.tokenCount = 0
	t.history = t.history[:0]
}

// Metrics builds a TokenMetrics snapshot for the tracked exchange.
// inputTokens is the estimated prompt size; output tokens come from the
// tracker's cumulative count.
func (t *Tracker) Metrics(inputTokens int, model models.ModelConfig) *models.TokenMetrics {
	end := time.Now().UTC()
	start := t.start.UTC()
	return &models.TokenMetrics{
		InputTokens:     inputTokens,
		OutputTokens:    t.tokenCount,
		TotalTokens:     inputTokens + t.tokenCount,
		TokensPerSecond: t.CurrentTPS(),
		StartTime:       start,
		EndTime:         end,
		DurationMs:      end.Sub(start).Milliseconds(),
		EstimatedCost:   EstimateCost(inputTokens, t.tokenCount, model),
	}
}
