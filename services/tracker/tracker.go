// Package tracker records per-request usage facts and aggregates them into
// cost analytics.
package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/juyterman1000/smartllm-router/models"
)

// UsageStore is an optional durable sink for usage records. The tracker
// writes to it best effort; a store failure never fails the request.
type UsageStore interface {
	Insert(ctx context.Context, rec models.UsageRecord) error
}

// Analytics is the aggregated usage report over a trailing window.
type Analytics struct {
	TotalRequests           int                `json:"total_requests"`
	TotalCost               float64            `json:"total_cost"`
	TotalSavings            float64            `json:"total_savings"`
	CostReductionPercentage float64            `json:"cost_reduction_percentage"`
	AverageLatency          time.Duration      `json:"average_latency"`
	ModelDistribution       map[string]int     `json:"model_distribution"`
	DailyCosts              map[string]float64 `json:"daily_costs"`
}

// Tracker keeps an append-only, in-memory record of routed requests.
// Records are never deleted; analytics windows filter by timestamp.
type Tracker struct {
	mu      sync.Mutex
	records []models.UsageRecord
	store   UsageStore
	logger  *zap.Logger

	// now is swappable for window tests.
	now func() time.Time
}

// New creates a tracker. store may be nil for memory-only operation.
func New(store UsageStore, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, logger: logger, now: time.Now}
}

// Record appends a usage record. The durable sink is written after the
// in-memory append so analytics always see the record even if the store
// rejects it.
func (t *Tracker) Record(ctx context.Context, rec models.UsageRecord) {
	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()

	if t.store == nil {
		return
	}
	if err := t.store.Insert(ctx, rec); err != nil {
		t.logger.Warn("usage store insert failed",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err),
		)
	}
}

// Len returns the number of recorded requests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Analytics aggregates the records whose timestamp falls within the last
// windowDays days. A non-positive window means all records.
func (t *Tracker) Analytics(windowDays int) Analytics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cutoff time.Time
	if windowDays > 0 {
		cutoff = t.now().AddDate(0, 0, -windowDays)
	}

	out := Analytics{
		ModelDistribution: make(map[string]int),
		DailyCosts:        make(map[string]float64),
	}
	var totalLatency time.Duration

	for _, rec := range t.records {
		// The window is open at the cutoff: only records strictly newer
		// than now minus the window count.
		if windowDays > 0 && !rec.Timestamp.After(cutoff) {
			continue
		}
		out.TotalRequests++
		out.TotalCost += rec.Cost
		out.TotalSavings += rec.Savings
		totalLatency += rec.Latency
		out.ModelDistribution[rec.Model]++
		out.DailyCosts[rec.Timestamp.Format("2006-01-02")] += rec.Cost
	}

	if out.TotalRequests > 0 {
		out.AverageLatency = totalLatency / time.Duration(out.TotalRequests)
	}
	if denom := out.TotalCost + out.TotalSavings; denom > 0 {
		out.CostReductionPercentage = out.TotalSavings / denom * 100
	}
	return out
}

// DailyCost returns today's accumulated spend.
func (t *Tracker) DailyCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.now().Format("2006-01-02")
	var total float64
	for _, rec := range t.records {
		if rec.Timestamp.Format("2006-01-02") == today {
			total += rec.Cost
		}
	}
	return total
}
