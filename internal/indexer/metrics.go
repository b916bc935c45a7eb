package indexer

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventfoto/face-indexer/internal/constants"
)

// Metrics accumulates throughput numbers for one run. It only observes; run
// outcomes never depend on it.
type Metrics struct {
	logger *log.Logger
	start  time.Time
	bytes  atomic.Int64

	mu           sync.Mutex
	lastLogAt    time.Time
	lastLogCount int64
}

func NewMetrics(logger *log.Logger) *Metrics {
	if logger == nil {
		logger = log.Default()
	}
	now := time.Now()
	return &Metrics{logger: logger, start: now, lastLogAt: now}
}

func (m *Metrics) AddBytes(n int64) {
	m.bytes.Add(n)
}

func (m *Metrics) TotalBytes() int64 {
	return m.bytes.Load()
}

// PhotoProcessed logs a throughput line every MetricsLogInterval photos.
func (m *Metrics) PhotoProcessed(eventID string, processed, total int64) {
	if processed%constants.MetricsLogInterval != 0 {
		return
	}

	m.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(m.lastLogAt).Seconds()
	delta := processed - m.lastLogCount
	m.lastLogAt = now
	m.lastLogCount = processed
	m.mu.Unlock()

	rate := 0.0
	if elapsed > 0 {
		rate = float64(delta) / elapsed
	}
	mb := float64(m.bytes.Load()) / 1024 / 1024
	m.logger.Printf("[%s] %d/%d photos | %.1f photos/s | %.1fMB", eventID, processed, total, rate, mb)
}

// Summary returns the final throughput line for the run.
func (m *Metrics) Summary(processed int64) string {
	elapsed := time.Since(m.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(processed) / elapsed
	}
	mb := float64(m.bytes.Load()) / 1024 / 1024
	return fmt.Sprintf("%d photos in %.1fs | %.1f photos/s | %.1fMB", processed, elapsed, rate, mb)
}
