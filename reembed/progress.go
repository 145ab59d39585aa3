package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes a single updating progress line for the backfill.
// Workers call Increment concurrently.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	done     int
	reported int
	interval int
	began    time.Time
}

// NewProgressTracker tracks progress toward total documents, emitting a line
// to out every interval documents.
func NewProgressTracker(out io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{out: out, total: total, interval: interval}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.began = time.Now()
	p.done = 0
	p.reported = 0
}

// Increment records delta completed documents, reporting when the interval
// has been crossed.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return
	}

	p.done += delta
	if p.done > p.total {
		p.done = p.total
	}
	if p.done-p.reported >= p.interval {
		p.reported = p.done
		p.emit()
	}
}

// Finish forces a final report and terminates the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return
	}

	p.done = p.total
	p.emit()
	fmt.Fprintln(p.out)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.began.IsZero() {
		return 0
	}
	return time.Since(p.began)
}

// emit assumes the lock is held.
func (p *ProgressTracker) emit() {
	var pct, rate float64
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}
	if secs := time.Since(p.began).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.out, "\rEmbedding %d/%d (%.1f%%, %.1f docs/s)", p.done, p.total, pct, rate)
}
