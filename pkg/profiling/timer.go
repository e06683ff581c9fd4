// Package profiling times the phases of one cydantic invocation.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Span is a completed or running timed phase.
type Span struct {
	Name     string
	Depth    int
	Start    time.Time
	Duration time.Duration
}

// Timer records nested spans. The zero value and a nil Timer are disabled
// and record nothing.
type Timer struct {
	mu      sync.Mutex
	enabled bool
	start   time.Time
	spans   []*Span
	depth   int
}

// NewTimer returns an enabled timer whose clock starts now.
func NewTimer() *Timer {
	return &Timer{enabled: true, start: time.Now()}
}

// Start opens a span nested under the currently open one. Call the returned
// function to close it, typically via defer.
func (t *Timer) Start(name string) func() {
	if t == nil || !t.enabled {
		return func() {}
	}

	t.mu.Lock()
	s := &Span{Name: name, Depth: t.depth, Start: time.Now()}
	t.spans = append(t.spans, s)
	t.depth++
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			s.Duration = time.Since(s.Start)
			t.depth--
		})
	}
}

// Spans returns a copy of the recorded spans in start order.
func (t *Timer) Spans() []Span {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	for i, s := range t.spans {
		out[i] = *s
	}
	return out
}

// Summarize writes the span tree with each span's share of the total time.
func (t *Timer) Summarize(w io.Writer) {
	if t == nil || !t.enabled {
		return
	}
	total := time.Since(t.start)

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	for _, s := range t.Spans() {
		percentage := 0.0
		if total > 0 {
			percentage = float64(s.Duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n",
			strings.Repeat("  ", s.Depth+1), s.Name, s.Duration.Round(100*time.Microsecond), percentage)
	}
	fmt.Fprintf(w, "  total %v\n", total.Round(100*time.Microsecond))
	fmt.Fprintln(w, "--------------------")
}
