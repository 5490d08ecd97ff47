package client

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultDebounce is the quiet period before a search input is acted on.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delays search input until it has been stable for the configured
// delay. Each Push supersedes any pending input. fn only receives trimmed
// input of at least MinQueryLength characters.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	seq     uint64
	pending *string
	fn      func(query string)
}

// NewDebouncer returns a Debouncer calling fn. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func(query string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Push records new input and restarts the quiet period.
func (d *Debouncer) Push(input string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	q := strings.TrimSpace(input)
	d.pending = &q

	d.timer = time.AfterFunc(d.delay, func() {
		if q, ok := d.take(seq); ok {
			d.fn(q)
		}
	})
}

// Flush fires the pending input now instead of waiting for the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	if q, ok := d.take(seq); ok {
		d.fn(q)
	}
}

// Stop drops any pending input.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// take claims the pending input if it still belongs to seq.
func (d *Debouncer) take(seq uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq || d.pending == nil {
		return "", false
	}
	q := *d.pending
	d.pending = nil
	if utf8.RuneCountInString(q) < MinQueryLength {
		return "", false
	}
	return q, true
}
