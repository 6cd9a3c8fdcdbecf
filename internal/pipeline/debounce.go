package pipeline

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer emits the last submitted value once delay has passed without a
// newer submission. It keeps at most one pending timer.
type Debouncer struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	delay   time.Duration
	emit    func(string)
	pending clockwork.Timer
	seq     uint64
	closed  bool
}

func NewDebouncer(clock clockwork.Clock, delay time.Duration, emit func(string)) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, delay: delay, emit: emit}
}

// Submit supersedes any pending value with v.
func (d *Debouncer) Submit(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.seq++
	seq := d.seq
	d.pending = d.clock.AfterFunc(d.delay, func() { d.fire(seq, v) })
}

// Cancel drops the pending value, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
}

// Pending reports whether a value is waiting to be emitted.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Close cancels the pending value; nothing is emitted afterwards.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// fire 可能与 Submit 竞争：过期的 seq 直接丢弃
func (d *Debouncer) fire(seq uint64, v string) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()
	d.emit(v)
}
