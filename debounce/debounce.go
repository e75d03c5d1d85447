// Package debounce delays an action until input pauses.
//
// A Timer is a cancelable single-shot timer: every Trigger re-arms it, and fn
// runs once, d after the last Trigger. Consumers use it to persist after the
// user stops typing instead of on every keystroke:
//
//	save := debounce.New(500*time.Millisecond, func() {
//	    _ = st.SaveObject("notepad", notes)
//	})
//	// on every edit:
//	save.Trigger()
//	// on window close:
//	save.Flush()
//
// fn runs on the timer's goroutine. Consumers driving a UI event loop should
// hand the work back to that loop from fn.
package debounce

import (
	"sync"
	"time"
)

// Timer is safe for concurrent use.
type Timer struct {
	mu    sync.Mutex
	d     time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

// New returns an idle Timer. Panics if fn is nil or d is negative.
func New(d time.Duration, fn func()) *Timer {
	if fn == nil {
		panic("debounce: New: fn cannot be nil")
	}
	if d < 0 {
		panic("debounce: New: negative delay")
	}
	return &Timer{d: d, fn: fn}
}

// Trigger (re)arms the timer, cancelling any pending call.
func (t *Timer) Trigger() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.d, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	// a Trigger, Cancel or Flush after this call was scheduled supersedes it
	if gen != t.gen || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

// Cancel drops a pending call and reports whether there was one.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked()
}

// Flush runs a pending call immediately on the caller's goroutine and
// reports whether there was one.
func (t *Timer) Flush() bool {
	t.mu.Lock()
	pending := t.stopLocked()
	t.mu.Unlock()
	if pending {
		t.fn()
	}
	return pending
}

// Pending reports whether a call is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Timer) stopLocked() bool {
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	return true
}
