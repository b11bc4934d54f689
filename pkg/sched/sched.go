// Package sched provides the cooperative scheduler that stands in for the
// browser event loop: a FIFO queue of deferred tasks plus timers driven by a
// logical clock. Nothing runs in the background; callers advance the world
// explicitly with Flush and Advance, which makes event ordering fully
// deterministic and testable.
//
// A Scheduler is not safe for concurrent use. All mock interaction is
// expected to happen on a single goroutine; correctness comes from task
// ordering, not from locking.
package sched

import "time"

// Timer is a handle to a scheduled callback. Stop prevents a callback that
// has not run yet from running.
type Timer struct {
	s        *Scheduler
	deadline time.Time
	seq      uint64
	fn       func()
	stopped  bool
	queued   bool // zero-delay timers run from the immediate queue
}

// Stop cancels the timer. It reports whether the callback was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	if t.queued {
		return true
	}
	for i, pending := range t.s.timers {
		if pending == t {
			t.s.timers = append(t.s.timers[:i:i], t.s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Scheduler owns the deferred task queue and the logical clock.
type Scheduler struct {
	now    time.Time
	queue  []func()
	timers []*Timer
	seq    uint64
}

// New returns a scheduler whose clock starts at the current wall time. The
// clock only moves through Advance afterwards.
func New() *Scheduler {
	return NewAt(time.Now())
}

// NewAt returns a scheduler whose clock starts at start.
func NewAt(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the current logical time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// Defer appends fn to the task queue. Tasks run in insertion order the next
// time the queue is drained.
func (s *Scheduler) Defer(fn func()) {
	s.queue = append(s.queue, fn)
}

// AfterFunc schedules fn to run once the clock has advanced by d. A
// non-positive delay queues fn as an immediate task instead, so it runs on
// the next Flush.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{s: s, fn: fn, seq: s.seq}
	if d <= 0 {
		t.queued = true
		s.Defer(func() {
			if !t.stopped {
				t.fn()
			}
		})
		return t
	}
	t.deadline = s.now.Add(d)
	s.timers = append(s.timers, t)
	return t
}

// Flush drains the task queue, including tasks queued by tasks it runs.
// Timers are not fired; use Advance for that.
func (s *Scheduler) Flush() {
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
	}
}

// Advance flushes the task queue, then moves the clock forward by d, firing
// every timer whose deadline falls within the window in deadline order
// (schedule order on ties) and flushing after each. The clock ends exactly
// d later even if no timer fired.
func (s *Scheduler) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := s.now.Add(d)
	s.Flush()
	for {
		next := s.dueBefore(target)
		if next == nil {
			break
		}
		if next.deadline.After(s.now) {
			s.now = next.deadline
		}
		next.stopped = true
		next.fn()
		s.Flush()
	}
	s.now = target
}

// dueBefore removes and returns the earliest pending timer with a deadline
// at or before target, nil if none.
func (s *Scheduler) dueBefore(target time.Time) *Timer {
	best := -1
	for i, t := range s.timers {
		if t.deadline.After(target) {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		b := s.timers[best]
		if t.deadline.Before(b.deadline) || (t.deadline.Equal(b.deadline) && t.seq < b.seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	t := s.timers[best]
	s.timers = append(s.timers[:best:best], s.timers[best+1:]...)
	return t
}

// Pending returns the number of queued tasks plus pending timers. Useful in
// tests to assert the world has gone quiet.
func (s *Scheduler) Pending() int {
	return len(s.queue) + len(s.timers)
}
