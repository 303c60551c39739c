// Package debounce coalesces bursts of calls into a single deferred action.
//
// A Debouncer holds any number of independent buckets. Each bucket is a small
// state machine: idle, or pending with a deadline and the most recent action.
// TryUpdate moves a bucket to pending (or pushes its deadline out); expiry runs
// the action and returns the bucket to idle.
package debounce

import (
	"sort"
	"sync"
	"time"
)

type Debouncer struct {
	window time.Duration
	sched  Scheduler

	mu      sync.Mutex
	seq     uint64
	buckets map[string]*bucket
}

type bucket struct {
	deadline time.Time
	seq      uint64
	action   func()
	timer    Timer
}

type Option func(*Debouncer)

// WithScheduler replaces the wall-clock scheduler (tests, synchronous CLI runs).
func WithScheduler(s Scheduler) Option {
	return func(d *Debouncer) {
		if s != nil {
			d.sched = s
		}
	}
}

func New(window time.Duration, opts ...Option) *Debouncer {
	if window < 0 {
		window = 0
	}
	d := &Debouncer{
		window:  window,
		sched:   RealScheduler{},
		buckets: map[string]*bucket{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Debouncer) Window() time.Duration { return d.window }

// TryUpdate schedules action to run once the bucket has been quiet for the
// window. A call for a bucket that is already pending restarts its window and
// replaces the pending action; the replaced action never runs.
func (d *Debouncer) TryUpdate(action func(), name string) {
	if d == nil || action == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	b := d.buckets[name]
	if b == nil {
		b = &bucket{}
		d.buckets[name] = b
	} else if b.timer != nil {
		b.timer.Stop()
	}
	d.seq++
	b.seq = d.seq
	b.action = action
	b.deadline = d.sched.Now().Add(d.window)
	b.timer = d.sched.AfterFunc(d.window, d.fire)
}

// Pending reports whether bucket name has an action waiting.
func (d *Debouncer) Pending(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.buckets[name]
	return ok
}

// Len returns the number of pending buckets.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buckets)
}

// Flush runs every pending action immediately, in deadline order.
func (d *Debouncer) Flush() {
	if d == nil {
		return
	}
	d.mu.Lock()
	due := make([]*bucket, 0, len(d.buckets))
	for name, b := range d.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
		due = append(due, b)
		delete(d.buckets, name)
	}
	d.mu.Unlock()

	run(due)
}

// Stop drops every pending action without running it.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, b := range d.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
		delete(d.buckets, name)
	}
}

// fire runs every bucket whose deadline has passed. Timers are not matched to
// buckets: a stale timer finds nothing due and returns, and a timer that fires
// early relative to a sibling bucket still runs that sibling first when its
// deadline is earlier.
func (d *Debouncer) fire() {
	d.mu.Lock()
	now := d.sched.Now()
	var due []*bucket
	for name, b := range d.buckets {
		if b.deadline.After(now) {
			continue
		}
		due = append(due, b)
		delete(d.buckets, name)
	}
	d.mu.Unlock()

	run(due)
}

// run invokes actions outside the lock so an action may call TryUpdate.
func run(due []*bucket) {
	sort.Slice(due, func(i, j int) bool {
		if !due[i].deadline.Equal(due[j].deadline) {
			return due[i].deadline.Before(due[j].deadline)
		}
		return due[i].seq < due[j].seq
	})
	for _, b := range due {
		b.action()
	}
}
