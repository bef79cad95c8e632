// Package frame schedules work on the host's render loop. Nothing in here
// spawns goroutines or takes locks: callbacks run inline from Poll, which the
// main loop calls once per frame, so scheduled work observes the same
// single-threaded world as input handlers.
package frame

import (
	"sort"
	"time"
)

// Scheduler runs fn once d has elapsed. The returned function cancels the
// callback if it has not yet run, and reports whether it did so.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type timer struct {
	id  uint64
	due time.Time
	fn  func()
}

// Loop is a frame-polled Scheduler.
type Loop struct {
	now    func() time.Time
	timers []*timer // sorted by (due, id)
	nextID uint64
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop reading time from now. A nil now uses time.Now.
func NewLoop(now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{now: now}
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := &timer{id: l.nextID, due: l.now().Add(d), fn: fn}
	l.nextID++

	i := sort.Search(len(l.timers), func(i int) bool {
		return t.due.Before(l.timers[i].due)
	})
	l.timers = append(l.timers, nil)
	copy(l.timers[i+1:], l.timers[i:])
	l.timers[i] = t

	return func() bool { return l.remove(t.id) }
}

func (l *Loop) remove(id uint64) bool {
	for i, t := range l.timers {
		if t.id == id {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Poll runs every callback whose deadline has passed, in deadline order, and
// returns how many ran. Callbacks scheduled by a callback with a zero delay
// run within the same Poll.
func (l *Loop) Poll() int {
	ran := 0
	for len(l.timers) > 0 {
		t := l.timers[0]
		if t.due.After(l.now()) {
			break // not yet due
		}
		l.timers = l.timers[1:]
		t.fn()
		ran++
	}
	return ran
}

// Pending returns the number of callbacks still waiting to run.
func (l *Loop) Pending() int { return len(l.timers) }
