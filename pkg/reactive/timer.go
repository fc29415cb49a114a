package reactive

import (
	"log/slog"
	"sort"
	"time"

	"github.com/lumina-dev/lumina/internal/errors"
)

// timer is one callback scheduled with After.
type timer struct {
	id   uint64
	due  time.Time
	fn   func()
	done bool
}

// SetClock replaces the clock used by After and Tick. nil restores
// time.Now. Tests use it to step time by hand.
func SetClock(now func() time.Time) {
	rt.now = now
}

func (r *runtime) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// After schedules fn to run from Tick once d has elapsed. The returned
// function cancels it; cancelling a timer that already ran is a no-op.
//
// Timers never fire on their own goroutine. The host loop calls Tick, so fn
// runs on the UI goroutine as one runtime task with no owner.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    if open.Get() {
//	        return nil
//	    }
//	    return After(200*time.Millisecond, func() { mounted.Set(false) })
//	})
func After(d time.Duration, fn func()) (cancel func()) {
	rt.nextTimer++
	t := &timer{id: rt.nextTimer, due: rt.clock().Add(d), fn: fn}
	rt.timers = append(rt.timers, t)
	return func() { rt.cancelTimer(t) }
}

// NextTimer reports how long until the earliest timer is due. ok is false
// when nothing is scheduled.
func NextTimer() (d time.Duration, ok bool) {
	if len(rt.timers) == 0 {
		return 0, false
	}
	due := rt.timers[0].due
	for _, t := range rt.timers[1:] {
		if t.due.Before(due) {
			due = t.due
		}
	}
	if d = due.Sub(rt.clock()); d < 0 {
		d = 0
	}
	return d, true
}

func (r *runtime) cancelTimer(t *timer) {
	if t.done {
		return
	}
	t.done = true
	for i, existing := range r.timers {
		if existing == t {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

// runTimers runs every timer due now, earliest first. Timers scheduled by a
// running callback wait for the next Tick even when already due.
func (r *runtime) runTimers() {
	if len(r.timers) == 0 {
		return
	}
	now := r.clock()
	var due []*timer
	keep := r.timers[:0]
	for _, t := range r.timers {
		if t.due.After(now) {
			keep = append(keep, t)
		} else {
			due = append(due, t)
		}
	}
	r.timers = keep
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	for _, t := range due {
		// an earlier callback may have cancelled it
		if t.done {
			continue
		}
		t.done = true
		r.safeTimer(t.fn)
	}
}

func (r *runtime) safeTimer(fn func()) {
	r.enter()
	defer r.exit()
	defer func() {
		if p := recover(); p != nil {
			r.report(slog.LevelError, errors.FromPanic("E006", p))
		}
	}()
	pop := r.push(frame{})
	defer pop()
	fn()
}
