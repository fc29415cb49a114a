package reactive

import (
	"log/slog"

	"github.com/lumina-dev/lumina/internal/errors"
)

// OnMount schedules fn to run once, after the current synchronous runtime
// task (the outermost effect run, batch, flush or owner scope) returns.
// Called outside any task, fn waits for the next task to finish or for
// Tick. fn is not tracked and cannot be cancelled once scheduled.
//
// Example:
//
//	OnMount(func() {
//	    fmt.Println("Component mounted")
//	})
func OnMount(fn func()) {
	rt.mountQueue = append(rt.mountQueue, fn)
}

// Tick runs queued mount callbacks and every timer that is due, when no
// runtime task is active. Host event loops call it once per iteration.
func Tick() {
	if rt.taskDepth == 0 {
		rt.drainMounts()
		rt.runTimers()
	}
}

// Task runs fn as one synchronous runtime task. Mount callbacks scheduled
// while fn runs are invoked after the outermost task returns.
func Task(fn func()) {
	rt.enter()
	defer rt.exit()
	fn()
}

// drainMounts runs mount callbacks until the queue stays empty.
func (r *runtime) drainMounts() {
	if r.draining {
		return
	}
	r.draining = true
	defer func() { r.draining = false }()

	for len(r.mountQueue) > 0 {
		queue := r.mountQueue
		r.mountQueue = nil
		for _, fn := range queue {
			r.safeMount(fn)
		}
	}
}

func (r *runtime) safeMount(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.report(slog.LevelError, errors.FromPanic("E003", p))
		}
	}()
	pop := r.push(frame{})
	defer pop()
	fn()
}
