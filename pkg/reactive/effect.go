package reactive

import (
	"log/slog"

	"github.com/lumina-dev/lumina/internal/errors"
)

// Cleanup is a function run before an effect re-runs and when it is disposed.
type Cleanup func()

// Effect is a handle to a reactive computation created by CreateEffect.
//
// Each run first disposes the children created by the previous run, runs and
// clears the registered cleanups, and drops every dependency, so the signals
// read by the new run are the only ones it stays subscribed to.
type Effect struct {
	h Handle
}

// CreateEffect creates an effect owned by the current owner (if any) and
// runs it synchronously. It re-runs whenever a signal read during its most
// recent run changes. A panic in fn is recovered and logged; the effect is
// not retried and keeps waiting for its next trigger.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	h := rt.alloc(fn, true, rt.top().owner)
	rt.run(h)
	return &Effect{h: h}
}

// Watch creates an effect whose body needs no cleanup.
func Watch(fn func()) *Effect {
	return CreateEffect(func() Cleanup {
		fn()
		return nil
	})
}

// Dispose disposes the effect, its children and its cleanups.
// Disposing twice is a no-op.
func (e *Effect) Dispose() {
	rt.dispose(e.h)
}

// Active reports whether the effect has not been disposed.
func (e *Effect) Active() bool {
	c := rt.get(e.h)
	return c != nil && c.active
}

// Runs returns how many times the effect body has started.
// It returns 0 once the effect is disposed.
func (e *Effect) Runs() uint64 {
	if c := rt.get(e.h); c != nil {
		return c.runs
	}
	return 0
}

// Handle returns the arena handle of the effect.
func (e *Effect) Handle() Handle {
	return e.h
}

// OnCleanup registers fn on the current owner (the running effect or owner
// scope). fn runs before the owner's next run and when it is disposed.
// Called with no owner, fn is discarded and the call is reported.
func OnCleanup(fn func()) {
	c := rt.get(rt.top().owner)
	if c == nil || !c.active {
		level := slog.LevelDebug
		if DebugMode {
			level = slog.LevelWarn
		}
		rt.report(level, errors.New("E005"))
		return
	}
	c.cleanups = append(c.cleanups, fn)
}

// Untracked runs fn without subscribing the current effect to the signals
// fn reads. The current owner is kept, so effects created inside fn are
// still owned.
func Untracked(fn func()) {
	pop := rt.push(frame{owner: rt.top().owner})
	defer pop()
	fn()
}

// UntrackedGet reads a signal's value without creating a dependency.
func UntrackedGet[T any](s *Signal[T]) T {
	return s.Peek()
}
