package reactive

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumina-dev/lumina/internal/errors"
)

// DebugMode enables extra diagnostics (for example reporting OnCleanup calls
// that have no owner at WARN instead of DEBUG). Set it at startup.
var DebugMode bool

// Handle addresses a reactive context (effect or owner scope) in the
// runtime arena. The zero Handle refers to nothing.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h refers to nothing.
func (h Handle) IsZero() bool {
	return h.index == 0
}

// reactiveContext is one arena slot. Parent and children are stored as
// handles so disposal never has to break pointer cycles.
type reactiveContext struct {
	gen uint32

	// fn is nil for owner scopes.
	fn func() Cleanup

	cleanups []Cleanup

	// deps are the subscriber sets of every signal read during the last run.
	deps []*subscriberSet

	active    bool
	disposing bool

	// tracking contexts subscribe to the signals they read.
	tracking bool

	parent   Handle
	children []Handle

	runs uint64
}

// frame is one entry of the owner/listener stack.
type frame struct {
	owner    Handle
	listener Handle
}

// runtime holds the process-wide reactive state.
type runtime struct {
	slots []*reactiveContext
	free  []uint32

	stack []frame

	batchDepth int
	flushing   bool
	pending    []Handle

	taskDepth  int
	draining   bool
	mountQueue []func()

	timers    []*timer
	nextTimer uint64
	now       func() time.Time

	live int

	logger   *slog.Logger
	observer Observer
}

var rt = newRuntime()

func newRuntime() *runtime {
	return &runtime{
		// slot 0 backs the zero Handle and is never handed out
		slots:    []*reactiveContext{nil},
		observer: nopObserver{},
	}
}

// SetLogger sets the logger used to report recovered panics.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	rt.logger = l
}

func (r *runtime) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// report logs a structured runtime error.
func (r *runtime) report(level slog.Level, err *errors.LuminaError) {
	r.log().Log(context.Background(), level, err.Message, err.LogAttrs()...)
}

// alloc creates a new context parented to parent.
func (r *runtime) alloc(fn func() Cleanup, tracking bool, parent Handle) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, &reactiveContext{})
	}

	c := r.slots[idx]
	gen := c.gen + 1
	*c = reactiveContext{
		gen:      gen,
		fn:       fn,
		active:   true,
		tracking: tracking,
		parent:   parent,
	}
	h := Handle{index: idx, gen: gen}

	if p := r.get(parent); p != nil {
		p.children = append(p.children, h)
	}
	r.live++
	return h
}

// get resolves a handle, returning nil for stale or zero handles.
func (r *runtime) get(h Handle) *reactiveContext {
	if h.index == 0 || int(h.index) >= len(r.slots) {
		return nil
	}
	c := r.slots[h.index]
	if c.gen != h.gen {
		return nil
	}
	return c
}

// release returns a disposed slot to the free list. Bumping the generation
// invalidates every outstanding handle to it.
func (r *runtime) release(h Handle) {
	c := r.slots[h.index]
	*c = reactiveContext{gen: c.gen + 1}
	r.free = append(r.free, h.index)
	r.live--
}

func (r *runtime) top() frame {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1]
	}
	return frame{}
}

// push makes f the current frame. The returned func restores the previous
// one and must be deferred by the caller.
func (r *runtime) push(f frame) func() {
	r.stack = append(r.stack, f)
	depth := len(r.stack)
	return func() {
		r.stack = r.stack[:depth-1]
	}
}

// track links the current listener and subs in both directions.
func (r *runtime) track(subs *subscriberSet) {
	h := r.top().listener
	c := r.get(h)
	if c == nil || !c.active || !c.tracking {
		return
	}
	if !subs.add(h) {
		return
	}
	c.deps = append(c.deps, subs)
}

// schedule queues every active subscriber and flushes outside of batches.
func (r *runtime) schedule(subs *subscriberSet) {
	for _, h := range subs.handles {
		if c := r.get(h); c != nil && c.active {
			r.addPending(h)
		}
	}
	if r.batchDepth == 0 {
		r.flush()
	}
}

func (r *runtime) addPending(h Handle) {
	for _, p := range r.pending {
		if p == h {
			return
		}
	}
	r.pending = append(r.pending, h)
}

func (r *runtime) removePending(h Handle) {
	for i, p := range r.pending {
		if p == h {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

// flush runs pending effects pass by pass. Effects queued while a pass runs
// wait for the next pass of the same loop.
func (r *runtime) flush() {
	if r.flushing {
		return
	}
	r.flushing = true
	r.enter()
	defer func() {
		r.flushing = false
		r.exit()
	}()

	for len(r.pending) > 0 {
		pass := r.pending
		r.pending = nil
		r.observer.FlushPass(len(pass))
		for _, h := range pass {
			if c := r.get(h); c != nil && c.active {
				r.run(h)
			}
		}
	}
}

// clearDeps unsubscribes h from every signal it read.
func (r *runtime) clearDeps(h Handle, c *reactiveContext) {
	for _, subs := range c.deps {
		subs.remove(h)
	}
	c.deps = nil
}

// runCleanups invokes and clears cleanups in registration order.
func (r *runtime) runCleanups(c *reactiveContext) {
	cleanups := c.cleanups
	c.cleanups = nil
	for _, fn := range cleanups {
		r.safeCleanup(fn)
	}
}

func (r *runtime) safeCleanup(fn Cleanup) {
	defer func() {
		if p := recover(); p != nil {
			r.observer.CleanupPanic()
			r.report(slog.LevelError, errors.FromPanic("E002", p))
		}
	}()
	fn()
}

// disposeChildren disposes every child created by the previous run.
func (r *runtime) disposeChildren(c *reactiveContext) {
	children := c.children
	c.children = nil
	for _, child := range children {
		r.dispose(child)
	}
}

// run executes an effect: tear down the previous run, then run fn with h as
// owner and listener.
func (r *runtime) run(h Handle) {
	c := r.get(h)
	if c == nil || !c.active || c.fn == nil {
		return
	}
	r.enter()
	defer r.exit()

	r.disposeChildren(c)
	r.runCleanups(c)
	r.clearDeps(h, c)
	r.removePending(h)
	if c = r.get(h); c == nil || !c.active {
		// a cleanup disposed this effect
		return
	}

	c.runs++
	start := time.Now()
	cleanup := r.invoke(h, c.fn)
	r.observer.EffectRun(time.Since(start))

	if cleanup == nil {
		return
	}
	if c := r.get(h); c != nil && c.active {
		c.cleanups = append(c.cleanups, cleanup)
		return
	}
	// disposed during its own run
	r.safeCleanup(cleanup)
}

// invoke calls fn with h pushed as the current frame, recovering panics.
func (r *runtime) invoke(h Handle, fn func() Cleanup) (cleanup Cleanup) {
	pop := r.push(frame{owner: h, listener: h})
	defer pop()
	defer func() {
		if p := recover(); p != nil {
			cleanup = nil
			r.observer.EffectPanic()
			r.report(slog.LevelError, errors.FromPanic("E001", p))
		}
	}()
	return fn()
}

// dispose tears down h and its subtree. Disposing twice is a no-op.
func (r *runtime) dispose(h Handle) {
	c := r.get(h)
	if c == nil || !c.active || c.disposing {
		return
	}
	c.disposing = true

	r.disposeChildren(c)
	r.runCleanups(c)
	r.clearDeps(h, c)
	r.removePending(h)

	if p := r.get(c.parent); p != nil {
		for i, child := range p.children {
			if child == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}

	c.active = false
	r.release(h)
	r.observer.ContextDisposed()
}

// enter marks the start of a synchronous runtime task.
func (r *runtime) enter() {
	r.taskDepth++
}

// exit ends a task; leaving the outermost one drains the mount queue.
func (r *runtime) exit() {
	r.taskDepth--
	if r.taskDepth == 0 {
		r.drainMounts()
	}
}

// Stats is a snapshot of runtime bookkeeping, mainly for tooling and tests.
type Stats struct {
	// Live is the number of active effects and owner scopes.
	Live int
	// Pending is the number of effects waiting for a flush.
	Pending int
	// BatchDepth is the current Batch nesting depth.
	BatchDepth int
	// Mounts is the number of queued OnMount callbacks.
	Mounts int
	// Timers is the number of callbacks scheduled with After.
	Timers int
}

// CurrentStats returns a snapshot of the runtime bookkeeping.
func CurrentStats() Stats {
	return Stats{
		Live:       rt.live,
		Pending:    len(rt.pending),
		BatchDepth: rt.batchDepth,
		Mounts:     len(rt.mountQueue),
		Timers:     len(rt.timers),
	}
}
