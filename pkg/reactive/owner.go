package reactive

// Owner is an untracked scope that owns effects and cleanups.
// When an Owner is disposed, every effect, child owner and cleanup created
// under it is disposed too. Reads inside an owner scope never subscribe it;
// only effects track.
//
// Owners form the same tree as effects: an Owner created while an effect or
// another Owner runs becomes its child.
type Owner struct {
	h Handle
}

// NewOwner creates an owner scope parented to the current owner, if any.
func NewOwner() *Owner {
	return &Owner{h: rt.alloc(nil, false, rt.top().owner)}
}

// NewRootOwner creates an owner scope with no parent.
func NewRootOwner() *Owner {
	return &Owner{h: rt.alloc(nil, false, Handle{})}
}

// Run runs fn with o as the current owner and no tracking listener.
// A panic in fn propagates to the caller after the owner stack is restored.
func (o *Owner) Run(fn func()) {
	if o.IsDisposed() {
		return
	}
	rt.enter()
	defer rt.exit()
	pop := rt.push(frame{owner: o.h})
	defer pop()
	fn()
}

// OnCleanup registers fn to run when o is disposed. If o is already
// disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	c := rt.get(o.h)
	if c == nil || !c.active {
		rt.safeCleanup(fn)
		return
	}
	c.cleanups = append(c.cleanups, fn)
}

// Dispose disposes the owner and everything it owns. Idempotent.
func (o *Owner) Dispose() {
	rt.enter()
	defer rt.exit()
	rt.dispose(o.h)
}

// IsDisposed reports whether the owner has been disposed.
func (o *Owner) IsDisposed() bool {
	c := rt.get(o.h)
	return c == nil || !c.active
}

// Handle returns the arena handle of the owner.
func (o *Owner) Handle() Handle {
	return o.h
}

// Children returns the number of live effects and owners directly owned.
func (o *Owner) Children() int {
	if c := rt.get(o.h); c != nil {
		return len(c.children)
	}
	return 0
}

// CreateRoot runs fn inside a new parentless owner scope and returns its
// result. The scope lives until fn's dispose argument is called.
//
// Example:
//
//	CreateRoot(func(dispose func()) struct{} {
//	    CreateEffect(...)
//	    defer dispose()
//	    return struct{}{}
//	})
func CreateRoot[T any](fn func(dispose func()) T) T {
	o := NewRootOwner()
	var result T
	o.Run(func() {
		result = fn(o.Dispose)
	})
	return result
}

// CurrentOwner returns the handle of the running effect or owner scope.
// The zero Handle means no owner.
func CurrentOwner() Handle {
	return rt.top().owner
}

// RunWithOwner runs fn with the context addressed by h as the current owner
// (without tracking). Stale handles run fn with no owner.
func RunWithOwner(h Handle, fn func()) {
	if rt.get(h) == nil {
		h = Handle{}
	}
	pop := rt.push(frame{owner: h})
	defer pop()
	fn()
}
