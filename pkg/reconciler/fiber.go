package reconciler

import (
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// FiberKind is the fiber type discriminator.
type FiberKind uint8

const (
	FiberText FiberKind = iota
	FiberFragment
	FiberElement
	FiberComponent
)

// String returns the string representation of the FiberKind.
func (k FiberKind) String() string {
	switch k {
	case FiberText:
		return "text"
	case FiberFragment:
		return "fragment"
	case FiberElement:
		return "element"
	case FiberComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Fiber is the mounted form of one virtual node. Text and element fibers
// own exactly one host instance; fragment and component fibers own none.
type Fiber struct {
	Kind     FiberKind
	Key      string
	Tag      string // element tag or component name
	Text     string
	Instance host.Instance
	Parent   *Fiber
	Children []*Fiber
	Index    int

	// Props are the resolved props a component was called with.
	Props vnode.Props
}

// Instances returns the top-level host instances of the subtree: f's own
// instance, or those of its children when f has none.
func (f *Fiber) Instances() []host.Instance {
	if f == nil {
		return nil
	}
	return collect(f, nil)
}

func collect(f *Fiber, out []host.Instance) []host.Instance {
	if f.Instance != nil {
		return append(out, f.Instance)
	}
	for _, c := range f.Children {
		out = collect(c, out)
	}
	return out
}

// Walk calls fn for f and every descendant, parents first.
func (f *Fiber) Walk(fn func(*Fiber)) {
	if f == nil {
		return
	}
	fn(f)
	for _, c := range f.Children {
		c.Walk(fn)
	}
}

// Count returns the number of fibers in the subtree.
func (f *Fiber) Count() int {
	n := 0
	f.Walk(func(*Fiber) { n++ })
	return n
}

// Snapshot is a serialisable view of a fiber subtree.
type Snapshot struct {
	Kind     string      `json:"kind"`
	Tag      string      `json:"tag,omitempty"`
	Key      string      `json:"key,omitempty"`
	Text     string      `json:"text,omitempty"`
	Children []*Snapshot `json:"children,omitempty"`
}

// Snapshot captures the subtree rooted at f.
func (f *Fiber) Snapshot() *Snapshot {
	if f == nil {
		return nil
	}
	s := &Snapshot{Kind: f.Kind.String(), Tag: f.Tag, Key: f.Key, Text: f.Text}
	for _, c := range f.Children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}

// destroy tears down every instance of the subtree, leaves first: each
// instance is disposed, then destroyed.
func destroy(h host.Host, f *Fiber) {
	for _, c := range f.Children {
		destroy(h, c)
	}
	release(h, f)
}

// release disposes and destroys f's own instance, once.
func release(h host.Host, f *Fiber) {
	if f.Instance == nil {
		return
	}
	h.DisposeInstance(f.Instance)
	h.DestroyInstance(f.Instance)
	obs.InstanceDestroyed()
	f.Instance = nil
}
