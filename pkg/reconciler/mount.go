package reconciler

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// Mount is one mounted node tree together with the owner scope that holds
// the effects created while it rendered.
type Mount struct {
	id        uint64
	h         host.Host
	owner     *reactive.Owner
	root      *Fiber
	container host.Instance
	nested    bool
	disposed  bool
}

var (
	nextMountID uint64
	live        = make(map[uint64]*Mount)
)

// ID returns the process-unique id of the mount.
func (m *Mount) ID() uint64 { return m.id }

// Root returns the root fiber, or nil for an empty tree.
func (m *Mount) Root() *Fiber {
	if m == nil {
		return nil
	}
	return m.root
}

// Nested reports whether the mount was created inside another owner scope,
// for example by a list primitive rendering an item.
func (m *Mount) Nested() bool { return m.nested }

// Disposed reports whether the mount has been torn down.
func (m *Mount) Disposed() bool { return m.disposed }

// Dispose disposes the owner scope, detaches the mount's top-level
// instances from its container, if any, and destroys every instance.
// Disposing twice is a no-op.
func (m *Mount) Dispose() {
	if m.disposed {
		return
	}
	end := startSpan("lumina.unmount", attribute.Int64("lumina.mount", int64(m.id)))
	m.owner.Dispose()
	end(nil, nil)
}

// teardown is the last cleanup of the owner scope, so it also runs when an
// enclosing owner is disposed.
func (m *Mount) teardown() {
	if m.disposed {
		return
	}
	m.disposed = true
	delete(live, m.id)
	if m.root == nil {
		return
	}
	if m.container != nil {
		for _, inst := range m.root.Instances() {
			m.h.RemoveChild(m.container, inst)
		}
	}
	destroy(m.h, m.root)
	m.root = nil
}

// Mounts returns every live mount, in no particular order.
func Mounts() []*Mount {
	out := make([]*Mount, 0, len(live))
	for _, m := range live {
		out = append(out, m)
	}
	return out
}

// mount reconciles node in a new owner scope parented to the current owner.
// When container is non-nil, the top-level instances are appended to it
// before the scope's mount callbacks run. On error, including a panic while
// reconciling, the partial tree is torn down and the error returned.
func mount(node *vnode.Node, container host.Instance) (*Mount, error) {
	h, err := host.Current()
	if err != nil {
		return nil, err
	}

	nextMountID++
	m := &Mount{
		id:        nextMountID,
		h:         h,
		owner:     reactive.NewOwner(),
		container: container,
		nested:    !reactive.CurrentOwner().IsZero(),
	}
	live[m.id] = m

	b := &builder{h: h}
	m.owner.Run(func() {
		// render props and hosts may panic outside any component
		defer func() {
			if p := recover(); p != nil {
				err = errors.FromPanic("E102", p)
				m.root = nil
				b.abandon()
			}
		}()
		m.root, err = b.reconcile(node, nil, 0)
		if err != nil || container == nil || m.root == nil {
			return
		}
		for _, inst := range m.root.Instances() {
			h.AppendChild(container, inst)
		}
	})
	m.owner.OnCleanup(m.teardown)
	if err != nil {
		m.container = nil
		m.owner.Dispose()
		return nil, err
	}

	n := m.root.Count()
	obs.Mounted(n)
	log().Log(context.Background(), slog.LevelDebug, "mounted",
		"mount", m.id, "fibers", n, "attached", container != nil)
	return m, nil
}

// Render mounts node without attaching it anywhere. Window elements show
// themselves; other top-level instances stay detached.
func Render(node *vnode.Node) (m *Mount, err error) {
	end := startSpan("lumina.render")
	defer func() { end(m.Root(), err) }()
	return mount(node, nil)
}

// RenderChild mounts node and appends its top-level instances to
// container. The returned function detaches and destroys them and disposes
// every effect the subtree created.
func RenderChild(node *vnode.Node, container host.Instance) (dispose func(), err error) {
	end := startSpan("lumina.render_child")
	var m *Mount
	defer func() { end(m.Root(), err) }()

	m, err = mount(node, container)
	if err != nil {
		return func() {}, err
	}
	return m.Dispose, nil
}

// Root mounts trees into a fixed container. Every Render is a fresh mount:
// the previous tree is torn down first.
type Root struct {
	container host.Instance
	current   *Mount
}

// CreateRoot returns a root for container.
func CreateRoot(container host.Instance) *Root {
	return &Root{container: container}
}

// Render unmounts the current tree and mounts node into the container.
func (r *Root) Render(node *vnode.Node) (err error) {
	end := startSpan("lumina.root.render")
	defer func() { end(r.Fiber(), err) }()

	r.Unmount()
	m, err := mount(node, r.container)
	if err != nil {
		return err
	}
	r.current = m
	return nil
}

// Unmount tears down the current tree, leaves first. It is a no-op when
// nothing is mounted.
func (r *Root) Unmount() {
	if r.current == nil {
		return
	}
	r.current.Dispose()
	r.current = nil
}

// Fiber returns the root fiber of the current tree, or nil.
func (r *Root) Fiber() *Fiber {
	if r.current == nil {
		return nil
	}
	return r.current.Root()
}
