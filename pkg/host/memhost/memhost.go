// Package memhost is an in-memory Host implementation.
//
// It keeps a widget tree and an operation log instead of talking to a real
// toolkit, which makes it the host of choice for tests, the inspector and
// headless rendering.
package memhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// DefaultTags are the widget tags accepted by a Host created with New.
var DefaultTags = []string{
	"box", "centerbox", "label", "button", "icon", "entry", "slider",
	"switch", "revealer", "stack", "scrollable", "menubutton", "window",
	"image", "overlay", "eventbox", "separator", "progressbar", "levelbar",
}

// Widget is one in-memory instance.
type Widget struct {
	ID       int
	Tag      string
	Text     string
	Props    map[string]any
	Parent   *Widget
	Children []*Widget

	Shown     bool
	Disposed  bool
	Destroyed bool

	// Sets counts prop writes per key, including the initial one.
	Sets map[string]int

	handlers map[host.HandlerID]handler
}

type handler struct {
	event string
	fn    any
}

// Prop returns the current value of a prop.
func (w *Widget) Prop(key string) any {
	return w.Props[key]
}

// Visible reports the "visible" prop. Widgets without one are visible.
func (w *Widget) Visible() bool {
	v, ok := w.Props["visible"].(bool)
	return !ok || v
}

// Handlers returns the number of connected handlers.
func (w *Widget) Handlers() int {
	return len(w.handlers)
}

// Host is an in-memory host.Host. It is not safe for concurrent use.
type Host struct {
	tags    map[string]bool
	nextID  int
	nextSig host.HandlerID
	ops     []string
	widgets []*Widget
	windows []*Widget
}

// New creates a host that accepts DefaultTags plus extra.
func New(extra ...string) *Host {
	h := &Host{tags: make(map[string]bool)}
	for _, t := range DefaultTags {
		h.tags[t] = true
	}
	for _, t := range extra {
		h.tags[t] = true
	}
	return h
}

// Install creates a host with New and registers it with host.Set.
func Install(extra ...string) *Host {
	h := New(extra...)
	host.Set(h)
	return h
}

func (h *Host) record(format string, args ...any) {
	h.ops = append(h.ops, fmt.Sprintf(format, args...))
}

func (h *Host) widget(inst host.Instance) *Widget {
	w, ok := inst.(*Widget)
	if !ok {
		panic(fmt.Sprintf("memhost: foreign instance %T", inst))
	}
	return w
}

func (h *Host) newWidget(tag string) *Widget {
	h.nextID++
	w := &Widget{
		ID:       h.nextID,
		Tag:      tag,
		Props:    make(map[string]any),
		Sets:     make(map[string]int),
		handlers: make(map[host.HandlerID]handler),
	}
	h.widgets = append(h.widgets, w)
	return w
}

// CreateInstance implements host.Host.
func (h *Host) CreateInstance(tag string, props vnode.Props) (host.Instance, error) {
	if !h.tags[tag] {
		return nil, errors.New("E103").WithSubject(tag)
	}
	w := h.newWidget(tag)
	h.record("create %s#%d", tag, w.ID)
	if tag == "window" {
		h.windows = append(h.windows, w)
	}
	host.BindProps(h, w, props, func(key string, value any) {
		w.Props[key] = value
		w.Sets[key]++
	})
	return w, nil
}

// CreateTextInstance implements host.Host.
func (h *Host) CreateTextInstance(text string) (host.Instance, error) {
	w := h.newWidget("label")
	w.Text = text
	w.Props["label"] = text
	h.record("text %q#%d", text, w.ID)
	return w, nil
}

// AppendChild implements host.Host.
func (h *Host) AppendChild(parent, child host.Instance) {
	p, c := h.widget(parent), h.widget(child)
	detach(c)
	c.Parent = p
	p.Children = append(p.Children, c)
	h.record("append %d<-%d", p.ID, c.ID)
}

// InsertBefore implements host.Host.
func (h *Host) InsertBefore(parent, child host.Instance, index int) {
	p, c := h.widget(parent), h.widget(child)
	detach(c)
	if index < 0 {
		index = 0
	}
	if index > len(p.Children) {
		index = len(p.Children)
	}
	c.Parent = p
	p.Children = append(p.Children, nil)
	copy(p.Children[index+1:], p.Children[index:])
	p.Children[index] = c
	h.record("insert %d<-%d@%d", p.ID, c.ID, index)
}

// RemoveChild implements host.Host.
func (h *Host) RemoveChild(parent, child host.Instance) {
	p, c := h.widget(parent), h.widget(child)
	if c.Parent != p {
		return
	}
	detach(c)
	h.record("remove %d-/>%d", p.ID, c.ID)
}

func detach(c *Widget) {
	p := c.Parent
	if p == nil {
		return
	}
	for i, existing := range p.Children {
		if existing == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	c.Parent = nil
}

// ConnectSignal implements host.Host.
func (h *Host) ConnectSignal(inst host.Instance, event string, fn any) host.HandlerID {
	w := h.widget(inst)
	h.nextSig++
	w.handlers[h.nextSig] = handler{event: event, fn: fn}
	h.record("connect %d:%s", w.ID, event)
	return h.nextSig
}

// DisconnectSignal implements host.Host.
func (h *Host) DisconnectSignal(inst host.Instance, id host.HandlerID) {
	w := h.widget(inst)
	if hd, ok := w.handlers[id]; ok {
		delete(w.handlers, id)
		h.record("disconnect %d:%s", w.ID, hd.event)
	}
}

// ShowInstance implements host.Host.
func (h *Host) ShowInstance(inst host.Instance) {
	w := h.widget(inst)
	w.Shown = true
	h.record("show %d", w.ID)
}

// DisposeInstance implements host.Host.
func (h *Host) DisposeInstance(inst host.Instance) {
	w := h.widget(inst)
	w.Disposed = true
	h.record("dispose %d", w.ID)
}

// DestroyInstance implements host.Host.
func (h *Host) DestroyInstance(inst host.Instance) {
	w := h.widget(inst)
	detach(w)
	w.Destroyed = true
	h.record("destroy %d", w.ID)
}

// Emit calls every handler connected to event on w with args. Handlers of
// type func(), func(*Widget) and func(...any) are supported.
func (h *Host) Emit(w *Widget, event string, args ...any) int {
	ids := make([]host.HandlerID, 0, len(w.handlers))
	for id := range w.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	called := 0
	for _, id := range ids {
		hd := w.handlers[id]
		if hd.event != event {
			continue
		}
		switch fn := hd.fn.(type) {
		case func():
			fn()
		case func(*Widget):
			fn(w)
		case func(...any):
			fn(args...)
		default:
			continue
		}
		called++
	}
	return called
}

// NewContainer creates a detached box to mount into.
func (h *Host) NewContainer() *Widget {
	w := h.newWidget("box")
	h.record("container #%d", w.ID)
	return w
}

// Ops returns the operation log.
func (h *Host) Ops() []string {
	return append([]string(nil), h.ops...)
}

// ResetOps clears the operation log.
func (h *Host) ResetOps() {
	h.ops = nil
}

// Windows returns every window created so far.
func (h *Host) Windows() []*Widget {
	return append([]*Widget(nil), h.windows...)
}

// Live returns the number of widgets that have not been destroyed.
func (h *Host) Live() int {
	n := 0
	for _, w := range h.widgets {
		if !w.Destroyed {
			n++
		}
	}
	return n
}

// Find returns every live widget below root (inclusive) with the given tag,
// in depth-first order.
func Find(root *Widget, tag string) []*Widget {
	var out []*Widget
	var walk func(*Widget)
	walk = func(w *Widget) {
		if w.Tag == tag && !w.Destroyed {
			out = append(out, w)
		}
		for _, c := range w.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Dump renders the subtree rooted at w as an indented outline, one widget
// per line, props sorted by key.
func Dump(w *Widget) string {
	var b strings.Builder
	dump(&b, w, 0)
	return b.String()
}

func dump(b *strings.Builder, w *Widget, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(w.Tag)
	if w.Text != "" {
		fmt.Fprintf(b, " %q", w.Text)
	} else {
		keys := make([]string, 0, len(w.Props))
		for k := range w.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, " %s=%v", k, w.Props[k])
		}
	}
	if !w.Visible() {
		b.WriteString(" [hidden]")
	}
	b.WriteByte('\n')
	for _, c := range w.Children {
		dump(b, c, depth+1)
	}
}
