package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

// WindowTag is the element tag of top-level windows. Window instances are
// shown once their children are attached.
const WindowTag = "window"

// builder walks one node tree against one host.
type builder struct {
	h host.Host
	// made holds every fiber with an instance, in creation order
	made []*Fiber
}

// abandon releases every instance created so far, newest first. It is used
// when a panic left no fiber tree to tear down.
func (b *builder) abandon() {
	for i := len(b.made) - 1; i >= 0; i-- {
		release(b.h, b.made[i])
	}
	b.made = nil
}

// reconcile mounts node. On error the partially built fiber is still
// returned so the caller can tear it down.
func (b *builder) reconcile(node *vnode.Node, parent *Fiber, index int) (*Fiber, error) {
	if node == nil {
		return nil, nil
	}
	switch node.Kind {
	case vnode.KindText:
		return b.text(node, parent, index)
	case vnode.KindFragment:
		f := &Fiber{Kind: FiberFragment, Key: keyOr(node.Key, index), Parent: parent, Index: index}
		return f, b.children(f, node.Children)
	case vnode.KindElement:
		return b.element(node, parent, index)
	case vnode.KindComponent:
		return b.component(node, parent, index)
	case vnode.KindRenderProp:
		if node.Render == nil {
			return nil, nil
		}
		return b.reconcile(node.Render(), parent, index)
	}
	return nil, errors.New("E104").WithSubject(node.Kind.String())
}

func (b *builder) text(node *vnode.Node, parent *Fiber, index int) (*Fiber, error) {
	inst, err := b.h.CreateTextInstance(node.Text)
	if err != nil {
		return nil, err
	}
	obs.InstanceCreated("text")
	f := &Fiber{
		Kind:     FiberText,
		Key:      keyOr("", index),
		Text:     node.Text,
		Instance: inst,
		Parent:   parent,
		Index:    index,
	}
	b.made = append(b.made, f)
	return f, nil
}

func (b *builder) element(node *vnode.Node, parent *Fiber, index int) (*Fiber, error) {
	inst, err := b.h.CreateInstance(node.Tag, node.Props)
	if err != nil {
		return nil, err
	}
	obs.InstanceCreated(node.Tag)
	f := &Fiber{
		Kind:     FiberElement,
		Key:      keyOr(node.Key, index),
		Tag:      node.Tag,
		Instance: inst,
		Parent:   parent,
		Index:    index,
	}
	b.made = append(b.made, f)
	if err := b.children(f, node.Children); err != nil {
		return f, err
	}
	if node.Tag == WindowTag {
		b.h.ShowInstance(inst)
	}
	return f, nil
}

// children mounts nodes as children of f in order, attaching their
// instances to f's instance when it has one.
func (b *builder) children(f *Fiber, nodes []*vnode.Node) error {
	for i, n := range nodes {
		child, err := b.reconcile(n, f, i)
		if child != nil {
			f.Children = append(f.Children, child)
			if f.Instance != nil {
				for _, inst := range child.Instances() {
					b.h.AppendChild(f.Instance, inst)
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) component(node *vnode.Node, parent *Fiber, index int) (*Fiber, error) {
	props := make(vnode.Props, len(node.Props)+1)
	for k, v := range node.Props {
		props[k] = v
	}
	if len(node.Children) == 1 && node.Children[0].Kind == vnode.KindRenderProp {
		props[vnode.ChildrenProp] = node.Children[0].Render
	} else {
		props[vnode.ChildrenProp] = node.Children
	}

	f := &Fiber{
		Kind:   FiberComponent,
		Key:    keyOr(node.Key, index),
		Tag:    node.Name,
		Parent: parent,
		Index:  index,
		Props:  props,
	}

	child, err := b.renderComponent(node, f, props)
	if child != nil {
		f.Children = []*Fiber{child}
	}
	if err == nil {
		return f, nil
	}

	obs.ComponentFailed(node.Name)
	if !errors.HasCode(err, "E102") && !errors.HasCode(err, "E101") {
		err = errors.New("E102").WithSubject(node.Name).Wrap(err)
	}
	handler := CurrentErrorHandler()
	if handler == nil {
		return f, err
	}

	// the handler owns the error; drop whatever was built
	for _, c := range f.Children {
		destroy(b.h, c)
	}
	f.Children = nil
	if le, ok := err.(*errors.LuminaError); ok {
		log().Log(context.Background(), slog.LevelWarn, "component error handled", le.LogAttrs()...)
	}
	handler(err)
	return f, nil
}

// renderComponent calls the component function, converting panics into
// errors, and mounts what it returns.
func (b *builder) renderComponent(node *vnode.Node, f *Fiber, props vnode.Props) (child *Fiber, err error) {
	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = perr
			} else {
				err = fmt.Errorf("panic: %v", p)
			}
		}
	}()

	if node.Comp == nil {
		return nil, errors.New("E104").WithSubject(node.Name)
	}
	start := time.Now()
	out, err := node.Comp(props)
	obs.ComponentRendered(node.Name, time.Since(start))
	if err != nil {
		return nil, err
	}
	return b.reconcile(out, f, 0)
}

func keyOr(key string, index int) string {
	if key != "" {
		return key
	}
	return fmt.Sprint(index)
}
