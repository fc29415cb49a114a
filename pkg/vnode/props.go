package vnode

// ChildrenProp is the prop under which a component receives its children.
const ChildrenProp = "children"

// Children returns the child nodes passed to a component. A single render
// prop child is returned as a one-element RenderProp list.
func (p Props) Children() []*Node {
	switch c := p[ChildrenProp].(type) {
	case []*Node:
		return c
	case func() *Node:
		return []*Node{RenderProp(c)}
	case *Node:
		return []*Node{c}
	}
	return nil
}

// RenderFunc returns the render-prop child passed to a component, if the
// component was given exactly one func() *Node child.
func (p Props) RenderFunc() (func() *Node, bool) {
	fn, ok := p[ChildrenProp].(func() *Node)
	return fn, ok
}

// Prop reads p[key] as a T.
func Prop[T any](p Props, key string) (T, bool) {
	v, ok := p[key].(T)
	return v, ok
}

// PropOr reads p[key] as a T, falling back to def.
func PropOr[T any](p Props, key string, def T) T {
	if v, ok := p[key].(T); ok {
		return v
	}
	return def
}

// Accessor reads p[key] as either a static T or a func() T and returns a
// read function. Missing keys read as def.
func Accessor[T any](p Props, key string, def T) func() T {
	switch v := p[key].(type) {
	case func() T:
		return v
	case T:
		return func() T { return v }
	}
	return func() T { return def }
}
