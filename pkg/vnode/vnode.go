package vnode

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText       Kind = iota // Plain text
	KindFragment               // Grouping without a host instance
	KindElement                // Host widget ("box", "label", ...)
	KindComponent              // Component function
	KindRenderProp             // Deferred child, func() *Node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindElement:
		return "Element"
	case KindComponent:
		return "Component"
	case KindRenderProp:
		return "RenderProp"
	default:
		return "Unknown"
	}
}

// Props holds element attributes, event handlers and component inputs.
type Props map[string]any

// ComponentFunc renders props into a node. A component signals failure by
// returning an error or by panicking.
type ComponentFunc func(Props) (*Node, error)

// Node is a virtual node. Nodes are never mutated after construction.
type Node struct {
	Kind     Kind
	Tag      string        // Element tag
	Props    Props         // Element or component props
	Children []*Node       // Flattened children
	Key      string        // Optional identity, lifted from the "key" prop
	Text     string        // For KindText
	Comp     ComponentFunc // For KindComponent
	Name     string        // Component name, for diagnostics
	Render   func() *Node  // For KindRenderProp
}

type fragment struct{}

// Fragment is the sentinel type that makes H return a Fragment node.
var Fragment = fragment{}

// H builds a node. typ is a string tag, a component function (ComponentFunc,
// func(Props) *Node or func(Props) (*Node, error)) or Fragment.
// H panics on any other type.
func H(typ any, props Props, children ...any) *Node {
	kids := Flatten(children...)
	switch t := typ.(type) {
	case string:
		return El(t, props, kids)
	case fragment:
		return Frag(kids)
	case ComponentFunc:
		return component(t, funcName(t), props, kids)
	case func(Props) (*Node, error):
		return component(t, funcName(t), props, kids)
	case func(Props) *Node:
		return component(Pure(t), funcName(t), props, kids)
	}
	panic(fmt.Sprintf("vnode: unsupported node type %T", typ))
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// El creates an element node.
func El(tag string, props Props, children ...any) *Node {
	p := copyProps(props)
	return &Node{
		Kind:     KindElement,
		Tag:      tag,
		Props:    p,
		Key:      keyOf(p),
		Children: Flatten(children...),
	}
}

// Comp creates a component node.
func Comp(fn ComponentFunc, props Props, children ...any) *Node {
	return component(fn, funcName(fn), props, Flatten(children...))
}

// Named creates a component node with an explicit diagnostic name.
func Named(name string, fn ComponentFunc, props Props, children ...any) *Node {
	return component(fn, name, props, Flatten(children...))
}

// Frag creates a fragment node.
func Frag(children ...any) *Node {
	return &Node{Kind: KindFragment, Children: Flatten(children...)}
}

// RenderProp wraps fn as a deferred child node.
func RenderProp(fn func() *Node) *Node {
	return &Node{Kind: KindRenderProp, Render: fn}
}

// Pure adapts a component that cannot fail.
func Pure(fn func(Props) *Node) ComponentFunc {
	return func(p Props) (*Node, error) {
		return fn(p), nil
	}
}

func component(fn ComponentFunc, name string, props Props, children []*Node) *Node {
	p := copyProps(props)
	return &Node{
		Kind:     KindComponent,
		Comp:     fn,
		Name:     name,
		Props:    p,
		Key:      keyOf(p),
		Children: children,
	}
}

// WithKey returns a copy of n with the given key. Text and render-prop
// nodes carry no key and are returned unchanged.
func WithKey(n *Node, key string) *Node {
	if n == nil || n.Kind == KindText || n.Kind == KindRenderProp {
		return n
	}
	c := *n
	c.Props = copyProps(n.Props)
	c.Props["key"] = key
	c.Key = key
	return &c
}

// Flatten converts children into a flat node list.
//
// Fragment nodes are spliced: their children take the fragment's place.
// Slices of any element type are flattened element by element and errors
// become Text nodes with the error message. Flatten panics on any other
// type (maps, structs, channels, functions other than func() *Node).
func Flatten(children ...any) []*Node {
	out := make([]*Node, 0, len(children))
	return flatten(out, children)
}

func flatten(out []*Node, children []any) []*Node {
	for _, child := range children {
		switch v := child.(type) {
		case nil, bool:
			continue
		case *Node:
			out = appendNode(out, v)
		case []*Node:
			for _, c := range v {
				out = appendNode(out, c)
			}
		case []any:
			out = flatten(out, v)
		case string:
			out = append(out, Text(v))
		case func() *Node:
			out = append(out, RenderProp(v))
		case error:
			out = append(out, Text(v.Error()))
		case fmt.Stringer:
			out = append(out, Text(v.String()))
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			out = append(out, Text(fmt.Sprint(v)))
		default:
			rv := reflect.ValueOf(child)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				panic(fmt.Sprintf("vnode: unsupported child type %T", child))
			}
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			out = flatten(out, items)
		}
	}
	return out
}

func appendNode(out []*Node, n *Node) []*Node {
	if n == nil {
		return out
	}
	if n.Kind == KindFragment {
		return append(out, n.Children...)
	}
	return append(out, n)
}

func copyProps(p Props) Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func keyOf(p Props) string {
	k, ok := p["key"]
	if !ok || k == nil {
		return ""
	}
	return fmt.Sprintf("%v", k)
}

func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "component"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
