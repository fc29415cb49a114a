// Package vnode provides the virtual node builder.
//
// A Node is an immutable description of a text run, a fragment, a host
// element, a component or a render prop. Nodes are built with H, the
// markup construction entry point, or with the explicit constructors:
//
//	vnode.H("box", vnode.Props{"vertical": true},
//	    vnode.H("label", vnode.Props{"label": "hello"}),
//	    vnode.H(Clock, nil),
//	    items,             // []*Node, flattened
//	    cond && false,     // booleans are dropped
//	)
//
// # Children
//
// Children are flattened to any depth. nil, true and false are dropped.
// Strings, numbers, errors and fmt.Stringer values become Text nodes, and a
// func() *Node becomes a RenderProp node that the reconciler calls. Slices
// of any element type are flattened; other types panic.
//
// # Fragments
//
// Passing Fragment as the type yields a Fragment node. A fragment used as a
// child is spliced into its parent's child list. Only a fragment at the top
// of a tree, or returned by a component, reaches the reconciler, which
// mounts it without a host instance.
package vnode
