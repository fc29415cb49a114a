// Package reconciler mounts virtual node trees onto a host.
//
// Reconciliation is mount-only. A node tree is walked once and turned into
// a Fiber tree bound to host instances; nothing diffs a new tree against an
// old one. Everything that changes after mount does so through reactive
// bindings set up by the host (function-valued props) or by control
// components that tear down and rebuild subtrees with RenderChild.
//
// # Entry points
//
//	m, err := reconciler.Render(node)                // no attachment
//	dispose, err := reconciler.RenderChild(node, c)  // append into c
//	root := reconciler.CreateRoot(c)                 // Render / Unmount
//
// Every mount runs inside its own owner scope. Effects created while
// components render belong to that scope and are disposed with the mount.
//
// # Errors
//
// A component that returns an error or panics is reported to the handler
// on top of the error-handler stack (see WithErrorHandler). Without a
// handler the error is returned to the caller of the entry point.
package reconciler
