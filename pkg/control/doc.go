// Package control provides the list and conditional primitives.
//
// None of them diff anything. For rebuilds every item subtree whenever its
// source changes. Show and Switch mount every branch up front and only
// toggle the "visible" prop of the box wrapping each one, so side effects
// inside a hidden branch still run.
//
//	control.For(todos.Get, func(t Todo, i int) *vnode.Node {
//	    return vnode.H("label", vnode.Props{"label": t.Title})
//	}, vnode.Text("nothing to do"))
//
//	control.Show(loggedIn.Get, vnode.H(Profile, nil), vnode.H(Login, nil))
//
//	control.Switch(vnode.Text("idle"),
//	    control.MatchWhen(loading.Get, vnode.Text("loading")),
//	    control.MatchWhen(failed.Get, vnode.Text("failed")),
//	)
//
// Transition and AnimatePresence animate a revealer in and out; their exit
// delay is a reactive.After timer, so it only elapses while the host loop
// calls reactive.Tick. Monitor and Monitors render per display from the
// registered MonitorProvider.
package control
