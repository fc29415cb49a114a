// Package errors provides structured, coded errors for the Lumina runtime.
//
// Every failure the runtime reports (a panicking effect, a component that
// failed to render, a missing host) carries a stable code that maps to a
// category, a short message and a longer explanation:
//
//	err := errors.New("E101").
//	    WithSuggestion("Call host.Set(memhost.New()) before rendering")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Host not configured
//	//
//	//   The reconciler needs a host contract to create instances, ...
//	//
//	//   Hint: Call host.Set(memhost.New()) before rendering
//
// # Error Categories
//
//   - reactive: effect, cleanup and ownership failures in the signal graph
//   - render: component and reconciliation failures
//   - host: host contract failures
//   - config: configuration file problems
//   - devtools: inspector and snapshot failures
package errors
