// Package devtools serves a live inspector for a running Lumina tree.
//
// The inspector is an HTTP server with these routes:
//
//	GET  /tree      mounted fiber trees as JSON
//	GET  /stats     reactive runtime counters as JSON
//	GET  /metrics   Prometheus exposition
//	GET  /ws        websocket; every published State is pushed to clients
//	POST /snapshot  uploads the current State to S3
//
// The reactive runtime is single-threaded, so the server never reads it
// directly. The UI goroutine captures a State and publishes it:
//
//	srv := devtools.New(devtools.Options{Addr: cfg.DevtoolsAddress()})
//	host.Set(srv.Track(gtkHost))
//	...
//	// after each main loop iteration
//	srv.Refresh()
//
// Refresh only captures when the tracked host has been mutated since the
// last publish.
package devtools
