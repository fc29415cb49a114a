package reconciler

import (
	"log/slog"
	"time"
)

// Observer receives reconciler events. It is used by the metrics package.
type Observer interface {
	// InstanceCreated is called for every host instance, text included.
	InstanceCreated(tag string)
	// InstanceDestroyed is called once per destroyed host instance.
	InstanceDestroyed()
	// ComponentRendered is called after a component function returns.
	ComponentRendered(name string, d time.Duration)
	// ComponentFailed is called when a component errors or panics.
	ComponentFailed(name string)
	// Mounted is called after a mount completes with its fiber count.
	Mounted(fibers int)
}

type nopObserver struct{}

func (nopObserver) InstanceCreated(string)                  {}
func (nopObserver) InstanceDestroyed()                      {}
func (nopObserver) ComponentRendered(string, time.Duration) {}
func (nopObserver) ComponentFailed(string)                  {}
func (nopObserver) Mounted(int)                             {}

var obs Observer = nopObserver{}

// SetObserver installs o. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	obs = o
}

var logger *slog.Logger

// SetLogger sets the logger used for mount diagnostics and handled
// component errors. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger = l
}

func log() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
