package reactive

import "time"

// Observer receives runtime events. It is used by the metrics package and
// must not touch signals.
type Observer interface {
	// EffectRun is called after every effect body run.
	EffectRun(d time.Duration)
	// EffectPanic is called when an effect body panicked.
	EffectPanic()
	// CleanupPanic is called when a cleanup panicked.
	CleanupPanic()
	// FlushPass is called at the start of every flush pass with its size.
	FlushPass(size int)
	// ContextDisposed is called once per disposed effect or owner scope.
	ContextDisposed()
}

type nopObserver struct{}

func (nopObserver) EffectRun(time.Duration) {}
func (nopObserver) EffectPanic()            {}
func (nopObserver) CleanupPanic()           {}
func (nopObserver) FlushPass(int)           {}
func (nopObserver) ContextDisposed()        {}

// SetObserver installs o as the runtime observer. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	rt.observer = o
}
