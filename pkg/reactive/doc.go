// Package reactive provides the signal graph and effect tree behind Lumina.
//
// Reactivity is fine-grained: dependencies are tracked at runtime. Reading a
// signal while an effect runs subscribes that effect; writing a different
// value re-runs every subscribed effect.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes the running effect)
//	count.Set(5)          // Write (re-runs subscribers if the value changed)
//	count.Update(func(n int) int { return n + 1 })
//
// The accessor form mirrors markup-friendly read/write pairs:
//
//	read, write := CreateSignal(0)
//
// Effects re-run whenever a signal they read during their last run changes:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { /* runs before the next run and on dispose */ }
//	})
//
// Memo[T] is a derived read-only signal kept current by an internal effect:
//
//	doubled := CreateMemo(func() int { return count.Get() * 2 })
//
// # Ownership
//
// Effects created while another effect (or an Owner scope) runs become its
// children. Re-running or disposing a parent disposes its children first, so
// nested effects are always rebuilt, never patched.
//
// # Batching
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // effects reading a and b run once, after the outermost batch
//
// # Threading
//
// The runtime is single-threaded. Its state (the owner/listener stack, batch
// depth, pending set and mount queue) is process-wide and unsynchronized;
// work from other goroutines must be marshalled onto the UI goroutine by the
// host loop before touching signals.
package reactive
