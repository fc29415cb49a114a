package reactive

// Memo is a derived read-only signal. An internal effect recomputes it
// whenever the signals read by its computation change, and writes the result
// into a backing signal, so readers of the memo only re-run when the derived
// value actually changes.
type Memo[T any] struct {
	sig    *Signal[T]
	effect *Effect
}

// CreateMemo creates a memo owned by the current owner. The computation
// runs immediately.
//
// Example:
//
//	doubled := CreateMemo(func() int { return count.Get() * 2 })
//	doubled.Get()
func CreateMemo[T any](compute func() T) *Memo[T] {
	var zero T
	m := &Memo[T]{sig: NewSignal(zero)}
	first := true
	m.effect = CreateEffect(func() Cleanup {
		v := compute()
		if first {
			first = false
			m.sig.value = v
			return nil
		}
		m.sig.Set(v)
		return nil
	})
	return m
}

// Get returns the derived value and subscribes the running effect.
func (m *Memo[T]) Get() T {
	return m.sig.Get()
}

// Peek returns the derived value without subscribing.
func (m *Memo[T]) Peek() T {
	return m.sig.Peek()
}

// Accessor returns the read accessor of the memo.
func (m *Memo[T]) Accessor() func() T {
	return m.sig.Get
}

// WithEquals configures the equality used to decide whether a recomputed
// value is a change.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.sig.WithEquals(fn)
	return m
}

// Dispose stops recomputation. The last value stays readable.
func (m *Memo[T]) Dispose() {
	m.effect.Dispose()
}
