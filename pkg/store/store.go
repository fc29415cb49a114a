package store

import (
	"strings"

	"github.com/lumina-dev/lumina/pkg/reactive"
)

// leaf marks a field that is not a nested branch.
const leaf = -1

type field struct {
	// branch indexes the nested shape, or leaf.
	branch  int
	initial any
}

// shape describes one map level of the initial value.
type shape struct {
	fields map[string]field
}

// Store owns the shape index and the leaf signals of one store tree.
type Store struct {
	shapes  []shape
	signals map[string]*reactive.Signal[any]
}

// Node is the read side of one level of a store.
type Node struct {
	s     *Store
	shape int
	path  string
}

// Setter is the write side of one level of a store.
type Setter struct {
	s     *Store
	shape int
	path  string
}

// New builds a store from initial. It returns the root read node, the root
// setter, and a dispose function that drops every leaf signal.
func New(initial map[string]any) (*Node, *Setter, func()) {
	s := &Store{signals: make(map[string]*reactive.Signal[any])}
	s.index(initial)
	return &Node{s: s}, &Setter{s: s}, s.dispose
}

// index appends the shape of m and its nested maps to the arena, returning
// the index of m's shape.
func (s *Store) index(m map[string]any) int {
	idx := len(s.shapes)
	s.shapes = append(s.shapes, shape{fields: make(map[string]field, len(m))})
	for k, v := range m {
		f := field{branch: leaf, initial: v}
		if nested, ok := v.(map[string]any); ok && nested != nil {
			f = field{branch: s.index(nested)}
		}
		s.shapes[idx].fields[k] = f
	}
	return idx
}

func (s *Store) dispose() {
	clear(s.signals)
}

// lookup returns the field for key at shape idx. Unknown keys are leaves
// with a nil initial value.
func (s *Store) lookup(idx int, key string) field {
	if f, ok := s.shapes[idx].fields[key]; ok {
		return f
	}
	return field{branch: leaf}
}

// signal returns the leaf signal at path, creating it on first access.
func (s *Store) signal(path string, initial any) *reactive.Signal[any] {
	sig, ok := s.signals[path]
	if !ok {
		sig = reactive.NewSignal(initial)
		s.signals[path] = sig
	}
	return sig
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// Path returns the dot-joined path of the node. The root path is empty.
func (n *Node) Path() string { return n.path }

// Keys returns the keys present in the initial value at this level.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.s.shapes[n.shape].fields))
	for k := range n.s.shapes[n.shape].fields {
		keys = append(keys, k)
	}
	return keys
}

// IsNested reports whether key is a nested branch.
func (n *Node) IsNested(key string) bool {
	return n.s.lookup(n.shape, key).branch != leaf
}

// Child returns the nested node at key, or nil if key is a leaf.
func (n *Node) Child(key string) *Node {
	f := n.s.lookup(n.shape, key)
	if f.branch == leaf {
		return nil
	}
	return &Node{s: n.s, shape: f.branch, path: join(n.path, key)}
}

// Get reads the leaf at key and subscribes the running effect.
// Nested keys read as nil.
func (n *Node) Get(key string) any {
	if acc := n.Accessor(key); acc != nil {
		return acc()
	}
	return nil
}

// Accessor returns the read accessor of the leaf at key, or nil if key is
// a nested branch.
func (n *Node) Accessor(key string) func() any {
	f := n.s.lookup(n.shape, key)
	if f.branch != leaf {
		return nil
	}
	return n.s.signal(join(n.path, key), f.initial).Get
}

// Value reads the leaf at key as a T. A missing or differently typed value
// yields the zero T.
func Value[T any](n *Node, key string) T {
	v, _ := n.Get(key).(T)
	return v
}

// Path returns the dot-joined path of the setter. The root path is empty.
func (w *Setter) Path() string { return w.path }

// Child returns the nested setter at key, or nil if key is a leaf.
func (w *Setter) Child(key string) *Setter {
	f := w.s.lookup(w.shape, key)
	if f.branch == leaf {
		return nil
	}
	return &Setter{s: w.s, shape: f.branch, path: join(w.path, key)}
}

// Set writes the leaf at key. For a nested key, value must be a
// map[string]any and is merged into that branch.
func (w *Setter) Set(key string, value any) {
	f := w.s.lookup(w.shape, key)
	if f.branch != leaf {
		if partial, ok := value.(map[string]any); ok {
			w.Child(key).Merge(partial)
		}
		return
	}
	w.s.signal(join(w.path, key), f.initial).Set(value)
}

// Update replaces the leaf at key with fn applied to its current value.
func (w *Setter) Update(key string, fn func(any) any) {
	f := w.s.lookup(w.shape, key)
	if f.branch != leaf {
		return
	}
	sig := w.s.signal(join(w.path, key), f.initial)
	sig.Set(fn(sig.Peek()))
}

// Merge writes every key of partial in a single batch, so effects reading
// several of them run once. Nested maps are merged recursively.
func (w *Setter) Merge(partial map[string]any) {
	reactive.Batch(func() {
		w.merge(partial)
	})
}

func (w *Setter) merge(partial map[string]any) {
	for k, v := range partial {
		if child := w.Child(k); child != nil {
			if nested, ok := v.(map[string]any); ok {
				child.merge(nested)
			}
			continue
		}
		w.s.signal(join(w.path, k), w.s.lookup(w.shape, k).initial).Set(v)
	}
}

// Signals returns the number of leaf signals created so far.
func (n *Node) Signals() int {
	return len(n.s.signals)
}

// Paths returns the paths of every leaf signal created so far.
func (n *Node) Paths() []string {
	paths := make([]string, 0, len(n.s.signals))
	for p := range n.s.signals {
		if n.path == "" || strings.HasPrefix(p, n.path+".") {
			paths = append(paths, p)
		}
	}
	return paths
}
