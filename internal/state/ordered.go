package state

import "iter"

// OrderedMap is an immutable string-keyed map that remembers insertion
// order. Updates return a new map and leave the receiver untouched, so a
// value reachable from a published snapshot never changes.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty map.
func NewOrderedMap[V any]() OrderedMap[V] {
	return OrderedMap[V]{}
}

// Len returns the number of entries.
func (m OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Get returns the value for key.
func (m OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// At returns the entry at position i in insertion order.
func (m OrderedMap[V]) At(i int) (string, V, bool) {
	if i < 0 || i >= len(m.keys) {
		var zero V
		return "", zero, false
	}
	k := m.keys[i]
	return k, m.values[k], true
}

// Keys returns a copy of the keys in insertion order.
func (m OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates entries in insertion order.
func (m OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// With returns a copy of m with key set to v. An existing key keeps its
// position; a new key is appended.
func (m OrderedMap[V]) With(key string, v V) OrderedMap[V] {
	_, exists := m.values[key]

	values := make(map[string]V, len(m.values)+1)
	for k, val := range m.values {
		values[k] = val
	}
	values[key] = v

	keys := m.keys
	if !exists {
		keys = make([]string, len(m.keys), len(m.keys)+1)
		copy(keys, m.keys)
		keys = append(keys, key)
	}
	return OrderedMap[V]{keys: keys, values: values}
}

// orderedFrom builds a map from keys in order; later duplicates overwrite
// the value but keep the first position.
func orderedFrom[V any](keys []string, value func(string) V) OrderedMap[V] {
	m := OrderedMap[V]{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]V, len(keys)),
	}
	for _, k := range keys {
		if _, ok := m.values[k]; !ok {
			m.keys = append(m.keys, k)
		}
		m.values[k] = value(k)
	}
	return m
}
