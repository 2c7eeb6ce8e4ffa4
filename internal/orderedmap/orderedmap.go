// Package orderedmap provides a keyed collection that remembers insertion
// order and keeps the first value stored for each key.
package orderedmap

// Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// InsertIfAbsent stores v under k unless k is already present, and reports
// whether v was stored. Repeating an insert is a no-op.
func (m *Map[K, V]) InsertIfAbsent(k K, v V) bool {
	if _, ok := m.values[k]; ok {
		return false
	}
	m.values[k] = v
	m.keys = append(m.keys, k)
	return true
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

func (m *Map[K, V]) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}
