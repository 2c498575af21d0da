package loader

// Cache memoises values by key. Entries accrue one at a time and are only
// ever removed all together.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	// Clear drops every entry and returns how many there were.
	Clear() int
	Keys() []K
	Len() int
}

// NewMapCache returns an unbounded map-backed Cache. It is not safe for
// concurrent use.
func NewMapCache[K comparable, V any]() Cache[K, V] {
	return &mapCache[K, V]{items: make(map[K]V)}
}

type mapCache[K comparable, V any] struct {
	items map[K]V
}

func (m *mapCache[K, V]) Get(key K) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *mapCache[K, V]) Put(key K, value V) { m.items[key] = value }

func (m *mapCache[K, V]) Clear() int {
	n := len(m.items)
	clear(m.items)
	return n
}

func (m *mapCache[K, V]) Keys() []K {
	out := make([]K, 0, len(m.items))
	for k := range m.items {
		out = append(out, k)
	}
	return out
}

func (m *mapCache[K, V]) Len() int { return len(m.items) }
