// Package sets provides small generic set types.
package sets

// Set is a hash set for comparable keys.
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v and reports whether it was absent.
func (s Set[T]) Add(v T) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

// Has reports whether v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Ordered is a set that remembers first-insertion order. The zero value is ready to use.
type Ordered[T comparable] struct {
	seen   Set[T]
	values []T
}

// Add appends v unless already present and reports whether it was added.
func (o *Ordered[T]) Add(v T) bool {
	if o.seen == nil {
		o.seen = make(Set[T])
	}
	if !o.seen.Add(v) {
		return false
	}
	o.values = append(o.values, v)
	return true
}

// Len returns the number of distinct values.
func (o *Ordered[T]) Len() int { return len(o.values) }

// Values returns a copy of the values in insertion order.
func (o *Ordered[T]) Values() []T {
	return append([]T(nil), o.values...)
}
