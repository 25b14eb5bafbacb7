// Package ds provides small generic data structures.
package ds

import "fmt"

// Set is an insertion ordered set: O(1) membership with deterministic
// iteration. The zero value is not usable, create sets with NewSet.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items))}
	s.Extend(items...)
	return s
}

func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.order)
}

// Add adds v and reports whether it was not present yet.
func (s *Set[T]) Add(v T) bool {
	if s.Contains(v) {
		return false
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Extend adds all values and returns the ones that were actually added.
func (s *Set[T]) Extend(values ...T) []T {
	var added []T
	for _, v := range values {
		if s.Add(v) {
			added = append(added, v)
		}
	}
	return added
}

func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

func (s *Set[T]) Len() int { return len(s.items) }

func (s *Set[T]) IsEmpty() bool { return len(s.items) == 0 }

// Values returns the elements in insertion order. The slice is a copy.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Missing returns the values of candidates not in s, preserving their order.
func (s *Set[T]) Missing(candidates []T) []T {
	var out []T
	for _, v := range candidates {
		if !s.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}
