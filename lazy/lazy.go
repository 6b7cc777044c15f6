// Package lazy provides a deferred, cached value cell.
//
// Entities use a Value for every cross-reference so that a graph with
// cycles can be loaded without walking it: a field is only resolved
// when it is read.
//
//	v := lazy.New(func() *TypeDefinition { return image.typeAt(rid) })
//	t := v.Get() // resolves once, cached afterwards
//	v.Set(other) // discards the resolver
//
// A Value is not safe for concurrent first resolution.
package lazy

// Value holds either a known value or a pending resolver.
type Value[T any] struct {
	resolve func() T
	value   T
	known   bool
}

// New creates a Value resolved by fn on first read.
func New[T any](fn func() T) *Value[T] {
	return &Value[T]{resolve: fn}
}

// Of creates a Value that already holds v.
func Of[T any](v T) *Value[T] {
	return &Value[T]{value: v, known: true}
}

// Get returns the value, running the resolver on first use.
func (v *Value[T]) Get() T {
	if !v.known {
		if v.resolve != nil {
			v.value = v.resolve()
		}
		v.resolve = nil
		v.known = true
	}
	return v.value
}

// Set replaces the value and drops any pending resolver.
func (v *Value[T]) Set(value T) {
	v.value = value
	v.resolve = nil
	v.known = true
}

// Resolved reports whether the value has been computed or assigned.
func (v *Value[T]) Resolved() bool {
	return v.known
}
