package cts

import (
	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/lazy"
	"github.com/wippyai/clrmeta/token"
)

// Member is a metadata entity. Bound members come from a row of an Image
// and carry its token; unbound members are built by the application and
// have a null token until written.
type Member interface {
	Token() token.Token
	Image() *Image
	AddToBuffer(b *builder.Buffer) error
}

type member struct {
	image *Image
	token token.Token
}

// Token returns the token the member was loaded from.
func (m *member) Token() token.Token {
	return m.token
}

// Image returns the image the member belongs to, or nil when unbound.
func (m *member) Image() *Image {
	return m.image
}

func unbound(kind token.TableKind) member {
	return member{token: token.New(kind, 0)}
}

// Collection is an ordered, lazily loaded list of owned members.
type Collection[T comparable] struct {
	items *lazy.Value[[]T]
	onAdd func(T)
}

func newCollection[T comparable](load func() []T, onAdd func(T)) Collection[T] {
	return Collection[T]{items: lazy.New(load), onAdd: onAdd}
}

func (c *Collection[T]) value() *lazy.Value[[]T] {
	if c.items == nil {
		c.items = lazy.Of[[]T](nil)
	}
	return c.items
}

// All returns the members in order. The slice must not be modified.
func (c *Collection[T]) All() []T {
	return c.value().Get()
}

// Len returns the number of members.
func (c *Collection[T]) Len() int {
	return len(c.All())
}

// Add appends v and makes the collection's owner its owner.
func (c *Collection[T]) Add(v T) {
	items := c.All()
	c.value().Set(append(items[:len(items):len(items)], v))
	if c.onAdd != nil {
		c.onAdd(v)
	}
}

// Remove deletes the first occurrence of v.
func (c *Collection[T]) Remove(v T) bool {
	items := c.All()
	for i, it := range items {
		if it == v {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			out = append(out, items[i+1:]...)
			c.value().Set(out)
			return true
		}
	}
	return false
}

// addAll writes owned children. A child already appended on demand through
// another reference is skipped.
func addAll[T Member](b *builder.Buffer, items []T) error {
	for _, it := range items {
		if b.Appended(it) {
			continue
		}
		if err := it.AddToBuffer(b); err != nil {
			return err
		}
	}
	return nil
}

func members[T Member](items []T) []builder.Member {
	out := make([]builder.Member, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// optional converts an optional reference for the buffer. A nil interface
// stays nil.
func optional(m Member) builder.Member {
	if m == nil {
		return nil
	}
	return m
}

// ref converts an optional typed reference for the buffer, mapping a nil
// pointer to a nil Member.
func ref[P interface {
	*E
	Member
}, E any](p P) builder.Member {
	if p == nil {
		return nil
	}
	return p
}
