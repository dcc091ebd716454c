package bykenet

import (
	"log/slog"

	"github.com/oliverbestmann/bykenet/mask"
)

// Mutator is notified whenever a replicated field of a component changes.
type Mutator interface {
	Mutate(field int)
}

// MutatorBinder is implemented by components that route changes of their
// properties to a Mutator. The storage binds a Mutator once the component is inserted.
type MutatorBinder interface {
	BindMutator(mutator Mutator)
}

// MaskMutator marks changed fields in a ChangeMask.
type MaskMutator struct {
	Mask *mask.ChangeMask
}

func (m MaskMutator) Mutate(field int) {
	if !m.Mask.SetBit(field, true) {
		slog.Warn(
			"Field index not covered by change mask",
			slog.Int("field", field),
			slog.Int("bytes", int(m.Mask.ByteNumber())),
		)
	}
}

// Property holds the value of a single replicated field.
// Setting a different value notifies the bound Mutator.
type Property[T comparable] struct {
	value   T
	field   int
	mutator Mutator
}

func NewProperty[T comparable](field int, value T) Property[T] {
	return Property[T]{value: value, field: field}
}

func (p *Property[T]) Get() T {
	return p.value
}

// Set updates the value and reports if it changed.
func (p *Property[T]) Set(value T) bool {
	if p.value == value {
		return false
	}

	p.value = value

	if p.mutator != nil {
		p.mutator.Mutate(p.field)
	}

	return true
}

// Field returns the index of the field within its component.
func (p *Property[T]) Field() int {
	return p.field
}

func (p *Property[T]) Bind(mutator Mutator) {
	p.mutator = mutator
}
