package bykenet

import (
	"errors"
)

// ErrReleased is the panic value when a component access is used after it was released.
var ErrReleased = errors.New("component access used after release")

// RefAccessor provides read access to a component of known type.
// The accessor decides how the value is located, e.g. by holding a pointer,
// an index into a table or by computing it on demand.
type RefAccessor[P Protocol, R ReplicateSafe[P]] interface {
	ComponentRef() R
}

// MutAccessor provides read and write access to a component of known type.
type MutAccessor[P Protocol, R ReplicateSafe[P]] interface {
	RefAccessor[P, R]
	ComponentMut() R
}

// DynRefAccessor provides read access to a component of unknown type.
type DynRefAccessor[P Protocol] interface {
	ComponentDynRef() ReplicateSafe[P]
}

// DynMutAccessor provides read and write access to a component of unknown type.
type DynMutAccessor[P Protocol] interface {
	DynRefAccessor[P]
	ComponentDynMut() ReplicateSafe[P]
}

// Releaser can be implemented by an accessor that needs to return
// a borrow to its storage once the access ends.
type Releaser interface {
	Release()
}

func releaseAccessor(accessor any) {
	if releaser, ok := accessor.(Releaser); ok {
		releaser.Release()
	}
}

func mustAccessor(accessor any) {
	if accessor == nil {
		panic("component access requires a non nil accessor")
	}
}

// ComponentRef is a read only view of a component of type R.
// A ComponentRef is meant to be short-lived. Call Release once done.
type ComponentRef[P Protocol, R ReplicateSafe[P]] struct {
	noCopy noCopy
	inner  RefAccessor[P, R]
}

func NewComponentRef[P Protocol, R ReplicateSafe[P]](inner RefAccessor[P, R]) *ComponentRef[P, R] {
	mustAccessor(inner)
	return &ComponentRef[P, R]{inner: inner}
}

// Get returns the component. The returned value must not be modified.
func (c *ComponentRef[P, R]) Get() R {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentRef()
}

// Release ends the access. Calling Release more than once has no effect.
func (c *ComponentRef[P, R]) Release() {
	if c.inner == nil {
		return
	}

	releaseAccessor(c.inner)
	c.inner = nil
}

// ComponentMut is an exclusive read and write view of a component of type R.
type ComponentMut[P Protocol, R ReplicateSafe[P]] struct {
	noCopy noCopy
	inner  MutAccessor[P, R]
}

func NewComponentMut[P Protocol, R ReplicateSafe[P]](inner MutAccessor[P, R]) *ComponentMut[P, R] {
	mustAccessor(inner)
	return &ComponentMut[P, R]{inner: inner}
}

// Get returns the component for reading.
func (c *ComponentMut[P, R]) Get() R {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentRef()
}

// Mut returns the component for writing. Depending on the storage,
// this might mark the component as changed.
func (c *ComponentMut[P, R]) Mut() R {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentMut()
}

func (c *ComponentMut[P, R]) Release() {
	if c.inner == nil {
		return
	}

	releaseAccessor(c.inner)
	c.inner = nil
}

// ComponentDynRef is a read only view of a component of any type in the protocol P.
type ComponentDynRef[P Protocol] struct {
	noCopy noCopy
	inner  DynRefAccessor[P]
}

func NewComponentDynRef[P Protocol](inner DynRefAccessor[P]) *ComponentDynRef[P] {
	mustAccessor(inner)
	return &ComponentDynRef[P]{inner: inner}
}

func (c *ComponentDynRef[P]) Get() ReplicateSafe[P] {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentDynRef()
}

func (c *ComponentDynRef[P]) Release() {
	if c.inner == nil {
		return
	}

	releaseAccessor(c.inner)
	c.inner = nil
}

// ComponentDynMut is an exclusive read and write view of a component
// of any type in the protocol P.
type ComponentDynMut[P Protocol] struct {
	noCopy noCopy
	inner  DynMutAccessor[P]
}

func NewComponentDynMut[P Protocol](inner DynMutAccessor[P]) *ComponentDynMut[P] {
	mustAccessor(inner)
	return &ComponentDynMut[P]{inner: inner}
}

func (c *ComponentDynMut[P]) Get() ReplicateSafe[P] {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentDynRef()
}

func (c *ComponentDynMut[P]) Mut() ReplicateSafe[P] {
	if c.inner == nil {
		panic(ErrReleased)
	}

	return c.inner.ComponentDynMut()
}

func (c *ComponentDynMut[P]) Release() {
	if c.inner == nil {
		return
	}

	releaseAccessor(c.inner)
	c.inner = nil
}
