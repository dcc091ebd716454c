package bykenet

import (
	"github.com/oliverbestmann/bykenet/internal/borrow"
)

// Cell owns a single component and hands out runtime checked views of it.
// Any number of read only views may exist at the same time, but a mutable
// view excludes every other view. Requesting a conflicting view panics
// with a *borrow.Error, use TryRef or TryMut to get the error instead.
//
// A Cell is not safe for concurrent use.
type Cell[P Protocol, R ReplicateSafe[P]] struct {
	noCopy noCopy
	value  R
	flag   borrow.Flag
}

func NewCell[P Protocol, R ReplicateSafe[P]](value R) *Cell[P, R] {
	return &Cell[P, R]{value: value}
}

func (c *Cell[P, R]) TryRef() (*ComponentRef[P, R], error) {
	if err := c.flag.Shared(); err != nil {
		return nil, &borrow.Error{Target: c.describe(), Err: err}
	}

	return NewComponentRef[P, R](&cellRef[P, R]{cell: c}), nil
}

func (c *Cell[P, R]) TryMut() (*ComponentMut[P, R], error) {
	if err := c.flag.Exclusive(); err != nil {
		return nil, &borrow.Error{Target: c.describe(), Err: err}
	}

	return NewComponentMut[P, R](&cellMut[P, R]{cell: c}), nil
}

func (c *Cell[P, R]) Ref() *ComponentRef[P, R] {
	c.flag.MustShared(c.describe)
	return NewComponentRef[P, R](&cellRef[P, R]{cell: c})
}

func (c *Cell[P, R]) Mut() *ComponentMut[P, R] {
	c.flag.MustExclusive(c.describe)
	return NewComponentMut[P, R](&cellMut[P, R]{cell: c})
}

func (c *Cell[P, R]) DynRef() *ComponentDynRef[P] {
	c.flag.MustShared(c.describe)
	return NewComponentDynRef[P](&cellRef[P, R]{cell: c})
}

func (c *Cell[P, R]) DynMut() *ComponentDynMut[P] {
	c.flag.MustExclusive(c.describe)
	return NewComponentDynMut[P](&cellMut[P, R]{cell: c})
}

func (c *Cell[P, R]) describe() string {
	return describe[P](c.value)
}

// Borrowed reports whether any view of the value is currently alive.
func (c *Cell[P, R]) Borrowed() bool {
	return !c.flag.Free()
}

type cellRef[P Protocol, R ReplicateSafe[P]] struct {
	cell *Cell[P, R]
}

func (r *cellRef[P, R]) ComponentRef() R {
	return r.cell.value
}

func (r *cellRef[P, R]) ComponentDynRef() ReplicateSafe[P] {
	return r.cell.value
}

func (r *cellRef[P, R]) Release() {
	r.cell.flag.ReleaseShared()
}

type cellMut[P Protocol, R ReplicateSafe[P]] struct {
	cell *Cell[P, R]
}

func (r *cellMut[P, R]) ComponentRef() R {
	return r.cell.value
}

func (r *cellMut[P, R]) ComponentMut() R {
	return r.cell.value
}

func (r *cellMut[P, R]) ComponentDynRef() ReplicateSafe[P] {
	return r.cell.value
}

func (r *cellMut[P, R]) ComponentDynMut() ReplicateSafe[P] {
	return r.cell.value
}

func (r *cellMut[P, R]) Release() {
	r.cell.flag.ReleaseExclusive()
}
