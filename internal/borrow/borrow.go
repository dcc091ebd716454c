// Package borrow implements a runtime checked borrow state. A value can either
// be borrowed by any number of readers or by exactly one writer.
package borrow

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyBorrowed is returned when an exclusive borrow is requested
	// while shared borrows are still active.
	ErrAlreadyBorrowed = errors.New("value is already borrowed")

	// ErrMutablyBorrowed is returned when any borrow is requested while an
	// exclusive borrow is active.
	ErrMutablyBorrowed = errors.New("value is already mutably borrowed")
)

// Error describes a borrow conflict. It is used as the panic value
// when a conflicting borrow is forced.
type Error struct {
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("borrow %s: %s", e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const exclusive = -1

// Flag tracks active borrows of a single value.
// The zero value is an unborrowed flag. A Flag is not safe for concurrent use.
type Flag struct {
	// number of shared borrows, or exclusive if mutably borrowed
	state int32
}

// Shared acquires a shared borrow.
func (f *Flag) Shared() error {
	if f.state == exclusive {
		return ErrMutablyBorrowed
	}

	f.state += 1
	return nil
}

// ReleaseShared releases a borrow previously acquired with Shared.
func (f *Flag) ReleaseShared() {
	if f.state <= 0 {
		panic("release of shared borrow that was never acquired")
	}

	f.state -= 1
}

// Exclusive acquires the exclusive borrow.
func (f *Flag) Exclusive() error {
	switch {
	case f.state == exclusive:
		return ErrMutablyBorrowed

	case f.state > 0:
		return ErrAlreadyBorrowed
	}

	f.state = exclusive
	return nil
}

// ReleaseExclusive releases a borrow previously acquired with Exclusive.
func (f *Flag) ReleaseExclusive() {
	if f.state != exclusive {
		panic("release of exclusive borrow that was never acquired")
	}

	f.state = 0
}

// Free reports whether there is no active borrow.
func (f *Flag) Free() bool {
	return f.state == 0
}

// Readers returns the number of active shared borrows.
func (f *Flag) Readers() int {
	return max(0, int(f.state))
}

// MutablyBorrowed reports whether the exclusive borrow is held.
func (f *Flag) MutablyBorrowed() bool {
	return f.state == exclusive
}

// MustShared is like Shared but panics with an *Error on conflict.
// target is only called to describe the borrowed value in the panic.
func (f *Flag) MustShared(target func() string) {
	if err := f.Shared(); err != nil {
		panic(&Error{Target: target(), Err: err})
	}
}

// MustExclusive is like Exclusive but panics with an *Error on conflict.
func (f *Flag) MustExclusive(target func() string) {
	if err := f.Exclusive(); err != nil {
		panic(&Error{Target: target(), Err: err})
	}
}
