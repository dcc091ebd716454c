package borrow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlag_SharedBorrows(t *testing.T) {
	var f Flag
	require.True(t, f.Free())

	require.NoError(t, f.Shared())
	require.NoError(t, f.Shared())
	require.Equal(t, 2, f.Readers())

	require.ErrorIs(t, f.Exclusive(), ErrAlreadyBorrowed)

	f.ReleaseShared()
	f.ReleaseShared()
	require.True(t, f.Free())
}

func TestFlag_ExclusiveBorrow(t *testing.T) {
	var f Flag

	require.NoError(t, f.Exclusive())
	require.True(t, f.MutablyBorrowed())
	require.Equal(t, 0, f.Readers())

	require.ErrorIs(t, f.Exclusive(), ErrMutablyBorrowed)
	require.ErrorIs(t, f.Shared(), ErrMutablyBorrowed)

	f.ReleaseExclusive()
	require.True(t, f.Free())

	require.NoError(t, f.Shared())
}

func TestFlag_UnbalancedRelease(t *testing.T) {
	var f Flag
	require.Panics(t, f.ReleaseShared)
	require.Panics(t, f.ReleaseExclusive)

	require.NoError(t, f.Shared())
	require.Panics(t, f.ReleaseExclusive)
}

func describeAs(target string) func() string {
	return func() string { return target }
}

func TestFlag_MustDescribesOnlyOnConflict(t *testing.T) {
	var calls int
	target := func() string {
		calls += 1
		return "position"
	}

	var f Flag
	f.MustShared(target)
	f.MustShared(target)
	f.ReleaseShared()
	f.ReleaseShared()

	f.MustExclusive(target)
	f.ReleaseExclusive()

	require.Zero(t, calls)
}

func TestFlag_MustPanicsWithError(t *testing.T) {
	var f Flag
	f.MustExclusive(describeAs("position"))

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)

		var borrowErr *Error
		require.True(t, errors.As(err, &borrowErr))
		require.Equal(t, "position", borrowErr.Target)
		require.ErrorIs(t, err, ErrMutablyBorrowed)
	}()

	f.MustShared(describeAs("position"))
}
