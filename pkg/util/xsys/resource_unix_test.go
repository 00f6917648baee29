//go:build unix

package xsys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func stubRlimit(t *testing.T, cur, maxLimit uint64) *unix.Rlimit {
	t.Helper()
	state := &unix.Rlimit{Cur: cur, Max: maxLimit}
	origGet, origSet := getrlimit, setrlimit
	t.Cleanup(func() { getrlimit, setrlimit = origGet, origSet })
	getrlimit = func(resource int, r *unix.Rlimit) error {
		*r = *state
		return nil
	}
	setrlimit = func(resource int, r *unix.Rlimit) error {
		*state = *r
		return nil
	}
	return state
}

func TestMemlockLimitReal(t *testing.T) {
	soft, hard, err := MemlockLimit()
	require.NoError(t, err)
	assert.LessOrEqual(t, soft, hard)
}

func TestRaiseMemlockLimit(t *testing.T) {
	t.Run("raise within hard", func(t *testing.T) {
		state := stubRlimit(t, 64<<10, 1<<30)
		got, err := RaiseMemlockLimit(64 << 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(64<<20), got)
		assert.Equal(t, uint64(1<<30), state.Max)
	})

	t.Run("clamped to hard", func(t *testing.T) {
		stubRlimit(t, 64<<10, 1<<20)
		got, err := RaiseMemlockLimit(64 << 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<20), got)
	})

	t.Run("already sufficient", func(t *testing.T) {
		stubRlimit(t, 1<<30, 1<<30)
		setrlimit = func(int, *unix.Rlimit) error { return errors.New("unexpected") }
		got, err := RaiseMemlockLimit(1 << 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<30), got)
	})

	t.Run("zero", func(t *testing.T) {
		_, err := RaiseMemlockLimit(0)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	})
}

func TestRlimitErrors(t *testing.T) {
	stubRlimit(t, 0, 1<<20)
	setrlimit = func(int, *unix.Rlimit) error { return unix.EPERM }
	_, err := RaiseMemlockLimit(1 << 10)
	assert.ErrorIs(t, err, unix.EPERM)

	getrlimit = func(int, *unix.Rlimit) error { return unix.EINVAL }
	_, _, err = MemlockLimit()
	assert.ErrorIs(t, err, unix.EINVAL)
	_, err = RaiseMemlockLimit(1 << 10)
	assert.ErrorIs(t, err, unix.EINVAL)
}
