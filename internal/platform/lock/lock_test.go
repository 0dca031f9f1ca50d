package lock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAcquireRelease(t *testing.T) {
	ctx := context.Background()
	locker := NewMemory()

	release, err := locker.Acquire(ctx, "exchange:1")
	require.NoError(t, err)

	// Same key is held, a different key is not.
	_, err = locker.Acquire(ctx, "exchange:1")
	assert.ErrorIs(t, err, ErrHeld)

	release2, err := locker.Acquire(ctx, "exchange:2")
	require.NoError(t, err)
	release2()

	release()

	// Released key can be taken again.
	release3, err := locker.Acquire(ctx, "exchange:1")
	require.NoError(t, err)
	release3()
}

func TestMemoryReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	locker := NewMemory()

	release, err := locker.Acquire(ctx, "exchange:1")
	require.NoError(t, err)

	release()
	release() // double release must not panic or unlock someone else

	r2, err := locker.Acquire(ctx, "exchange:1")
	require.NoError(t, err)

	// The stale release from the first holder must not free the new lock.
	release()
	_, err = locker.Acquire(ctx, "exchange:1")
	assert.ErrorIs(t, err, ErrHeld)
	r2()
}
