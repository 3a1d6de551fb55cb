package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupErrorPrecedence(t *testing.T) {
	ctx := testContext(t)
	errPositions := errors.New("positions missing")
	errSnapshots := errors.New("snapshots unreachable")

	positions := New("positions", func(ctx context.Context, _ struct{}) (int, error) { return 0, errPositions }, struct{}{})
	snapshots := New("snapshots", func(ctx context.Context, _ struct{}) (int, error) { return 0, errSnapshots }, struct{}{})
	g := NewGroup("dashboard", positions, snapshots)

	require.NoError(t, g.Start(ctx))
	defer g.Stop()
	require.NoError(t, g.Wait(ctx))

	assert.False(t, g.Loading())
	assert.ErrorIs(t, g.Err(), errPositions)
}

func TestGroupLoadingIsAny(t *testing.T) {
	ctx := testContext(t)
	release := make(chan struct{})
	fast := New("fast", func(ctx context.Context, _ struct{}) (int, error) { return 1, nil }, struct{}{})
	slow := New("slow", func(ctx context.Context, _ struct{}) (int, error) {
		<-release
		return 2, nil
	}, struct{}{})
	g := NewGroup("mixed", fast, slow)

	require.NoError(t, g.Start(ctx))
	require.NoError(t, fast.Wait(ctx))
	assert.True(t, g.Loading())
	assert.NoError(t, g.Err())

	close(release)
	require.NoError(t, g.Wait(ctx))
	assert.False(t, g.Loading())
	g.Stop()
}

func TestGroupRefetchFansOut(t *testing.T) {
	ctx := testContext(t)
	var a, b atomic.Int32
	g := NewGroup("fanout",
		New("a", func(ctx context.Context, _ struct{}) (int32, error) { return a.Add(1), nil }, struct{}{}),
		New("b", func(ctx context.Context, _ struct{}) (int32, error) { return b.Add(1), nil }, struct{}{}),
	)
	require.NoError(t, g.Start(ctx))
	defer g.Stop()
	require.NoError(t, g.Wait(ctx))

	g.Refetch()
	require.NoError(t, g.Wait(ctx))
	assert.Equal(t, int32(2), a.Load())
	assert.Equal(t, int32(2), b.Load())
}
