package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/testutil"
)

func samplePayload() *provenance.Payload {
	b := testutil.NewPayload()
	b.Mapping("anidb:1", "tvdb:10", true)
	b.Mapping("anidb:1", "tmdb:20", false)
	b.Mapping("anidb:2", "tvdb:10", true)
	b.Mapping("anidb:3", "anidb:3", true)
	return b.Build()
}

func TestLoader_ConcurrentGetsShareOneLoad(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	src := Func(func(ctx context.Context) (*provenance.Payload, error) {
		calls.Add(1)
		<-release
		return samplePayload(), nil
	})
	l := NewLoader(src, nil)

	const callers = 16
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := l.Get(context.Background())
			assert.NoError(t, err)
			snaps[i] = s
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), l.Loads())
	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
}

func TestLoader_FailedLoadIsRetried(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("network down")
	src := Func(func(ctx context.Context) (*provenance.Payload, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return samplePayload(), nil
	})
	l := NewLoader(src, nil)

	_, err := l.Get(context.Background())
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.ErrorIs(t, err, boom)
	_, ok := l.Current()
	assert.False(t, ok)

	s, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Generation)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_GetCachesSnapshot(t *testing.T) {
	var calls atomic.Int32
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		calls.Add(1)
		return samplePayload(), nil
	}), nil)

	first, err := l.Get(context.Background())
	require.NoError(t, err)
	second, err := l.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoader_ReloadSwapsSnapshot(t *testing.T) {
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		return samplePayload(), nil
	}), nil)

	old, err := l.Get(context.Background())
	require.NoError(t, err)

	fresh, err := l.Reload(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, old, fresh)
	assert.Equal(t, uint64(1), old.Generation)
	assert.Equal(t, uint64(2), fresh.Generation)
	assert.Len(t, old.Payload.Mappings, 4, "old snapshot is untouched")

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Same(t, fresh, cur)
}

func TestLoader_FailedReloadKeepsPreviousSnapshot(t *testing.T) {
	var fail atomic.Bool
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		if fail.Load() {
			return nil, errors.New("corrupt")
		}
		return samplePayload(), nil
	}), nil)

	old, err := l.Get(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	_, err = l.Reload(context.Background())
	require.Error(t, err)

	cur, ok := l.Current()
	require.True(t, ok)
	assert.Same(t, old, cur)
}

func TestLoader_ResetForcesLoad(t *testing.T) {
	var calls atomic.Int32
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		calls.Add(1)
		return samplePayload(), nil
	}), nil)

	_, err := l.Get(context.Background())
	require.NoError(t, err)
	l.Reset()
	_, err = l.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_CancelledWaitDoesNotAbortSharedLoad(t *testing.T) {
	release := make(chan struct{})
	var sawCancel atomic.Bool
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		<-release
		sawCancel.Store(ctx.Err() != nil)
		return samplePayload(), nil
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := l.Get(ctx)
		errc <- err
	}()

	require.Eventually(t, func() bool { return l.Loads() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	s, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Generation)
	assert.False(t, sawCancel.Load())
}

func TestSnapshot_MappingsFor(t *testing.T) {
	l := NewLoader(Func(func(ctx context.Context) (*provenance.Payload, error) {
		return samplePayload(), nil
	}), nil)
	s, err := l.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []provenance.MappingID{0, 1}, s.MappingsFor("anidb:1"))
	assert.Equal(t, []provenance.MappingID{0, 2}, s.MappingsFor("tvdb:10"))
	assert.Equal(t, []provenance.MappingID{3}, s.MappingsFor("anidb:3"), "self mapping listed once")
	assert.Empty(t, s.MappingsFor("mal:1"))
}
