package core

import (
	"context"
	"sync"
	"testing"

	"github.com/huangsam/idescope/internal/iocache"
	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	mgr := &iocache.MockCacheManager{}

	ctx = WithSuppressHeader(ctx)
	ctx = contextWithCacheManager(ctx, mgr)
	ctx = withRunID(ctx, 12345)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			runID, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "Goroutine %d: shouldSuppressHeader should be true", i)
			assert.Same(t, mgr, getCacheManager(ctx), "Goroutine %d: cache manager should round-trip", i)
			assert.True(t, ok, "Goroutine %d: getRunID should return true", i)
			assert.Equal(t, int64(12345), runID, "Goroutine %d: runID should be 12345", i)
		})
	}
	wg.Wait()
}

// TestContextDefaults tests the zero values of an empty context.
func TestContextDefaults(t *testing.T) {
	ctx := context.Background()

	assert.False(t, shouldSuppressHeader(ctx))
	assert.Nil(t, getCacheManager(ctx))
	_, ok := getRunID(ctx)
	assert.False(t, ok)

	// Wrong value types are ignored
	ctx = context.WithValue(ctx, runIDKey, "12")
	ctx = context.WithValue(ctx, suppressHeaderKey, "yes")
	_, ok = getRunID(ctx)
	assert.False(t, ok)
	assert.False(t, shouldSuppressHeader(ctx))
}

// TestContextIsolation tests that derived contexts do not leak into siblings.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	ctx1 := withRunID(base, 1)
	ctx2 := withRunID(base, 2)

	id1, _ := getRunID(ctx1)
	id2, _ := getRunID(ctx2)
	assert.Equal(t, int64(1), id1)
	assert.Equal(t, int64(2), id2)
	_, ok := getRunID(base)
	assert.False(t, ok)
}
