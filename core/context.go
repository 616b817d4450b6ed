package core

import (
	"context"

	"github.com/huangsam/idescope/internal/contract"
)

// Context keys for query options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	cacheManagerKey   contextKey = "cacheManager"
	runIDKey          contextKey = "runID"
)

// WithSuppressHeader sets whether headers should be suppressed in the context
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// contextWithCacheManager stores the cache manager for worker goroutines
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// getCacheManager returns the cache manager from context, or nil
func getCacheManager(ctx context.Context) contract.CacheManager {
	mgr, _ := ctx.Value(cacheManagerKey).(contract.CacheManager)
	return mgr
}

// withRunID records the history run the current query belongs to
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the history run id from context
func getRunID(ctx context.Context) (int64, bool) {
	runID, ok := ctx.Value(runIDKey).(int64)
	return runID, ok
}
