package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached table stays valid
const cacheTTL = 7 * 24 * time.Hour

// cachedChannelTable loads and summarizes the dataset at path, reusing a cached
// table when the file has not changed since it was stored.
func cachedChannelTable(ctx context.Context, cfg *contract.Config, loader contract.DatasetLoader, builder *TableBuilder, path string) (*schema.ChannelTable, error) {
	var store contract.CacheStore
	if mgr := getCacheManager(ctx); mgr != nil {
		store = mgr.GetTableStore()
	}
	if store == nil {
		// Fallback to direct computation
		return computeChannelTable(ctx, cfg, loader, builder, path)
	}

	key, ok := generateCacheKey(cfg, builder, path)
	if !ok {
		return computeChannelTable(ctx, cfg, loader, builder, path)
	}

	// Check for cache hit
	if table := checkCacheHit(store, key); table != nil {
		return table, nil
	}

	// Cache miss: compute and store
	return computeAndStore(ctx, cfg, loader, builder, path, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached table
func checkCacheHit(store contract.CacheStore, key string) *schema.ChannelTable {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}

	var table schema.ChannelTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return &table
}

// computeAndStore builds the table and stores it in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, loader contract.DatasetLoader, builder *TableBuilder, path string, store contract.CacheStore, key string) (*schema.ChannelTable, error) {
	table, err := computeChannelTable(ctx, cfg, loader, builder, path)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(table); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return table, nil
}

// computeChannelTable loads the dataset and builds its table without caching
func computeChannelTable(ctx context.Context, cfg *contract.Config, loader contract.DatasetLoader, builder *TableBuilder, path string) (*schema.ChannelTable, error) {
	ds, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return builder.BuildChannelTable(ds, tableOptions(cfg))
}

// generateCacheKey creates a unique key from the dataset file state and query
// parameters. It reports false when the file cannot be inspected.
func generateCacheKey(cfg *contract.Config, builder *TableBuilder, path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	key := fmt.Sprintf("%s:%d:%d:%s:%s:%s:%t:%s",
		path,
		info.ModTime().UnixNano(),
		info.Size(),
		cfg.Filter.String(),
		cfg.Start,
		cfg.End,
		cfg.Whole,
		registryFingerprint(builder.selector.Registry()),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), true
}

// registryFingerprint lists the registered types in order, so declaring or
// swapping a custom type invalidates cached tables.
func registryFingerprint(reg *measure.Registry) string {
	types := reg.All()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.Abbrev() + ":" + t.Name()
	}
	return strings.Join(parts, ",")
}

// tableOptions maps the query config onto builder options.
func tableOptions(cfg *contract.Config) TableOptions {
	return TableOptions{
		Filter: cfg.Filter,
		Start:  cfg.Start,
		End:    cfg.End,
		Whole:  cfg.Whole,
	}
}
