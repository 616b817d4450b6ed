// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/idescope/schema"
)

// DatasetLoader reads a recording from disk into the schema model.
// This allows the query layer to be tested without real files.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*schema.Dataset, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetTableStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking channel table queries.
type HistoryStore interface {
	// BeginRun creates a new query run and returns its unique ID
	BeginRun(startTime time.Time, params map[string]any) (int64, error)

	// EndRun updates the query run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// RecordRow stores one channel table row produced by a run
	RecordRow(runID int64, dataset string, row schema.ChannelRow) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns retrieves every recorded query run
	GetAllRuns() ([]schema.QueryRunRecord, error)

	// GetAllChannelRows retrieves every recorded channel row
	GetAllChannelRows() ([]schema.ChannelRowRecord, error)

	// Close closes the underlying connection
	Close() error
}

// OutputWriter renders query results in the configured format.
// This allows the query layer to be tested without touching stdout.
type OutputWriter interface {
	WriteTables(tables []*schema.ChannelTable, cfg *Config, duration time.Duration) error
	WriteChannels(channels []schema.ChannelInfo, cfg *Config) error
	WriteTypes(types []schema.TypeInfo, cfg *Config) error
	WriteSamples(frame *schema.SampleFrame, cfg *Config) error
	WriteTime(result schema.ParsedTime, cfg *Config) error
}
