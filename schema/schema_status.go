package schema

import "time"

// CacheStatus represents the status of the table cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the query history store.
type HistoryStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalRuns       int              `json:"total_runs"`
	LastRunID       int64            `json:"last_run_id"`
	LastRunTime     time.Time        `json:"last_run_time"`
	OldestRunTime   time.Time        `json:"oldest_run_time"`
	TotalRowsStored int              `json:"total_rows_stored"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// QueryRunRecord represents a row from the idescope_query_runs table.
type QueryRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	QueryParams   *string
}

// ChannelRowRecord represents a row from the idescope_channel_rows table.
type ChannelRowRecord struct {
	RunID        int64
	Dataset      string
	Channel      string
	Name         string
	TypeLabel    string
	Units        string
	NominalRate  float64
	StartUs      *int64
	EndUs        *int64
	DurationUs   *int64
	Samples      int32
	MeasuredRate *float64
}
