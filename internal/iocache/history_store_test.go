package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/idescope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newSQLiteHistory(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func sampleRow() schema.ChannelRow {
	return schema.ChannelRow{
		Channel:      "8.0",
		ChannelID:    8,
		Name:         "X (100g)",
		Type:         "Acceleration",
		Units:        "g",
		Rate:         5000,
		Start:        ptr(int64(0)),
		End:          ptr(int64(2_000_000)),
		Duration:     ptr(int64(2_000_000)),
		Samples:      10001,
		MeasuredRate: ptr(5000.0),
	}
}

func TestHistoryStoreRunLifecycle(t *testing.T) {
	store := newSQLiteHistory(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(start, map[string]any{"filter": "acc", "datasets": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), runID)

	require.NoError(t, store.RecordRow(runID, "fixture", sampleRow()))
	empty := schema.ChannelRow{Channel: "99.0", ChannelID: 99, Name: "Battery", Type: "Voltage", Units: "V"}
	require.NoError(t, store.RecordRow(runID, "fixture", empty))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 2))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, start.Add(1500*time.Millisecond).Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalRows)
	require.NotNil(t, run.QueryParams)
	assert.JSONEq(t, `{"filter":"acc","datasets":1}`, *run.QueryParams)

	rows, err := store.GetAllChannelRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, schema.ChannelRowRecord{
		RunID:        runID,
		Dataset:      "fixture",
		Channel:      "8.0",
		Name:         "X (100g)",
		TypeLabel:    "Acceleration",
		Units:        "g",
		NominalRate:  5000,
		StartUs:      ptr(int64(0)),
		EndUs:        ptr(int64(2_000_000)),
		DurationUs:   ptr(int64(2_000_000)),
		Samples:      10001,
		MeasuredRate: ptr(5000.0),
	}, rows[0])
	assert.Equal(t, "99.0", rows[1].Channel)
	assert.Nil(t, rows[1].StartUs)
	assert.Nil(t, rows[1].MeasuredRate)
}

func TestHistoryStoreUnfinishedRun(t *testing.T) {
	store := newSQLiteHistory(t)

	_, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Zero(t, runs[0].TotalRows)

	assert.Error(t, store.EndRun(42, time.Now(), 0), "unknown run")
}

func TestHistoryStoreStatus(t *testing.T) {
	store := newSQLiteHistory(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, map[string]int64{queryRunsTable: 0, channelRowsTable: 0}, status.TableSizes)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		runID, err := store.BeginRun(first.Add(time.Duration(i)*time.Hour), map[string]any{"run": i})
		require.NoError(t, err)
		require.NoError(t, store.RecordRow(runID, "fixture", sampleRow()))
		require.NoError(t, store.EndRun(runID, first.Add(time.Duration(i)*time.Hour+time.Second), 1))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastRunID)
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 3, status.TotalRowsStored)
	assert.Equal(t, int64(3), status.TableSizes[channelRowsTable])
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Zero(t, runID)
	assert.NoError(t, store.RecordRow(runID, "fixture", sampleRow()))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStoreBadParams(t *testing.T) {
	store := newSQLiteHistory(t)
	_, err := store.BeginRun(time.Now(), map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "marshal")
}

func TestHistoryStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	_, err = store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
