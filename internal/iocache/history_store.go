package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
)

// Table names for query history.
const (
	queryRunsTable   = "idescope_query_runs"
	channelRowsTable = "idescope_channel_rows"
)

// channelRowColumns lists the columns of channelRowsTable in insert order.
var channelRowColumns = []string{
	"run_id", "dataset", "channel", "name", "type_label", "units", "nominal_rate",
	"start_us", "end_us", "duration_us", "samples", "measured_rate",
}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// Tables are created through the embedded migrations.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if _, err := migrateDB(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// enabled reports whether the store writes anywhere.
func (hs *HistoryStoreImpl) enabled() bool {
	return hs.backend != schema.NoneBackend && hs.db != nil
}

// BeginRun creates a new query run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, params map[string]any) (int64, error) {
	if !hs.enabled() {
		return 0, nil
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal query params: %w", err)
	}

	quotedTableName := quoteTableName(queryRunsTable, hs.backend)

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, query_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, startTime, string(paramsJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, query_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(paramsJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert query run: %w", err)
	}
	return runID, nil
}

// EndRun updates the query run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	if !hs.enabled() {
		return nil
	}

	quotedTableName := quoteTableName(queryRunsTable, hs.backend)
	ph := placeholders(hs.backend, 4)

	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, ph[0])
	startTime, err := hs.scanTime(hs.db.QueryRow(selectQuery, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_rows = %s WHERE run_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3])
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update query run: %w", err)
	}
	return nil
}

// RecordRow stores one channel table row produced by a run.
func (hs *HistoryStoreImpl) RecordRow(runID int64, dataset string, row schema.ChannelRow) error {
	if !hs.enabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(channelRowsTable, hs.backend),
		strings.Join(channelRowColumns, ", "),
		joinPlaceholders(hs.backend, len(channelRowColumns)),
	)
	args := []any{
		runID, dataset, row.Channel, row.Name, row.Type, row.Units, row.Rate,
		row.Start, row.End, row.Duration, row.Samples, row.MeasuredRate,
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert channel row: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if !hs.enabled() {
		return status, nil
	}

	runs := quoteTableName(queryRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		var lastRunTime time.Time
		var err error
		status.LastRunID, lastRunTime, err = hs.scanIDAndTime(hs.db.QueryRow(lastRunQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if status.OldestRunTime, err = hs.scanTime(hs.db.QueryRow(oldestRunQuery)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		rowsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_rows), 0) FROM %s", runs)
		if err := hs.db.QueryRow(rowsQuery).Scan(&status.TotalRowsStored); err != nil {
			return status, fmt.Errorf("failed to get total rows stored: %w", err)
		}
	}

	for _, table := range []string{queryRunsTable, channelRowsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		var count int64
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all query runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.QueryRunRecord, error) {
	if !hs.enabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_rows, query_params FROM %s ORDER BY run_id",
		quoteTableName(queryRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.QueryRunRecord
	for rows.Next() {
		var record schema.QueryRunRecord
		var totalRows sql.NullInt32

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &totalRows, &record.QueryParams); err != nil {
				return nil, fmt.Errorf("failed to scan query run: %w", err)
			}
			if record.StartTime, err = parseTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &totalRows, &record.QueryParams); err != nil {
				return nil, fmt.Errorf("failed to scan query run: %w", err)
			}
		}
		record.TotalRows = totalRows.Int32

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query runs: %w", err)
	}
	return results, nil
}

// GetAllChannelRows retrieves all recorded channel rows from the store.
func (hs *HistoryStoreImpl) GetAllChannelRows() ([]schema.ChannelRowRecord, error) {
	if !hs.enabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id, row_id",
		strings.Join(channelRowColumns, ", "), quoteTableName(channelRowsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ChannelRowRecord
	for rows.Next() {
		var r schema.ChannelRowRecord
		if err := rows.Scan(&r.RunID, &r.Dataset, &r.Channel, &r.Name, &r.TypeLabel, &r.Units, &r.NominalRate,
			&r.StartUs, &r.EndUs, &r.DurationUs, &r.Samples, &r.MeasuredRate); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channel rows: %w", err)
	}
	return results, nil
}

// scanTime reads a single start_time column.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var raw string
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return parseTime(raw)
}

// scanIDAndTime reads a run_id, start_time pair.
func (hs *HistoryStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if hs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&id, &t)
		return id, t, err
	}
	var raw string
	if err := row.Scan(&id, &raw); err != nil {
		return 0, time.Time{}, err
	}
	t, err := parseTime(raw)
	return id, t, err
}

// joinPlaceholders renders n comma-separated placeholders.
func joinPlaceholders(backend schema.DatabaseBackend, n int) string {
	return strings.Join(placeholders(backend, n), ", ")
}
