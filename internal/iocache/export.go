package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/internal/parquet"
)

// ExportHistory writes the recorded query history of store to two Parquet
// files derived from outputFile. Progress lines go to w.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured; set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no query history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total query runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total channel rows: %d\n", status.TableSizes[channelRowsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve query runs: %w", err)
	}
	rows, err := store.GetAllChannelRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve channel rows: %w", err)
	}

	parquetRuns := parquet.ConvertQueryRunRecords(runs)
	runsFile := outputFile + ".query_runs.parquet"
	if err := parquet.WriteQueryRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write query runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d query runs to: %s\n", len(parquetRuns), runsFile)

	parquetRows := parquet.ConvertChannelRowRecords(rows)
	rowsFile := outputFile + ".channel_rows.parquet"
	if err := parquet.WriteChannelRowsParquet(parquetRows, rowsFile); err != nil {
		return fmt.Errorf("failed to write channel rows: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d channel rows to: %s\n", len(parquetRows), rowsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB or pandas.")
	return nil
}
