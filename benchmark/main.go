// Package main benchmarks the idescope CLI on a directory of recordings.
// Each query runs several times without a cache and several times with the
// SQLite cache, treating the first cached run as cold and averaging the rest
// as warm. Results are written as CSV for performance tracking.
//
// Prerequisites:
// - idescope binary installed and available in PATH
// - A directory of .yaml, .yml or .json recording manifests
//
// Usage: go run benchmark/main.go [dataset-dir]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Query       string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkQuery is one CLI invocation to time.
type BenchmarkQuery struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DatasetDir  string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Queries     []BenchmarkQuery
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [dataset-dir]\n", os.Args[0])
		os.Exit(1)
	}
	dir := os.Args[1]

	config := BenchmarkConfig{
		DatasetDir:  dir,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Queries: []BenchmarkQuery{
			{Name: "table-all", Args: []string{"table", dir}},
			{Name: "table-acc", Args: []string{"table", dir, "--types", "acc"}},
			{Name: "table-window", Args: []string{"table", dir, "--start", "1", "--end", "1:00"}},
			{Name: "table-whole", Args: []string{"table", dir, "--whole", "--types", "* -unk"}},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("idescope", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the idescope binary and dataset directory exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("idescope"); err != nil {
		return errors.New("idescope binary not found in PATH")
	}
	info, err := os.Stat(config.DatasetDir)
	if err != nil {
		return fmt.Errorf("dataset directory %s: %w", config.DatasetDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", config.DatasetDir)
	}
	matches, _ := filepath.Glob(filepath.Join(config.DatasetDir, "*.y*ml"))
	jsonMatches, _ := filepath.Glob(filepath.Join(config.DatasetDir, "*.json"))
	if len(matches)+len(jsonMatches) == 0 {
		return fmt.Errorf("no manifests found in %s", config.DatasetDir)
	}
	return nil
}

// runBenchmarks executes every configured query.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d queries, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Queries), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Queries))
	for _, q := range config.Queries {
		results = append(results, runBenchmarkSuite(config, q))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a query.
func runBenchmarkSuite(config BenchmarkConfig, q BenchmarkQuery) BenchmarkResult {
	fmt.Printf("Running %s\n", q.Name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, q, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Query:       q.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a query numRuns times and returns the first time and the rest.
func runBenchmark(config BenchmarkConfig, q BenchmarkQuery, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, q.Args...)
	args = append(args, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "idescope", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Query completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("idescope_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"query", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Query, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results as a table.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Query", "No-cache", "Cold", "Warm"})
	data := make([][]string, 0, len(results))
	for _, r := range results {
		data = append(data, []string{r.Query, r.NoCacheTime, r.ColdTime, r.WarmTime})
	}
	if err := table.Bulk(data); err != nil {
		fmt.Printf("Warning: failed to build summary: %v\n", err)
		return
	}
	if err := table.Render(); err != nil {
		fmt.Printf("Warning: failed to render summary: %v\n", err)
	}
}
