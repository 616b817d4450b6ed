// Package cmd defines the command-line interface for idescope.
package cmd

import (
	"github.com/huangsam/idescope/internal/contract"
	"github.com/huangsam/idescope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("types", "t", "", "Measurement types to select, e.g. 'acc temp -light' or '*'")
	rootCmd.PersistentFlags().String("start", "", "Window start: seconds, [[D:]H:]M:S, or RFC 3339 timestamp")
	rootCmd.PersistentFlags().String("end", "", "Window end: seconds, [[D:]H:]M:S, or RFC 3339 timestamp")
	rootCmd.PersistentFlags().Bool("whole", false, "Summarize whole channels instead of subchannels")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Bool("timestamps", false, "Show raw microseconds instead of formatted durations")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("history-backend", "", "Query history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for query history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of samplesCmd to Viper
	samplesCmd.Flags().StringP("channel", "c", "", "Source to export as '{ch}.{sub}' or '{ch}.*'")
	samplesCmd.Flags().String("time-mode", string(schema.SecondsTime), "Time column: seconds or timedelta or datetime")
	samplesCmd.Flags().Int("limit", 0, "Maximum number of samples to export (0 = all)")
	if err := viper.BindPFlags(samplesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding samples flags", err)
	}

	// The reference time only matters to the time command
	timeCmd.Flags().String("ref", "", "RFC 3339 reference time that timestamps are measured from")

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
