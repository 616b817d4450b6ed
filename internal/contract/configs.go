package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/huangsam/idescope/core/measure"
	"github.com/huangsam/idescope/core/timeparse"
	"github.com/huangsam/idescope/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// CustomTypeRaw declares an extra measurement type in the config file.
type CustomTypeRaw struct {
	Name   string `mapstructure:"name"`
	Abbrev string `mapstructure:"abbrev"`
}

// Config holds the runtime configuration for a query.
// This struct remains the "final, validated" config.
type Config struct {
	DatasetPaths []string
	Filter       measure.Filter
	Start        string // Raw window start; resolved per dataset session
	End          string // Raw window end; resolved per dataset session
	Whole        bool   // One row per channel instead of per subchannel
	Workers      int
	Precision    int
	Output       schema.OutputMode
	OutputFile   string
	Timestamps   bool // Show raw microseconds instead of formatted durations
	Width        int  // Terminal width override (0 = auto-detect)

	Channel  string // Source to export in "{ch}.{sub}" or "{ch}.*" form
	TimeMode schema.TimeMode
	Limit    int // Maximum exported samples (0 = all)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DatasetArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Types            string `mapstructure:"types"`
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Timestamps       bool   `mapstructure:"timestamps"`
	Width            int    `mapstructure:"width"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from tableCmd.Flags() ---
	Whole bool `mapstructure:"whole"`

	// --- Fields from samplesCmd.Flags() ---
	Channel  string `mapstructure:"channel"`
	TimeMode string `mapstructure:"time-mode"`
	Limit    int    `mapstructure:"limit"`

	// --- Extra measurement types from config file ---
	CustomTypes []CustomTypeRaw `mapstructure:"custom-types"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.DatasetPaths = slices.Clone(c.DatasetPaths)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Custom types are registered in reg
// before the filter is resolved against it.
func ProcessAndValidate(cfg *Config, reg *measure.Registry, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCustomTypes(reg, input); err != nil {
		return err
	}
	if err := processFilter(cfg, reg, input); err != nil {
		return err
	}
	if err := processTimeWindow(cfg, input); err != nil {
		return err
	}
	if err := processSampleOptions(cfg, input); err != nil {
		return err
	}
	return resolveDatasetPaths(cfg, input)
}

// RevalidateQuery applies per-request selection overrides to an already
// validated config. Empty arguments keep the values cfg already holds.
func RevalidateQuery(cfg *Config, reg *measure.Registry, types, start, end string) error {
	input := &ConfigRawInput{Types: cfg.Filter.String(), Start: cfg.Start, End: cfg.End}
	if types != "" {
		input.Types = types
	}
	if start != "" {
		input.Start = start
	}
	if end != "" {
		input.End = end
	}
	if err := processFilter(cfg, reg, input); err != nil {
		return err
	}
	return processTimeWindow(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Timestamps = input.Timestamps
	cfg.Whole = input.Whole

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	// --- 3. Width Validation ---
	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	// --- 4. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processCustomTypes registers config-declared types so filters can name them.
func processCustomTypes(reg *measure.Registry, input *ConfigRawInput) error {
	for i, ct := range input.CustomTypes {
		name, abbrev := strings.TrimSpace(ct.Name), strings.TrimSpace(ct.Abbrev)
		if name == "" || abbrev == "" {
			return fmt.Errorf("custom type %d needs both a name and an abbrev", i)
		}
		if strings.ContainsAny(abbrev, " \t") || strings.HasPrefix(abbrev, "-") || abbrev == measure.WildcardToken {
			return fmt.Errorf("custom type abbrev %q must be a single token without a leading '-'", abbrev)
		}
		reg.Get(name, abbrev)
	}
	return nil
}

// processFilter resolves --types against the registry so bad names fail early.
func processFilter(cfg *Config, reg *measure.Registry, input *ConfigRawInput) error {
	cfg.Filter = measure.Spec(input.Types)
	if _, _, err := reg.Split(cfg.Filter); err != nil {
		return fmt.Errorf("invalid --types: %w", err)
	}
	return nil
}

// processTimeWindow checks the syntax of --start and --end. They stay raw because
// absolute timestamps resolve against each dataset's own session start.
func processTimeWindow(cfg *Config, input *ConfigRawInput) error {
	cfg.Start = strings.TrimSpace(input.Start)
	cfg.End = strings.TrimSpace(input.End)
	if _, err := timeparse.Parse(cfg.Start); err != nil {
		return fmt.Errorf("invalid start '%s': %w", input.Start, err)
	}
	if _, err := timeparse.Parse(cfg.End); err != nil {
		return fmt.Errorf("invalid end '%s': %w", input.End, err)
	}
	return nil
}

// processSampleOptions handles the sample export parameters.
func processSampleOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Channel = strings.TrimSpace(input.Channel)
	if cfg.Channel != "" {
		if _, _, err := schema.ParseDisplayID(cfg.Channel); err != nil {
			return fmt.Errorf("invalid --channel: %w", err)
		}
	}

	cfg.TimeMode = schema.TimeMode(strings.ToLower(input.TimeMode))
	if cfg.TimeMode == "" {
		cfg.TimeMode = schema.SecondsTime
	}
	if _, ok := schema.ValidTimeModes[cfg.TimeMode]; !ok {
		return fmt.Errorf("invalid time mode '%s'. must be seconds, timedelta, datetime", input.TimeMode)
	}

	if input.Limit < 0 {
		return fmt.Errorf("limit cannot be negative (received %d)", input.Limit)
	}
	cfg.Limit = input.Limit
	return nil
}

// resolveDatasetPaths expands positional arguments into manifest paths.
// A directory contributes every manifest directly inside it, in name order.
func resolveDatasetPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.DatasetPaths = nil
	for _, arg := range input.DatasetArgs {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !IsDatasetFile(arg) {
				return fmt.Errorf("dataset %s: unsupported extension (expected .yaml, .yml or .json)", arg)
			}
			cfg.DatasetPaths = append(cfg.DatasetPaths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return fmt.Errorf("dataset directory %s: %w", arg, err)
		}
		found := false
		for _, entry := range entries {
			if entry.IsDir() || !IsDatasetFile(entry.Name()) {
				continue
			}
			cfg.DatasetPaths = append(cfg.DatasetPaths, filepath.Join(arg, entry.Name()))
			found = true
		}
		if !found {
			return fmt.Errorf("dataset directory %s has no .yaml, .yml or .json files", arg)
		}
	}
	return nil
}

// IsDatasetFile reports whether path has a manifest extension.
func IsDatasetFile(path string) bool {
	_, ok := schema.ValidDatasetExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
