package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// TimeMode represents how sample timestamps are rendered on export.
	TimeMode string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All time modes supported for sample export.
const (
	SecondsTime   TimeMode = "seconds" // default
	TimedeltaTime TimeMode = "timedelta"
	DatetimeTime  TimeMode = "datetime"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidTimeModes lists all valid sample time modes.
var ValidTimeModes = map[TimeMode]struct{}{
	SecondsTime:   {},
	TimedeltaTime: {},
	DatetimeTime:  {},
}

// ValidDatasetExtensions lists the manifest extensions the loader understands.
var ValidDatasetExtensions = map[string]struct{}{
	".yaml": {},
	".yml":  {},
	".json": {},
}
