// Package constants provides shared constants for the fiscal-forecast engine.
package constants

// DateLayout is the format expected for entry dates in operation files and is
// also the output date format.
const DateLayout = "2006-01-02"

// TimestampLayout is the format expected for the injected computation clock.
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MonthsPerQuarter is the number of months in a quarter
	MonthsPerQuarter = 3
)

// Money constants
const (
	// BpsDenominator converts basis points to a ratio (10000 bps = 100%)
	BpsDenominator = 10000

	// CentsTolerance is the tolerance in cents for reconciling supplied
	// HT/VAT/TTC triples
	CentsTolerance = 1
)

// Solver constants
const (
	// SolverMaxIterations bounds the fixed-point social-contribution solver
	SolverMaxIterations = 50

	// SolverEpsilonCents is the convergence threshold between successive
	// contribution totals
	SolverEpsilonCents = 1
)

// Schedule constants
const (
	// VATDueDay is the day of the following month on which a VAT period
	// becomes due
	VATDueDay = 15

	// SafeToSpendWindowDays is the look-ahead window used by the dashboard
	// safe-to-spend projection
	SafeToSpendWindowDays = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default operation file name
	DefaultConfigFile = "operation.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the compute API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML
	// operation files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// EngineVersion identifies the computation engine in snapshot metadata.
const EngineVersion = "2.1.0"
