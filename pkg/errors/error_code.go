package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidParameter     ErrorCode = 101
	ErrCodeInvalidDateRange     ErrorCode = 102

	// Data errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 200
	ErrCodeSymbolNotFound  ErrorCode = 201
	ErrCodeEmptySeries     ErrorCode = 202
	ErrCodeFetchExhausted  ErrorCode = 203

	// Computation errors (300-399)
	ErrCodeComputationFailed ErrorCode = 300

	// Backtest errors (600-699)
	ErrCodeBacktestFailed ErrorCode = 600
)
