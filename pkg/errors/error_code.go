package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidCostRate      ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidThreshold     ErrorCode = 104
	ErrCodeMissingColumn        ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106

	// Data errors (200-299). Fatal for the run.
	ErrCodeDataNotFound           ErrorCode = 200
	ErrCodeQueryFailed            ErrorCode = 201
	ErrCodeMissingPrice           ErrorCode = 202
	ErrCodeNonMonotonicTimestamps ErrorCode = 203
	ErrCodeDuplicateTimestamp     ErrorCode = 204
	ErrCodeEmptyDataset           ErrorCode = 205

	// Strategy-contract errors (300-399). Fatal; the strategy must be fixed,
	// not patched at the simulator boundary.
	ErrCodePositionOutOfRange  ErrorCode = 300
	ErrCodePositionUndefined   ErrorCode = 301
	ErrCodeStrategyConfigError ErrorCode = 302
	ErrCodeUnknownStrategy     ErrorCode = 303

	// Simulation errors (400-499)
	ErrCodeSimulationFailed   ErrorCode = 400
	ErrCodeEpisodeExhausted   ErrorCode = 401
	ErrCodeMissingRegime      ErrorCode = 402
	ErrCodeTrajectoryTooSmall ErrorCode = 403

	// Performance errors (500-599)
	ErrCodeEmptyTrajectory ErrorCode = 500

	// Result/export errors (600-699)
	ErrCodeResultWriteFailed ErrorCode = 600
)
