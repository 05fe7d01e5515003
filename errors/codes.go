package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Collection errors
const (
	// ErrCodeOutOfRange indicates an index outside the source bounds.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"
	// ErrCodeReadOnlySource indicates a mutation on a pipeline that does not own its source.
	ErrCodeReadOnlySource ErrorCode = "READ_ONLY_SOURCE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a value has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeUnsupported indicates a format or operation that is not supported.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// exitCodes maps error codes to CLI exit statuses.
var exitCodes = map[ErrorCode]int{
	ErrCodeInvalidInput:   2,
	ErrCodeMissingField:   2,
	ErrCodeInvalidFormat:  2,
	ErrCodeUnsupported:    2,
	ErrCodeOutOfRange:     3,
	ErrCodeReadOnlySource: 3,
}

// ExitCode returns the process exit status for code. Unknown codes map to 1.
func ExitCode(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return 1
}
