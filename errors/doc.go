// Package errors provides the structured error type used across stream-list.
// Every failure carries a machine-readable ErrorCode, a human-readable message,
// optional details, and an optional cause reachable through errors.Unwrap.
package errors
