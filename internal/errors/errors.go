// Package errors provides standardized error codes for diffdeck.
//
// Error codes follow the format {domain}.{error} where:
//   - domain: The subsystem that generated the error (git, diff, watch, server, storage)
//   - error: The specific error type within that domain
//
// These codes are stable and can be used by the browser UI for programmatic
// error handling. Human-readable messages are provided alongside codes.
package errors

import (
	"errors"
	"fmt"
)

// Error codes by domain.
const (
	// Git domain - subprocess execution errors
	CodeGitFailed         = "git.failed"           // Git command exited with an error
	CodeGitOutputTooLarge = "git.output_too_large" // Git output exceeded the buffer ceiling
	CodeGitNotARepo       = "git.not_a_repo"       // Path is not inside a git repository

	// Diff domain - parsing errors
	CodeDiffParseFailed     = "diff.parse_failed"     // Failed to parse diff output
	CodeDiffBlockUnresolved = "diff.block_unresolved" // A file block had no resolvable path (strict mode)

	// Watch domain - filesystem watch errors
	CodeWatchSubscribeFailed = "watch.subscribe_failed" // Could not subscribe a watch root
	CodeWatchNotRunning      = "watch.not_running"      // Operation requires a running watcher

	// Server domain - HTTP/WebSocket errors
	CodeServerListenFailed  = "server.listen_failed"  // Could not bind the listen address
	CodeServerUpgradeFailed = "server.upgrade_failed" // WebSocket upgrade failed
	CodeServerSendFailed    = "server.send_failed"    // Failed to deliver a notification

	// Storage domain - comment persistence errors
	CodeStorageOpenFailed  = "storage.open_failed"  // Database open failed
	CodeStorageQueryFailed = "storage.query_failed" // Database query failed
	CodeStorageNotFound    = "storage.not_found"    // Comment not found

	// General domain - catch-all
	CodeUnknown = "error.unknown" // Unknown error
)

// CodedError wraps an error with a stable error code.
// This allows errors to carry both a code for programmatic handling
// and a message for human consumption.
type CodedError struct {
	Code    string // Stable error code (e.g., "git.output_too_large")
	Message string // Human-readable error message
	Cause   error  // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// New creates a new CodedError with the given code and message.
func New(code, message string) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new CodedError wrapping an existing error.
func Wrap(code, message string, cause error) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// GetCode extracts the error code from an error.
// Falls back to CodeUnknown for unrecognized errors.
func GetCode(err error) string {
	if err == nil {
		return ""
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}

	return CodeUnknown
}

// GetMessage extracts a human-readable message from an error.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Message
	}

	return err.Error()
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}
