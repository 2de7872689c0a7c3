package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class in the response envelope. Codes are
// stable API surface; messages are not.
type ErrorCode string

const (
	CodeNoFile            ErrorCode = "no_file"
	CodeFileType          ErrorCode = "file_type"
	CodeFileTooLarge      ErrorCode = "file_too_large"
	CodeParseFailed       ErrorCode = "parse_failed"
	CodeEmptyWorkbook     ErrorCode = "empty_workbook"
	CodeRateLimited       ErrorCode = "rate_limited"
	CodeNotEntitled       ErrorCode = "not_entitled"
	CodeMissingCredential ErrorCode = "missing_credential"
	CodeModelNotFound     ErrorCode = "model_not_found"
	CodeInternal          ErrorCode = "internal"
)

// Sentinel errors for the input and governance taxonomy. Degradable AI
// failures are deliberately not represented here: they become warnings,
// never errors.
var (
	ErrNoFile            = errors.New("no file provided")
	ErrFileType          = errors.New("unsupported file type")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrParse             = errors.New("spreadsheet could not be parsed")
	ErrEmptyWorkbook     = errors.New("workbook contains no sheets")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrNotEntitled       = errors.New("premium entitlement required")
	ErrMissingCredential = errors.New("generation service credential not configured")
	ErrModelNotFound     = errors.New("generation model not found")
)

// CodeFor maps an error to its envelope code. Unknown errors map to
// CodeInternal so nothing from the pipeline internals leaks to callers.
func CodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrNoFile):
		return CodeNoFile
	case errors.Is(err, ErrFileType):
		return CodeFileType
	case errors.Is(err, ErrFileTooLarge):
		return CodeFileTooLarge
	case errors.Is(err, ErrParse):
		return CodeParseFailed
	case errors.Is(err, ErrEmptyWorkbook):
		return CodeEmptyWorkbook
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrNotEntitled):
		return CodeNotEntitled
	case errors.Is(err, ErrMissingCredential):
		return CodeMissingCredential
	case errors.Is(err, ErrModelNotFound):
		return CodeModelNotFound
	default:
		return CodeInternal
	}
}

// StatusFor selects the HTTP status for an envelope code.
func StatusFor(code ErrorCode) int {
	switch code {
	case CodeNoFile, CodeFileType, CodeFileTooLarge:
		return http.StatusBadRequest
	case CodeNotEntitled:
		return http.StatusForbidden
	case CodeParseFailed, CodeEmptyWorkbook:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeMissingCredential, CodeModelNotFound:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Wrap attaches context to a sentinel so errors.Is still matches.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
