package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for pass-level failures
type ErrorCode string

const (
	// SourceUnreadable indicates a source file could not be read
	SourceUnreadable ErrorCode = "SOURCE_UNREADABLE"
	// ParseFailed indicates the front end could not parse a source file
	ParseFailed ErrorCode = "PARSE_FAILED"
	// FrontEndUnavailable indicates the binary was built without tree-sitter support
	FrontEndUnavailable ErrorCode = "FRONTEND_UNAVAILABLE"
	// Cancelled indicates the pass was cancelled and nothing was emitted
	Cancelled ErrorCode = "CANCELLED"
	// ConfigInvalid indicates the gdgen configuration is unusable
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// ManifestFailed indicates the manifest store could not be read or written
	ManifestFailed ErrorCode = "MANIFEST_FAILED"
	// OutputDrift indicates generated files on disk differ from a fresh pass
	OutputDrift ErrorCode = "OUTPUT_DRIFT"
	// UnitNotFound indicates no emitted unit has the requested key
	UnitNotFound ErrorCode = "UNIT_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// GenError represents a gdgen error with code, message, and suggestions
type GenError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a GenError with the default fixes for its code
func New(code ErrorCode, message string, cause error) *GenError {
	return &GenError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *GenError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GenError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *GenError) WithDetails(details interface{}) *GenError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	OutputDrift: {
		{
			Type:        RunCommand,
			Command:     "gdgen generate",
			Safe:        true,
			Description: "Regenerate sources and commit the result",
		},
	},
	FrontEndUnavailable: {
		{
			Type:        RunCommand,
			Command:     "CGO_ENABLED=1 go install gdgen/cmd/gdgen",
			Safe:        true,
			Description: "Rebuild gdgen with CGO enabled (tree-sitter)",
		},
	},
	ManifestFailed: {
		{
			Type:        RunCommand,
			Command:     "rm -f .gdgen/manifest.db && gdgen generate",
			Safe:        false,
			Description: "Drop the manifest and regenerate from scratch",
		},
	},
	UnitNotFound: {
		{
			Type:        RunCommand,
			Command:     "gdgen inspect units",
			Safe:        true,
			Description: "List the keys recorded by the last pass",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "gdgen inspect config",
			Safe:        true,
			Description: "Show the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// CodeOf returns the code of a *GenError anywhere in err's chain, or "".
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ge, ok := err.(*GenError); ok {
			return ge.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
