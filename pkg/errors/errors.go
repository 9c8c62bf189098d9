// Unified error handling for the limitxy post-processor
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
	"runtime"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Configuration errors
	ErrConfigSection    ErrorCode = "CONFIG_SECTION"
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// G-code document errors
	ErrGCodeDocument   ErrorCode = "GCODE_DOCUMENT"
	ErrGCodeBlockIndex ErrorCode = "GCODE_BLOCK_INDEX"

	// Post-processing errors
	ErrOptionsValidation ErrorCode = "OPTIONS_VALIDATION"
	ErrBaselineMissing   ErrorCode = "BASELINE_MISSING"
	ErrRangeDegenerate   ErrorCode = "RANGE_DEGENERATE"
	ErrAlreadyProcessed  ErrorCode = "ALREADY_PROCESSED"

	// Runtime errors
	ErrRuntime ErrorCode = "RUNTIME"
)

// HostError is the unified error type for the post-processor
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section (if applicable)
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *HostError) Error() string {
	switch {
	case e.Option != "":
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Option, e.Message)
	case e.Section != "":
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Section, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// SetContext adds additional context
func (e *HostError) SetContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Config errors

// ConfigSectionError creates an error for missing config section
func ConfigSectionError(section string) *HostError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigValidationError creates an error for config validation failure
func ConfigValidationError(section, option string, reason string) *HostError {
	return New(ErrConfigValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetSection(section).
		SetOption(option)
}

// G-code errors

// DocumentError creates an error for a document that cannot be split into layer blocks
func DocumentError(reason string) *HostError {
	return New(ErrGCodeDocument, fmt.Sprintf("malformed G-code document: %s", reason))
}

// BlockIndexError creates an error for an edit addressing a block that does not exist
func BlockIndexError(index, count int) *HostError {
	return New(ErrGCodeBlockIndex, fmt.Sprintf("block index %d out of range [0, %d)", index, count)).
		SetContext("index", index).
		SetContext("count", count)
}

// Post-processing errors

// OptionsError wraps an options validation failure
func OptionsError(err error) *HostError {
	return Wrap(err, ErrOptionsValidation, fmt.Sprintf("invalid options: %v", err))
}

// BaselineError creates an error for baseline values that are neither configured nor detectable
func BaselineError(what string) *HostError {
	return New(ErrBaselineMissing, fmt.Sprintf("no baseline %s configured or found in document", what))
}

// DegenerateRangeError creates an error for a layer range spanning no blocks
func DegenerateRangeError(start, end int) *HostError {
	return New(ErrRangeDegenerate, fmt.Sprintf("layer range resolves to blocks [%d, %d) which is empty", start, end)).
		SetContext("start_index", start).
		SetContext("end_index", end)
}

// AlreadyProcessedError creates an error for input that already carries the post-processed mark
func AlreadyProcessedError() *HostError {
	return New(ErrAlreadyProcessed, "document is already post-processed; reapplying would duplicate overrides")
}

// RuntimeError creates a general runtime error
func RuntimeError(message string) *HostError {
	return New(ErrRuntime, message)
}

// RecoverPanic converts a recovered panic value into an error.
// It must be called from a deferred function with the value returned by recover().
func RecoverPanic(r interface{}) *HostError {
	if r == nil {
		return nil
	}
	switch x := r.(type) {
	case runtime.Error:
		return RuntimeError(x.Error())
	case error:
		return Wrap(x, ErrRuntime, x.Error())
	case string:
		return RuntimeError(fmt.Sprintf("panic: %s", x))
	default:
		return RuntimeError(fmt.Sprintf("panic: %v", x))
	}
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if hostErr, ok := err.(*HostError); ok && hostErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation)
}

// IsInput checks if error was caused by user-supplied options or documents
func IsInput(err error) bool {
	return IsConfig(err) ||
		Is(err, ErrGCodeDocument) ||
		Is(err, ErrOptionsValidation) ||
		Is(err, ErrBaselineMissing) ||
		Is(err, ErrRangeDegenerate) ||
		Is(err, ErrAlreadyProcessed)
}
