// Package errors provides centralized error handling for the orchestrator,
// with optional Sentry telemetry reporting.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// ErrorCategory groups errors for logging, metrics and telemetry.
type ErrorCategory string

const (
	CategoryAdapter       ErrorCategory = "adapter"        // Adapter.Pull / Adapter.Reset failures
	CategoryValidation    ErrorCategory = "validation"     // malformed input (config, timeline, CLI flags)
	CategoryState         ErrorCategory = "state"          // orchestrator used outside its state machine
	CategoryEncoding      ErrorCategory = "encoding"        // base64/JSON/WAV decode-encode failures
	CategoryResource      ErrorCategory = "resource"       // ring/playback buffer exhaustion
	CategoryConfiguration ErrorCategory = "configuration"  // config file load/parse
	CategoryFileIO        ErrorCategory = "file-io"        // timeline/WAV artifact I/O
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when no component was set explicitly.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component, category and structured context.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	mu       sync.Mutex
	reported bool
}

func (ee *EnhancedError) Error() string { return ee.Err.Error() }

func (ee *EnhancedError) Unwrap() error { return ee.Err }

func (ee *EnhancedError) Is(target error) bool {
	var other *EnhancedError
	if stderrors.As(target, &other) {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the error's structured context.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

// MarkReported records that telemetry has already seen this error.
func (ee *EnhancedError) MarkReported() {
	ee.mu.Lock()
	ee.reported = true
	ee.mu.Unlock()
}

// IsReported reports whether telemetry has already seen this error.
func (ee *EnhancedError) IsReported() bool {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	return ee.reported
}

// ErrorBuilder builds an EnhancedError with a fluent interface.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts building an enhanced error around err (may be nil).
func New(err error) *ErrorBuilder {
	if err == nil {
		err = stderrors.New("")
	}
	return &ErrorBuilder{err: err}
}

// Newf formats a message and starts building an enhanced error around it.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// Build finalizes the error and reports it to telemetry when a reporter is
// registered via SetReporter.
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = ComponentUnknown
	}
	category := eb.category
	if category == "" {
		category = CategoryGeneric
	}

	ee := &EnhancedError{
		Err:       eb.err,
		Component: component,
		Category:  category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}

	if hasActiveReporting.Load() {
		reportToTelemetry(ee)
	}

	return ee
}

// Is delegates to the standard library for plain error comparisons.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As delegates to the standard library for plain error unwrapping.
func As(err error, target any) bool { return stderrors.As(err, target) }

var hasActiveReporting atomic.Bool
