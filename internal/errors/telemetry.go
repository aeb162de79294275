package errors

import (
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter forwards enhanced errors to an external crash-reporting
// service. It is optional; the orchestrator runs fine with none registered.
type TelemetryReporter interface {
	ReportError(ee *EnhancedError)
}

var (
	reporterMu sync.RWMutex
	reporter   TelemetryReporter
)

// SetReporter installs the telemetry reporter used by ErrorBuilder.Build.
// Passing nil disables reporting.
func SetReporter(r TelemetryReporter) {
	reporterMu.Lock()
	reporter = r
	reporterMu.Unlock()
	hasActiveReporting.Store(r != nil)
}

func reportToTelemetry(ee *EnhancedError) {
	reporterMu.RLock()
	r := reporter
	reporterMu.RUnlock()
	if r == nil {
		return
	}
	r.ReportError(ee)
}

// SentryReporter reports EnhancedErrors to Sentry, tagging them with the
// component/category pair so they group sensibly in the Sentry UI.
type SentryReporter struct{}

// NewSentryReporter returns a reporter that assumes sentry.Init has already
// been called by the host (e.g. from cmd/root.go based on config).
func NewSentryReporter() *SentryReporter { return &SentryReporter{} }

func (r *SentryReporter) ReportError(ee *EnhancedError) {
	if ee.IsReported() {
		return
	}
	defer ee.MarkReported()

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		for k, v := range ee.GetContext() {
			scope.SetContext(k, map[string]any{"value": v})
		}
		scope.SetLevel(levelFor(ee.Category))
		sentry.CaptureException(fmt.Errorf("[%s/%s] %w", ee.Component, ee.Category, ee.Err))
	})
}

func levelFor(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryAdapter, CategoryState, CategoryResource:
		return sentry.LevelError
	case CategoryValidation, CategoryConfiguration:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
