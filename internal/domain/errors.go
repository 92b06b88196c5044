package domain

import "fmt"

// AnalysisErrorKind classifies analysis failures for diagnostics.
type AnalysisErrorKind string

const (
	KindTransport         AnalysisErrorKind = "transport"
	KindMalformedResponse AnalysisErrorKind = "malformed_response"
	KindSchemaViolation   AnalysisErrorKind = "schema_violation"
)

// AnalysisError is returned by every analyzer on failure.
type AnalysisError struct {
	Kind AnalysisErrorKind
	Err  error
}

// NewAnalysisError wraps err under kind.
func NewAnalysisError(kind AnalysisErrorKind, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Err: err}
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("analysis failed (%s)", e.Kind)
	}
	return fmt.Sprintf("analysis failed (%s): %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Retryable is always true; retry policy belongs to the caller.
func (e *AnalysisError) Retryable() bool {
	return true
}
