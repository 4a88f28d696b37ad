package curve

import "fmt"

// ValidationError reports malformed or insufficient input data. It is not
// recoverable locally; callers must fix the input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "curve: invalid input: " + e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// DomainError reports a query at a maturity a model cannot answer, e.g. a
// non-positive maturity. Extrapolation beyond the fitted knots is not a
// DomainError; it is flagged via Curve.IsExtrapolated instead.
type DomainError struct {
	Maturity float64
	Reason   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("curve: maturity %g out of domain: %s", e.Maturity, e.Reason)
}
