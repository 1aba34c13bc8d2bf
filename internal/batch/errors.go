package batch

import (
	"errors"
	"fmt"
)

// ErrMissingRequiredField aborts a run when a record lacks the configured
// required field and the policy is abort.
var ErrMissingRequiredField = errors.New("record is missing required field")

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Error kinds reported through ErrorClassifier.
const (
	KindConfiguration = "configuration"
	KindInput         = "input"
)

// RunError ties a failure to the record position it happened at.
type RunError struct {
	Kind     string
	Position int
	Err      error
}

func (e *RunError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("record %d: %v", e.Position, e.Err)
	}
	return e.Err.Error()
}

func (e *RunError) Unwrap() error { return e.Err }

// ErrorKind implements ErrorClassifier.
func (e *RunError) ErrorKind() string { return e.Kind }

// IsConfigurationError reports whether err was classified as a setup
// problem rather than a data or I/O failure.
func IsConfigurationError(err error) bool {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind() == KindConfiguration
	}
	return false
}

func configurationError(position int, err error) error {
	return &RunError{Kind: KindConfiguration, Position: position, Err: err}
}

func inputError(position int, err error) error {
	return &RunError{Kind: KindInput, Position: position, Err: err}
}
