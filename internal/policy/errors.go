package policy

import (
	"errors"
	"fmt"
)

// ErrVersionRegression marks classifications where the current version
// is behind the reference. It is wrapped by the Violation built from
// such a classification.
var ErrVersionRegression = errors.New("version regression")

// Violation is a fatal policy error. It names the offending package and
// manifest so the operator knows which branch history to amend.
type Violation struct {
	Package  string
	Manifest string
	Reason   string

	// Err carries an underlying sentinel (e.g. ErrVersionRegression)
	// when one applies.
	Err error
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("policy violation in package %q (%s): %s", v.Package, v.Manifest, v.Reason)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (v *Violation) Unwrap() error {
	return v.Err
}
