// Package csoerr defines the sentinel error kinds shared across the
// classifier pipeline, mirroring the shape of the teacher repository's
// internalerr package.
package csoerr

import "errors"

// Sentinel errors for common cases.
var (
	// ErrValidation covers unrecognized option values, non-boolean flags,
	// workers < 1, and unknown input shapes. Surfaces before any work starts.
	ErrValidation = errors.New("validation error")

	// ErrAssetMissing covers an ontology/model file that is absent and
	// cannot be downloaded (asset download is out of core scope).
	ErrAssetMissing = errors.New("asset missing")

	// ErrCorpusParse covers a malformed ontology triple line. Callers
	// should log and continue, never abort the load.
	ErrCorpusParse = errors.New("corpus parse error")
)

// DocError records a per-document failure in a batch run. One failing
// document must never abort sibling documents or workers.
type DocError struct {
	ID  string
	Err error
}

func (e *DocError) Error() string {
	return e.ID + ": " + e.Err.Error()
}

func (e *DocError) Unwrap() error { return e.Err }
