// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shaderdef

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ValidationError. Use errors.Is to classify a
// rejected document.
var (
	ErrSyntax           = errors.New("document is not valid JSON")
	ErrWrongType        = errors.New("field has the wrong type")
	ErrMissingField     = errors.New("required field does not exist")
	ErrInvalidName      = errors.New("definition name is not namespace:id")
	ErrDuplicateUniform = errors.New("uniform declared twice")
	ErrUndefinedUniform = errors.New("override references undefined uniform")
	ErrCountMismatch    = errors.New("override value count mismatch")
)

// ValidationError reports why a definition document was rejected. Path locates
// the offending element, e.g. "passes[1] -> uniformOverrides[0]".
type ValidationError struct {
	Document string
	Path     string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %s", e.Document, e.Reason)
	}
	return fmt.Sprintf("%s -> %s %s", e.Document, e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
