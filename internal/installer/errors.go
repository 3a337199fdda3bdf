package installer

import (
	"errors"
	"fmt"
)

// ErrCopyFailed is wrapped by every error returned from a copy operation.
var ErrCopyFailed = errors.New("copy failed")

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Err  error
	Op   string
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError creates a PathError whose chain contains both ErrCopyFailed
// and err.
func NewPathError(op, path string, err error) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Err:  fmt.Errorf("%w: %w", ErrCopyFailed, err),
	}
}
