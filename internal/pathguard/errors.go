package pathguard

import (
	"errors"
	"fmt"
)

// Sentinel errors for rejected destinations. Every rejection is returned as a
// *SegmentError wrapping one of these.
var (
	ErrEmptyDestination = errors.New("output directory is required")
	ErrPathTraversal    = errors.New("parent directory traversal")
	ErrInvalidCharacter = errors.New("invalid characters")
	ErrOutsideRoot      = errors.New("outside of project root")
)

// SegmentError records which part of a destination was rejected and the
// input exactly as the user supplied it.
type SegmentError struct {
	Err       error
	Segment   string
	Attempted string
}

func (e *SegmentError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("output directory rejected: %v (attempted path: %q)", e.Err, e.Attempted)
	}

	return fmt.Sprintf("output directory rejected: %v in segment '%s' (attempted path: %s)", e.Err, e.Segment, e.Attempted)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

func reject(err error, segment, attempted string) *SegmentError {
	return &SegmentError{
		Err:       err,
		Segment:   segment,
		Attempted: attempted,
	}
}
