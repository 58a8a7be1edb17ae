package denoise

import (
	"errors"
	"fmt"
)

var (
	// ErrTriangulation is returned when a pass can not triangulate its
	// point cloud. It aborts the run.
	ErrTriangulation = errors.New("triangulation failed")

	ErrEmptyNeighborhood = errors.New("empty neighborhood")
	ErrUndefinedNormal   = errors.New("undefined normal")
	ErrZeroNormalizer    = errors.New("zero normalizer")
)

// VertexError is a failure of a single vertex.
type VertexError struct {
	Index int
	Err   error
}

func (e *VertexError) Error() string {
	return fmt.Sprintf("vertex %d: %v", e.Index, e.Err)
}

func (e *VertexError) Unwrap() error {
	return e.Err
}
