package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfSpace indicates the area's subarea table is full or the segment
	// has no room left for another subarea. Nothing was modified.
	ErrOutOfSpace = errors.New("alloc: out of space")

	// ErrBadRequest is the parent of every caller error below.
	ErrBadRequest = errors.New("alloc: bad request")

	// ErrBadSize indicates a zero or negative object size, or a subarea
	// request below the minimal subarea size.
	ErrBadSize = fmt.Errorf("%w: bad size", ErrBadRequest)

	// ErrDoubleFree indicates a free of an object whose tag is already free.
	ErrDoubleFree = fmt.Errorf("%w: object already free", ErrBadRequest)

	// ErrInvalidOffset indicates an offset outside every subarea of the area.
	ErrInvalidOffset = fmt.Errorf("%w: invalid offset", ErrBadRequest)

	// ErrSpecialObject indicates a free of the designated victim or a marker.
	ErrSpecialObject = fmt.Errorf("%w: special object", ErrBadRequest)

	// ErrWrongArea indicates a fixed-length call on a variable-length area,
	// the other way round, or an unknown area (then also heap.ErrBadArea).
	ErrWrongArea = fmt.Errorf("%w: wrong area kind", ErrBadRequest)
)
