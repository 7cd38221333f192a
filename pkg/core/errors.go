package core

import "errors"

var (
	// ErrDimensionMismatch indicates incompatible operand shapes.
	ErrDimensionMismatch = errors.New("core: dimension mismatch")

	// ErrRagged indicates rows of unequal width in a nested slice.
	ErrRagged = errors.New("core: rows have unequal width")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("core: matrix is not square")

	// ErrSingular is returned by InverseStrict when a pivot vanishes.
	ErrSingular = errors.New("core: singular matrix")

	// ErrNotVector is returned by Dot for operands that are not vectors.
	ErrNotVector = errors.New("core: operand is not a vector")
)
