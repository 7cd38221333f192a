package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when training data has no rows or no features.
	ErrEmpty = errors.New("model: empty input")

	// ErrDimensionMismatch is returned when a row's width differs from the
	// width the model expects.
	ErrDimensionMismatch = errors.New("model: dimension mismatch")

	// ErrLengthMismatch is returned when X and y disagree on the row count.
	ErrLengthMismatch = errors.New("model: length mismatch")

	// ErrInvalidOption is returned for hyperparameters outside their domain.
	ErrInvalidOption = errors.New("model: invalid option")

	// ErrNotBinary is returned when logistic regression sees labels other than 0 and 1.
	ErrNotBinary = errors.New("model: labels must be 0 or 1")

	// ErrInvalidModel is returned when a model value does not fit the
	// requested operation, or is nil or structurally broken.
	ErrInvalidModel = errors.New("model: invalid model")

	// ErrInvalidModelText is returned when serialized model bytes cannot be decoded.
	ErrInvalidModelText = errors.New("model: invalid model text")
)

// ShapeError reports a row whose width does not match.
type ShapeError struct {
	Row, Got, Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("model: row %d has %d features, want %d", e.Row, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error { return ErrDimensionMismatch }

// LengthError reports mismatched X and y lengths.
type LengthError struct {
	Rows, Targets int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("model: %d rows but %d targets", e.Rows, e.Targets)
}

func (e *LengthError) Unwrap() error { return ErrLengthMismatch }
