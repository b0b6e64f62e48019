package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSchema            = errors.New("schema error")
	ErrInvalidAssignment = errors.New("invalid assignment")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDegenerateRate    = errors.New("degenerate rate")
	ErrDivisionByZero    = errors.New("division by zero")
)

// SchemaError reports input that does not satisfy the record contract:
// a missing column, an unknown assignment label or a malformed outcome.
type SchemaError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "schema error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s, column %q", msg, e.Column)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is makes every SchemaError match ErrSchema in addition to its cause.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// InsufficientDataError means a group has no members.
type InsufficientDataError struct {
	Group Assignment
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s group has no records", e.Group)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// DegenerateRateError means a statistic has no variance to work with, e.g. the
// pooled rate is exactly 0 or 1 and the z statistic would be 0/0.
type DegenerateRateError struct {
	Statistic string
	Rate      float64
}

func (e *DegenerateRateError) Error() string {
	return fmt.Sprintf("degenerate rate %g: %s is undefined", e.Rate, e.Statistic)
}

func (e *DegenerateRateError) Unwrap() error {
	return ErrDegenerateRate
}

// DivisionByZeroError means a ratio's denominator is zero.
type DivisionByZeroError struct {
	Quantity string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero: %s is undefined", e.Quantity)
}

func (e *DivisionByZeroError) Unwrap() error {
	return ErrDivisionByZero
}
