package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateMonth matches any *DuplicateMonthError.
	ErrDuplicateMonth = errors.New("month already recorded")
	// ErrInvalidInput matches any *InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMonthNotRecorded is returned when a report is requested for a month
	// that has no snapshot.
	ErrMonthNotRecorded = errors.New("month not recorded")
)

// DuplicateMonthError is returned when a snapshot for Month already exists.
type DuplicateMonthError struct {
	Month int
}

func (e *DuplicateMonthError) Error() string {
	return fmt.Sprintf("month %d already recorded", e.Month)
}

// Is reports whether target is ErrDuplicateMonth.
func (e *DuplicateMonthError) Is(target error) bool {
	return target == ErrDuplicateMonth
}

// InvalidInputError is a local validation failure. It is never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
