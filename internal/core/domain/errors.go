package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store failure")
)

var (
	ErrInvalidDate      = fmt.Errorf("%w: invalid date (must be YYYY-MM-DD)", ErrValidation)
	ErrInvalidRange     = fmt.Errorf("%w: end date cannot be before start date", ErrValidation)
	ErrRangeTooLong     = fmt.Errorf("%w: date range too large (max %d days)", ErrValidation, MaxRangeDays)
	ErrHabitNameEmpty   = fmt.Errorf("%w: habit name cannot be empty", ErrValidation)
	ErrHabitNameTooLong = fmt.Errorf("%w: habit name is too long (max %d chars)", ErrValidation, MaxHabitNameLen)
	ErrInvalidID        = fmt.Errorf("%w: invalid id", ErrValidation)
	ErrEmptyUpdate      = fmt.Errorf("%w: nothing to update", ErrValidation)
)

var (
	ErrWeekNotFound  = fmt.Errorf("week %w", ErrNotFound)
	ErrDayNotFound   = fmt.Errorf("day %w", ErrNotFound)
	ErrHabitNotFound = fmt.Errorf("habit %w", ErrNotFound)
)

// StoreError is an opaque failure coming out of the entity store.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// PartialCreationError reports a Week that exists without its Days.
type PartialCreationError struct {
	Week *Week
	Err  error
}

func (e *PartialCreationError) Error() string {
	return fmt.Sprintf("week %s created but its days were not: %v", e.Week.ID, e.Err)
}

func (e *PartialCreationError) Unwrap() error {
	return e.Err
}
