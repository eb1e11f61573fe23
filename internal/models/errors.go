package models

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds surfaced to callers. Services wrap them with context using %w.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// BookingConflictError lists the confirmed stays blocking a requested range.
type BookingConflictError struct {
	Ranges []DateRange
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("property is already booked for %d overlapping date range(s)", len(e.Ranges))
}

func (e *BookingConflictError) Is(target error) bool {
	return target == ErrConflict
}
