package domain

import (
	"errors"
	"fmt"
)

// Reasons reported to callers. Batch details carry the text, single-booking
// endpoints carry it as the error message.
var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDriverNotFound    = errors.New("driver not found")
	ErrDriverUnavailable = errors.New("driver unavailable")
	ErrStateNotEligible  = errors.New("state not eligible for this operation")
	ErrTimeConflict      = errors.New("time conflict")
	ErrSameDriver        = errors.New("same driver")
	ErrNoCategoryMatch   = errors.New("no category match")
	ErrAllConflict       = errors.New("all candidates conflict")
	ErrConcurrentUpdate  = errors.New("booking was modified concurrently")
	ErrLockTimeout       = errors.New("driver schedule is locked, try again")
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// EligibilityError is a precondition failure of an assignment: the input is
// well formed but the booking or driver cannot take part in it right now.
type EligibilityError struct {
	Err error
}

func (e EligibilityError) Error() string {
	if e.Err == nil {
		return "not eligible"
	}
	return e.Err.Error()
}

func (e EligibilityError) Unwrap() error { return e.Err }

// ConfigError means runtime configuration could not be read.
type ConfigError struct {
	Msg string
	Err error
}

func (e ConfigError) Error() string {
	if e.Msg != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "configuration unavailable"
}

func (e ConfigError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsEligibility(err error) bool {
	var target EligibilityError
	return errors.As(err, &target)
}

func IsConfig(err error) bool {
	var target ConfigError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// Code returns the machine readable code used in API error payloads.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBookingNotFound):
		return "booking_not_found"
	case errors.Is(err, ErrDriverNotFound):
		return "driver_not_found"
	case errors.Is(err, ErrDriverUnavailable):
		return "driver_unavailable"
	case errors.Is(err, ErrStateNotEligible):
		return "state_not_eligible"
	case errors.Is(err, ErrTimeConflict):
		return "time_conflict"
	case errors.Is(err, ErrSameDriver):
		return "same_driver"
	case IsValidation(err):
		return "validation_error"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err), IsEligibility(err):
		return "conflict"
	case IsConfig(err):
		return "config_unavailable"
	default:
		return "internal_error"
	}
}
