package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request field is missing or malformed
	ErrInvalidInput = errors.New("invalid request")

	// ErrNotEligible is returned when no active, in-window, under-limit coupon matches the code
	ErrNotEligible = errors.New("coupon not found, inactive, or usage limit reached")

	// ErrAlreadyUsed is returned when the user already redeemed the coupon
	ErrAlreadyUsed = errors.New("you have already used this coupon")

	// ErrNotApplicable is returned when the purchase context misses the coupon's category scope
	ErrNotApplicable = errors.New("coupon not applicable to selected categories")

	// ErrBelowMinimum is returned when the order total is below the coupon minimum
	ErrBelowMinimum = errors.New("order total below coupon minimum")

	// ErrCouponExists is returned when attempting to create a coupon whose code is taken
	ErrCouponExists = errors.New("coupon code already exists")

	// ErrCouponNotFound is returned when a coupon cannot be found by id
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrNoChanges is returned when an edit carries no fields
	ErrNoChanges = errors.New("no valid fields provided for update")
)

// ErrorKind classifies service errors for transport mapping.
type ErrorKind int

const (
	KindStorageFailure ErrorKind = iota
	KindInvalidInput
	KindNotEligible
	KindAlreadyUsed
	KindNotApplicable
	KindBelowMinimum
	KindConflict
	KindNotFound
)

var kindNames = map[ErrorKind]string{
	KindStorageFailure: "storage_failure",
	KindInvalidInput:   "invalid_input",
	KindNotEligible:    "not_eligible",
	KindAlreadyUsed:    "already_used",
	KindNotApplicable:  "not_applicable",
	KindBelowMinimum:   "below_minimum",
	KindConflict:       "conflict",
	KindNotFound:       "not_found",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// KindOf maps err to its kind. Unrecognised errors are storage failures.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoChanges):
		return KindInvalidInput
	case errors.Is(err, ErrNotEligible):
		return KindNotEligible
	case errors.Is(err, ErrAlreadyUsed):
		return KindAlreadyUsed
	case errors.Is(err, ErrNotApplicable):
		return KindNotApplicable
	case errors.Is(err, ErrBelowMinimum):
		return KindBelowMinimum
	case errors.Is(err, ErrCouponExists):
		return KindConflict
	case errors.Is(err, ErrCouponNotFound):
		return KindNotFound
	default:
		return KindStorageFailure
	}
}

// detailedError carries a caller-facing message while unwrapping to its sentinel.
type detailedError struct {
	sentinel error
	msg      string
}

func (e *detailedError) Error() string { return e.msg }

func (e *detailedError) Unwrap() error { return e.sentinel }

// InvalidInput returns an ErrInvalidInput with the message "invalid request: <detail>".
func InvalidInput(format string, args ...any) error {
	return &detailedError{sentinel: ErrInvalidInput, msg: "invalid request: " + fmt.Sprintf(format, args...)}
}

func withMessage(sentinel error, format string, args ...any) error {
	return &detailedError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}
