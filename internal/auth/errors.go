package auth

import "errors"

var (
	// ErrValidation covers missing or malformed request input.
	ErrValidation = errors.New("invalid input")
	// ErrUserNotFound is returned when no identity matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned when the credential does not verify.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrInvalidOTP is returned when a presented code does not match.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrNoOutstandingCode is returned when no code is outstanding for the
	// email, including codes already consumed or garbage-collected.
	ErrNoOutstandingCode = errors.New("no outstanding otp")
	// ErrOTPExpired is returned when a matching code is past its deadline.
	ErrOTPExpired = errors.New("otp expired")
	// ErrDuplicateEmail is returned when signup hits the unique email index.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidResetGrant is returned when a reset capability token is
	// absent, forged, already consumed, or minted for another email.
	ErrInvalidResetGrant = errors.New("invalid reset grant")
	// ErrDelivery is a notifier failure; prior persistence is kept.
	ErrDelivery = errors.New("delivery failed")
	// ErrStorage is a persistence failure; fatal to the request.
	ErrStorage = errors.New("storage failure")
)
