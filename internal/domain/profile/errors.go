package profile

import "errors"

// Sentinel error kinds for profile derivation. All of them are caused by
// client input.
var (
	ErrInvalidBirthDate  = errors.New("invalid birth_date; must be YYYY-MM-DD")
	ErrBirthDateInFuture = errors.New("birth_date is in the future")
	ErrAgeOutOfRange     = errors.New("age out of range")
)
