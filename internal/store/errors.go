package store

import "errors"

var (
	// ErrUsernameConflict is returned when a username already exists
	ErrUsernameConflict = errors.New("username already exists")

	// ErrEmailConflict is returned when an email address already exists
	ErrEmailConflict = errors.New("email already exists")

	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrCodeConsumed is returned by ConsumeAuthorizationCode when the code
	// row was already deleted by a concurrent exchange (0 rows affected).
	ErrCodeConsumed = errors.New("authorization code already consumed")
)
