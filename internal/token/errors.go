package token

import "errors"

var (
	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token is malformed or its signature does
	// not verify. Externally this collapses with ErrExpiredToken and
	// ErrTokenRevoked into a single invalid_token response.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenRevoked indicates the token appears in the revocation ledger
	ErrTokenRevoked = errors.New("token revoked")
)

// IsRejection reports whether err is a verdict on the presented token itself
// (malformed, expired, or revoked) as opposed to a backend failure while
// checking it. Rejections map to 401; everything else is retryable.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrTokenRevoked)
}
