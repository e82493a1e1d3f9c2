package auth

import "errors"

// Token validation errors.
var (
	// ErrInvalidToken indicates the token is malformed, not yet valid or
	// signed with another key.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidRefreshToken indicates the refresh token cannot be used.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token has expired")

	// ErrWrongTokenType indicates a refresh token was presented where an
	// access token is required, or the other way round.
	ErrWrongTokenType = errors.New("wrong token type")
)
