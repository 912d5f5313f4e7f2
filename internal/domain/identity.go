package domain

import "errors"

// Authentication errors. They never reach the ledger: an operation only ever sees an
// already verified owner id.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
