// Package common defines shared sentinel errors used across the client
// layers of geokeeper. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrAccountExists  = errors.New("account already exists")

	// Configuration errors.
	ErrUnknownDriver = errors.New("unknown database driver")
)
