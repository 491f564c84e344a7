// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for registration, login and token authentication.
// Upper layers match them with errors.Is and map them to client-facing responses.
var (
	// ErrDuplicateIdentity indicates that a user with the given email already exists.
	ErrDuplicateIdentity = errors.New("email already registered")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates that the email or password is incorrect.
	// It deliberately does not say which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMissingCredential indicates that a protected operation was called without a token.
	ErrMissingCredential = errors.New("token missing")

	// ErrExpiredToken indicates that the token signature is valid but its expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrMalformedToken indicates that the token could not be parsed or its signature is invalid.
	ErrMalformedToken = errors.New("invalid token")

	// ErrUnknownSubject indicates that the token is valid but its subject no longer maps to a user.
	ErrUnknownSubject = errors.New("invalid authentication credentials")
)
