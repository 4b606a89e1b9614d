package domain

import "errors"

var (
	// ErrUsernameTaken is returned when registering a normalized username that already exists
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when no username/password pair matches
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidRegistration is returned when the username or password is blank
	ErrInvalidRegistration = errors.New("username and password are required")

	// ErrNotLoggedIn is returned by operations that need an active session
	ErrNotLoggedIn = errors.New("no active session")

	// ErrUserNotFound is returned when a profile update targets an unknown id
	ErrUserNotFound = errors.New("user not found")

	// ErrAssistantUnavailable wraps every failed text-generation exchange
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	// ErrPersistenceUnavailable wraps snapshot read/write failures
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
