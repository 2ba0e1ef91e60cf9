package auth

import "errors"

// ErrInvalidCredentials is returned when email and password do not match a user.
// It deliberately does not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when signing up with an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrNoSession is returned when a token does not name a live session.
var ErrNoSession = errors.New("no active session")

// ErrInvalidToken is returned when an access token fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// ErrWeakPassword is returned when a password is shorter than MinPasswordLength.
var ErrWeakPassword = errors.New("password too short")

// ErrInvalidRecovery is returned when a recovery token is unknown or already used.
var ErrInvalidRecovery = errors.New("invalid or expired recovery token")
