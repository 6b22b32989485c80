package domain

import "errors"

// ErrUserAlreadyExists is returned when trying to create a user that already exists.
var ErrUserAlreadyExists = errors.New("user with this username already exists")

// ErrInvalidCredentials is returned when a username/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when an identity token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
