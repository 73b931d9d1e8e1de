package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUsernameTaken     = errors.New("username already used")
	ErrEmailAlreadyUsed  = errors.New("email already used")
)
