package domain

import "errors"

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("email or password is wrong")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("verification has already been passed")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrContactNotFound    = errors.New("contact not found")
	ErrDuplicateContact   = errors.New("contact with this email already exists")
	ErrNoAvatarFile       = errors.New("no avatar file provided")
)
