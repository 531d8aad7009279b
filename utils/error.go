package utils

import "errors"

var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrorValidation        = errors.New("validation failed")
	ErrorInvalidStatus     = errors.New("invalid status")
	ErrorInvalidTransition = errors.New("invalid status transition")
	ErrorAlreadyVoted      = errors.New("already voted")
	ErrorForbidden         = errors.New("forbidden")
	ErrorDuplicateUsername = errors.New("username already taken")
	ErrorUnauthorized      = errors.New("invalid username or password")
)
