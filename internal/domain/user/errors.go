package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrInvalidRole           = errors.New("invalid role")
)
