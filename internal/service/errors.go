package service

import "errors"

var (
	ErrNotFound           = errors.New("error not found")
	ErrNotAuthorized      = errors.New("error not authorized")
	ErrItemLimitReached   = errors.New("error portfolio item limit reached")
	ErrDeadlinePassed     = errors.New("error competition entry deadline has passed")
	ErrDuplicateSymbol    = errors.New("error symbol already exists in portfolio")
	ErrInvalidQuantity    = errors.New("error quantity must be positive")
	ErrAlreadyExists      = errors.New("error already exists")
	ErrInvalidCredentials = errors.New("error invalid credentials")
)
