package session

import "errors"

var ErrNotFound = errors.New("error not found")
