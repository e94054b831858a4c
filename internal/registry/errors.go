package registry

import "errors"

var (
	ErrRegistry = errors.New("registry operation failed")
	ErrAuth     = errors.New("registry authentication failed")
	ErrPush     = errors.New("image push failed")
)
