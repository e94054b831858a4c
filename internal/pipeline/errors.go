package pipeline

import "errors"

var (
	ErrPipeline = errors.New("publish pipeline failed")
	ErrCheckout = errors.New("checkout failed")
	ErrLock     = errors.New("failed to acquire publish lock")
	ErrLocked   = errors.New("another publish is already running for this branch")
)
