package costs

import "errors"

var (
	ErrExplorer  = errors.New("cost explorer query failed")
	ErrNoResults = errors.New("cost explorer returned no usable results")
)
