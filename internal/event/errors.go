package event

import "errors"

var ErrNoEvent = errors.New("no triggering event could be determined")
