package builder

import "errors"

var (
	ErrDaemon  = errors.New("failed to connect to docker daemon")
	ErrBuild   = errors.New("image build failed")
	ErrContext = errors.New("failed to read build context")
)
