package manifest

import "errors"

var (
	ErrManifest        = errors.New("failed to read manifest")
	ErrInvalidManifest = errors.New("invalid manifest")
)
