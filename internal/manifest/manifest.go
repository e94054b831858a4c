package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Describes how to assemble the container image.
//
// The manifest is the declarative equivalent of a small Dockerfile: a pinned
// base image, build commands that install dependencies, files copied from the
// build context, and the entry command. It is deliberately linear; there are
// no stages or conditionals.
type Manifest struct {
	Image      string            `yaml:"image" validate:"required"`               // Tag the image is pushed under.
	Base       string            `yaml:"base" validate:"required"`                // Base image, pinned to a specific version.
	Workdir    string            `yaml:"workdir,omitempty"`                       // Working directory inside the image.
	Env        map[string]string `yaml:"env,omitempty"`                           // Environment baked into the image.
	Run        []string          `yaml:"run,omitempty"`                           // Build commands, typically dependency installs.
	Copy       []CopySpec        `yaml:"copy,omitempty" validate:"dive"`          // Files copied from the build context.
	Entrypoint []string          `yaml:"entrypoint" validate:"required,min=1"`    // Default command of the image.
}

// A single file or directory copied from the build context into the image.
type CopySpec struct {
	Src  string `yaml:"src" validate:"required"`
	Dest string `yaml:"dest" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Loads and validates a manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return Parse(data)
}

// Parses and validates a manifest from YAML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Checks the manifest for missing required fields.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return nil
}
