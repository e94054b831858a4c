package cli

import (
	"context"
	"fmt"

	"github.com/costwatch/costwatch/internal/buildinfo"
)

// Represents the 'costwatch version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(buildinfo.String())
	return nil
}
