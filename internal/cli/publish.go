package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/costwatch/costwatch/internal/builder"
	"github.com/costwatch/costwatch/internal/cache"
	"github.com/costwatch/costwatch/internal/event"
	"github.com/costwatch/costwatch/internal/manifest"
	"github.com/costwatch/costwatch/internal/paths"
	"github.com/costwatch/costwatch/internal/pipeline"
	"github.com/costwatch/costwatch/internal/registry"
)

// Represents the 'costwatch publish' command.
type PublishCmd struct {
	Manifest string `short:"m" help:"Path to the build manifest." default:"build.yaml" type:"path"`
	Context  string `short:"c" help:"Build context directory." default:"." type:"path"`
	Source   string `help:"Git URL to clone instead of building from the local context."`
	Tag      string `short:"t" help:"Image tag to push. Overrides the manifest image." env:"IMAGE_TAG"`
	Branch   string `help:"Branch that qualifies for publishing." default:"main"`
	Username string `help:"Registry username." env:"REGISTRY_USERNAME"`
	Token    string `help:"Registry access token." env:"REGISTRY_TOKEN"`
	Server   string `help:"Registry server address." default:"https://index.docker.io/v1/" env:"REGISTRY_SERVER"`
}

// Executes the publish command.
//
// Resolves the triggering event, applies the branch guard, and runs the
// publish pipeline under a per-branch lock. Non-qualifying events skip the
// pipeline entirely and exit zero; any pipeline failure is returned as-is
// and surfaces as a non-zero exit.
func (c *PublishCmd) Run(ctx context.Context) error {
	ev, err := event.Resolve(c.Context)
	if err != nil {
		return err
	}

	if !ev.Qualifies(c.Branch) {
		slog.Info("publish skipped",
			"event", ev.Type,
			"branch", ev.Branch(),
			"want", c.Branch,
		)
		return nil
	}

	m, err := manifest.Load(c.Manifest)
	if err != nil {
		return err
	}

	tag := c.Tag
	if tag == "" {
		tag = m.Image
	}

	unlock, err := pipeline.AcquireLock(paths.LockFile(ev.Branch()))
	if err != nil {
		return err
	}
	defer unlock()

	b, err := builder.New()
	if err != nil {
		return err
	}
	defer b.Close()

	reg, err := registry.New(registry.Credentials{
		Username: c.Username,
		Token:    c.Token,
		Server:   c.Server,
	})
	if err != nil {
		return err
	}

	bc, err := cache.Open(paths.BuildCacheFile())
	if err != nil {
		return err
	}

	pub := pipeline.NewPublisher(b, reg, bc, pipeline.Options{
		Source:   c.Source,
		Workdir:  c.Context,
		Manifest: m,
		Tag:      tag,
		Event:    ev,
	})

	result, err := pub.Run(ctx)
	if err != nil {
		return err
	}

	// The digest is the build record; print it to stdout for CI consumers.
	fmt.Println(result.Digest)
	return nil
}
