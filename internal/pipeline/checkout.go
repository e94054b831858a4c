package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Materializes the build context.
//
// With a source URL, the branch named by the event is shallow-cloned into a
// temporary directory that is removed when the run finishes. Without one,
// the local working directory is used as-is.
func (p *Publisher) checkout(ctx context.Context) error {
	if p.opts.Source == "" {
		info, err := os.Stat(p.opts.Workdir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCheckout, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrCheckout, p.opts.Workdir)
		}

		p.contextDir = p.opts.Workdir
		return nil
	}

	tmp, err := os.MkdirTemp("", "costwatch-build-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckout, err)
	}
	p.cleanup = func() { os.RemoveAll(tmp) }

	slog.Info("cloning source", "url", p.opts.Source, "branch", p.opts.Event.Branch())

	_, err = git.PlainCloneContext(ctx, tmp, false, &git.CloneOptions{
		URL:           p.opts.Source,
		ReferenceName: plumbing.NewBranchReferenceName(p.opts.Event.Branch()),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckout, err)
	}

	p.contextDir = tmp
	return nil
}
