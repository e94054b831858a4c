package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/costwatch/costwatch/internal/builder"
	"github.com/costwatch/costwatch/internal/cache"
	"github.com/costwatch/costwatch/internal/event"
	"github.com/costwatch/costwatch/internal/manifest"
)

// Builds images from a manifest and fingerprints build inputs.
type Builder interface {
	Build(ctx context.Context, opts builder.BuildOptions) error
	Fingerprint(dir string, m *manifest.Manifest) (digest.Digest, error)
}

// Authenticates, pushes, and resolves remote digests.
type Registry interface {
	Login(ctx context.Context) error
	Push(ctx context.Context, tag string) (digest.Digest, error)
	ResolveDigest(ctx context.Context, tag string) (digest.Digest, error)
}

// Records build results keyed by build-context digest.
type Cache interface {
	Lookup(key digest.Digest) (cache.Entry, bool)
	Store(key digest.Digest, e cache.Entry) error
	Invalidate(key digest.Digest) error
}

// Controls a publish run.
type Options struct {
	Source   string             // Git URL to clone. Empty builds from Workdir.
	Workdir  string             // Local build context when Source is empty.
	Manifest *manifest.Manifest // Build recipe.
	Tag      string             // Tag the image is pushed under. Always overwritten.
	Event    event.Event        // Trigger, used for image labels.
}

// Returned after a successful publish run.
type Result struct {
	Digest digest.Digest // Digest of the image the tag now points at.
	Cached bool          // Whether the build was skipped via the cache.
}

// Runs the five publish steps in order: checkout, registry login, build
// preparation, build-and-push, and digest emission.
type Publisher struct {
	builder  Builder
	registry Registry
	cache    Cache
	opts     Options

	// Run state, populated as steps execute.
	contextDir string
	cleanup    func()
	key        digest.Digest
	result     Result
}

// Creates a publisher.
func NewPublisher(b Builder, r Registry, c Cache, opts Options) *Publisher {
	return &Publisher{
		builder:  b,
		registry: r,
		cache:    c,
		opts:     opts,
	}
}

// Executes the publish pipeline.
//
// Either the full sequence completes or the run fails; the first failing
// step aborts the rest and the error propagates to the caller unchanged
// beyond step identification.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	defer func() {
		if p.cleanup != nil {
			p.cleanup()
		}
	}()

	pl := New(
		Step{Name: "checkout", Run: p.checkout},
		Step{Name: "login", Run: p.login},
		Step{Name: "prepare", Run: p.prepare},
		Step{Name: "build and push", Run: p.buildAndPush},
		Step{Name: "emit digest", Run: p.emitDigest},
	)

	if err := pl.Run(ctx); err != nil {
		return nil, err
	}

	return &p.result, nil
}

// Authenticates to the registry.
func (p *Publisher) login(ctx context.Context) error {
	return p.registry.Login(ctx)
}

// Fingerprints the build inputs for the cache lookup.
func (p *Publisher) prepare(ctx context.Context) error {
	key, err := p.builder.Fingerprint(p.contextDir, p.opts.Manifest)
	if err != nil {
		return err
	}

	p.key = key
	slog.Debug("build context fingerprinted", "digest", key)
	return nil
}

// Builds and pushes the image, consulting the build cache first.
//
// A cache hit is only honored when the registry still serves the recorded
// digest for the tag; otherwise the entry is invalidated and the image is
// rebuilt. After a successful push the cache is updated.
func (p *Publisher) buildAndPush(ctx context.Context) error {
	if entry, ok := p.cache.Lookup(p.key); ok && entry.Tag == p.opts.Tag {
		remote, err := p.registry.ResolveDigest(ctx, p.opts.Tag)
		if err == nil && remote == entry.Image {
			slog.Info("build cache hit, skipping build",
				"tag", p.opts.Tag,
				"digest", entry.Image,
			)
			p.result = Result{Digest: entry.Image, Cached: true}
			return nil
		}

		slog.Info("build cache entry is stale, rebuilding", "tag", p.opts.Tag)
		if err := p.cache.Invalidate(p.key); err != nil {
			slog.Warn("failed to invalidate cache entry", "error", err)
		}
	}

	if err := p.builder.Build(ctx, builder.BuildOptions{
		ContextDir: p.contextDir,
		Manifest:   p.opts.Manifest,
		Tag:        p.opts.Tag,
		Labels:     p.labels(),
	}); err != nil {
		return err
	}

	pushed, err := p.registry.Push(ctx, p.opts.Tag)
	if err != nil {
		return err
	}

	if err := p.cache.Store(p.key, cache.Entry{
		Image:     pushed,
		Tag:       p.opts.Tag,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		// The cache is an optimization; a failed write costs a rebuild later.
		slog.Warn("failed to record build cache entry", "error", err)
	}

	p.result = Result{Digest: pushed}
	return nil
}

// Logs the final digest as the build record.
func (p *Publisher) emitDigest(ctx context.Context) error {
	slog.Info("image published",
		"tag", p.opts.Tag,
		"digest", p.result.Digest,
		"cached", p.result.Cached,
	)
	return nil
}

// Returns the OCI annotations applied to the built image.
func (p *Publisher) labels() map[string]string {
	labels := map[string]string{
		ocispec.AnnotationCreated: time.Now().UTC().Format(time.RFC3339),
	}
	if p.opts.Event.Commit != "" {
		labels[ocispec.AnnotationRevision] = p.opts.Event.Commit
	}
	if p.opts.Source != "" {
		labels[ocispec.AnnotationSource] = p.opts.Source
	}
	return labels
}
