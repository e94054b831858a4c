package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"

	"github.com/costwatch/costwatch/internal/manifest"
)

// Name of the rendered Dockerfile entry injected into the build context.
//
// A non-default name avoids colliding with a Dockerfile that may already
// exist in the context directory.
const dockerfileName = "costwatch.dockerfile"

// Narrow view of the Docker API used by the builder.
type API interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	Close() error
}

// Controls a single image build.
type BuildOptions struct {
	ContextDir string             // Directory sent to the daemon as the build context.
	Manifest   *manifest.Manifest // Recipe rendered into the Dockerfile.
	Tag        string             // Tag applied to the built image.
	Labels     map[string]string  // Labels applied to the built image.
}

// Drives image builds against a Docker daemon.
type Builder struct {
	api API
}

// Creates a builder connected to the daemon configured in the environment.
func New() (*Builder, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}
	return &Builder{api: cli}, nil
}

// Creates a builder backed by the given API. Used by tests.
func NewWithAPI(api API) *Builder {
	return &Builder{api: api}
}

// Closes the daemon connection.
func (b *Builder) Close() error {
	return b.api.Close()
}

// Builds an image from the manifest and build context.
//
// The manifest is rendered to a Dockerfile and injected into the context
// tar stream alongside the context directory's files. Layer caching is the
// daemon's: unchanged instructions reuse prior layers. Any daemon-reported
// error aborts the build.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	dockerfile := opts.Manifest.Dockerfile()

	slog.Info("building image",
		"tag", opts.Tag,
		"base", opts.Manifest.Base,
		"context", opts.ContextDir,
	)

	buildCtx := tarContext(opts.ContextDir, dockerfile)
	defer buildCtx.Close()

	resp, err := b.api.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{opts.Tag},
		Dockerfile: dockerfileName,
		Remove:     true,
		Labels:     opts.Labels,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}
	defer resp.Body.Close()

	return drainBuildOutput(resp.Body)
}

// A single JSON message in the daemon's build output stream.
type buildMessage struct {
	Stream      string `json:"stream"`
	Error       string `json:"error"`
	ErrorDetail struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
}

// Reads the build output stream to completion.
//
// Build failures are reported in-band as error messages rather than through
// the response status, so the stream must be read fully before the result
// is known. Progress lines are logged at debug level.
func drainBuildOutput(r io.Reader) error {
	dec := json.NewDecoder(r)

	for {
		var msg buildMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrBuild, err)
		}

		if msg.Error != "" {
			detail := msg.ErrorDetail.Message
			if detail == "" {
				detail = msg.Error
			}
			return fmt.Errorf("%w: %s", ErrBuild, detail)
		}

		if line := strings.TrimRight(msg.Stream, "\n"); line != "" {
			slog.Debug("build", "output", line)
		}
	}
}
