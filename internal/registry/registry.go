package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	imagetypes "github.com/docker/docker/api/types/image"
	registrytypes "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/opencontainers/go-digest"
)

// Registry credentials, injected by the CI environment. Never written to
// disk by costwatch.
type Credentials struct {
	Username string
	Token    string
	Server   string
}

// Narrow view of the Docker API used for registry operations.
type API interface {
	RegistryLogin(ctx context.Context, auth registrytypes.AuthConfig) (registrytypes.AuthenticateOKBody, error)
	ImagePush(ctx context.Context, image string, options imagetypes.PushOptions) (io.ReadCloser, error)
}

// Pushes images and resolves remote digests.
type Client struct {
	api   API
	creds Credentials
}

// Creates a registry client using the daemon configured in the environment.
func New(creds Credentials) (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistry, err)
	}
	return &Client{api: cli, creds: creds}, nil
}

// Creates a registry client backed by the given API. Used by tests.
func NewWithAPI(api API, creds Credentials) *Client {
	return &Client{api: api, creds: creds}
}

// Authenticates against the registry.
//
// A failed login aborts the publish run before any build step; nothing is
// retried.
func (c *Client) Login(ctx context.Context) error {
	if c.creds.Username == "" || c.creds.Token == "" {
		return fmt.Errorf("%w: username and token are required", ErrAuth)
	}

	resp, err := c.api.RegistryLogin(ctx, c.authConfig())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	slog.Info("registry login succeeded", "server", c.creds.Server, "status", resp.Status)
	return nil
}

// Pushes the tag to the registry and returns the pushed manifest digest.
func (c *Client) Push(ctx context.Context, tag string) (digest.Digest, error) {
	auth, err := registrytypes.EncodeAuthConfig(c.authConfig())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPush, err)
	}

	slog.Info("pushing image", "tag", tag)

	body, err := c.api.ImagePush(ctx, tag, imagetypes.PushOptions{
		RegistryAuth: auth,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPush, err)
	}
	defer body.Close()

	return parsePushOutput(body)
}

// Resolves the digest the registry currently serves for a tag.
//
// Uses a HEAD request against the manifest endpoint, so no layers are
// transferred. Anonymous access is used when no credentials are set.
func (c *Client) ResolveDigest(ctx context.Context, tag string) (digest.Digest, error) {
	ref, err := name.ParseReference(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRegistry, err)
	}

	desc, err := remote.Head(ref, remote.WithContext(ctx), remote.WithAuth(c.authenticator()))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRegistry, err)
	}

	return digest.Parse(desc.Digest.String())
}

// Returns the Docker auth configuration for the configured credentials.
func (c *Client) authConfig() registrytypes.AuthConfig {
	return registrytypes.AuthConfig{
		Username:      c.creds.Username,
		Password:      c.creds.Token,
		ServerAddress: c.creds.Server,
	}
}

// Returns the authenticator for direct registry requests.
func (c *Client) authenticator() authn.Authenticator {
	if c.creds.Username == "" {
		return authn.Anonymous
	}
	return &authn.Basic{
		Username: c.creds.Username,
		Password: c.creds.Token,
	}
}

// A single JSON message in the daemon's push output stream.
type pushMessage struct {
	Status      string `json:"status"`
	Error       string `json:"error"`
	ErrorDetail struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
	Aux *struct {
		Tag    string `json:"Tag"`
		Digest string `json:"Digest"`
		Size   int64  `json:"Size"`
	} `json:"aux"`
}

// Reads the push output stream and extracts the pushed digest.
//
// The daemon reports the final digest in an aux message once the manifest
// has been written. Push failures are reported in-band, like build failures.
func parsePushOutput(r io.Reader) (digest.Digest, error) {
	dec := json.NewDecoder(r)

	var pushed digest.Digest
	for {
		var msg pushMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("%w: %w", ErrPush, err)
		}

		if msg.Error != "" {
			detail := msg.ErrorDetail.Message
			if detail == "" {
				detail = msg.Error
			}
			return "", fmt.Errorf("%w: %s", ErrPush, detail)
		}

		if msg.Aux != nil && msg.Aux.Digest != "" {
			d, err := digest.Parse(msg.Aux.Digest)
			if err != nil {
				return "", fmt.Errorf("%w: %w", ErrPush, err)
			}
			pushed = d
		}
	}

	if pushed == "" {
		return "", fmt.Errorf("%w: daemon reported no digest", ErrPush)
	}
	return pushed, nil
}
