package registry

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	imagetypes "github.com/docker/docker/api/types/image"
	registrytypes "github.com/docker/docker/api/types/registry"
	"github.com/opencontainers/go-digest"
)

var testDigest = digest.FromString("pushed-image")

type fakeAPI struct {
	loginAuth  registrytypes.AuthConfig
	loginErr   error
	pushOutput string
	pushErr    error
	pushedTag  string
}

func (f *fakeAPI) RegistryLogin(ctx context.Context, auth registrytypes.AuthConfig) (registrytypes.AuthenticateOKBody, error) {
	f.loginAuth = auth
	if f.loginErr != nil {
		return registrytypes.AuthenticateOKBody{}, f.loginErr
	}
	return registrytypes.AuthenticateOKBody{Status: "Login Succeeded"}, nil
}

func (f *fakeAPI) ImagePush(ctx context.Context, image string, options imagetypes.PushOptions) (io.ReadCloser, error) {
	f.pushedTag = image
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return io.NopCloser(strings.NewReader(f.pushOutput)), nil
}

func testCredentials() Credentials {
	return Credentials{
		Username: "builder",
		Token:    "secret",
		Server:   "https://index.docker.io/v1/",
	}
}

func TestLogin(t *testing.T) {
	api := &fakeAPI{}
	c := NewWithAPI(api, testCredentials())

	if err := c.Login(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.loginAuth.Username != "builder" {
		t.Fatalf("username = %q", api.loginAuth.Username)
	}
	if api.loginAuth.Password != "secret" {
		t.Fatalf("password = %q", api.loginAuth.Password)
	}
	if api.loginAuth.ServerAddress != "https://index.docker.io/v1/" {
		t.Fatalf("server = %q", api.loginAuth.ServerAddress)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{name: "no username", creds: Credentials{Token: "secret"}},
		{name: "no token", creds: Credentials{Username: "builder"}},
		{name: "empty", creds: Credentials{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			c := NewWithAPI(api, tt.creds)

			if err := c.Login(context.Background()); !errors.Is(err, ErrAuth) {
				t.Fatalf("err = %v, want ErrAuth", err)
			}
		})
	}
}

func TestLoginRejected(t *testing.T) {
	api := &fakeAPI{loginErr: errors.New("401 Unauthorized")}
	c := NewWithAPI(api, testCredentials())

	if err := c.Login(context.Background()); !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
}

func TestPush(t *testing.T) {
	api := &fakeAPI{
		pushOutput: `{"status":"Pushing"}{"aux":{"Tag":"latest","Digest":"` + testDigest.String() + `","Size":1234}}`,
	}
	c := NewWithAPI(api, testCredentials())

	d, err := c.Push(context.Background(), "example/costwatch:latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d != testDigest {
		t.Fatalf("digest = %v, want %v", d, testDigest)
	}
	if api.pushedTag != "example/costwatch:latest" {
		t.Fatalf("pushed tag = %q", api.pushedTag)
	}
}

func TestPushDaemonError(t *testing.T) {
	api := &fakeAPI{pushErr: errors.New("cannot connect")}
	c := NewWithAPI(api, testCredentials())

	if _, err := c.Push(context.Background(), "example/costwatch:latest"); !errors.Is(err, ErrPush) {
		t.Fatalf("err = %v, want ErrPush", err)
	}
}

func TestParsePushOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    digest.Digest
		wantErr string
	}{
		{
			name:   "digest in aux",
			output: `{"status":"Pushing"}{"aux":{"Digest":"` + testDigest.String() + `"}}`,
			want:   testDigest,
		},
		{
			name:    "in-band error",
			output:  `{"status":"Pushing"}{"errorDetail":{"message":"denied: requested access"},"error":"denied"}`,
			wantErr: "denied: requested access",
		},
		{
			name:    "error without detail",
			output:  `{"error":"push failed"}`,
			wantErr: "push failed",
		},
		{
			name:    "no digest reported",
			output:  `{"status":"Pushing"}{"status":"Pushed"}`,
			wantErr: "no digest",
		},
		{
			name:    "malformed digest",
			output:  `{"aux":{"Digest":"not-a-digest"}}`,
			wantErr: "digest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parsePushOutput(strings.NewReader(tt.output))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if d != tt.want {
					t.Fatalf("digest = %v, want %v", d, tt.want)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrPush) {
				t.Fatalf("err = %v, want ErrPush", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
