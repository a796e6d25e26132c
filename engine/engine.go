// Package engine wraps the local Docker daemon operations needed for a
// push: registry login, tagging and the push itself. The daemon does all
// the wire level work, this package only hands it references and
// credentials.
package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	apiregistry "github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
)

// dockerAPI is the subset of the Docker client this package uses.
type dockerAPI interface {
	RegistryLogin(ctx context.Context, auth types.AuthConfig) (apiregistry.AuthenticateOKBody, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, image string, options types.ImagePushOptions) (io.ReadCloser, error)
}

// Engine is a handle on the local Docker daemon.
type Engine struct {
	client dockerAPI
}

// New connects to the daemon using the standard environment variables,
// negotiating the API version with whatever is running locally.
func New() (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Engine{client: cli}, nil
}

// Login authenticates the daemon against the given registry endpoint.
func (e *Engine) Login(ctx context.Context, username, password, endpoint string) error {
	auth := types.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: endpoint,
	}
	if _, err := e.client.RegistryLogin(ctx, auth); err != nil {
		return fmt.Errorf("failed to log in to %s: %w", endpoint, err)
	}
	return nil
}

// Tag applies the remote reference as a new tag on the local image. The
// daemon resolves the local reference, a missing image surfaces as the
// returned error.
func (e *Engine) Tag(ctx context.Context, local, remote string) error {
	if err := e.client.ImageTag(ctx, local, remote); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", local, remote, err)
	}
	return nil
}

// Push starts pushing the given reference and returns the raw stream of
// push status events. The caller owns the stream and must close it.
func (e *Engine) Push(ctx context.Context, ref, username, password, endpoint string) (io.ReadCloser, error) {
	auth := types.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: endpoint,
	}
	buf, err := json.Marshal(auth)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry auth: %w", err)
	}
	events, err := e.client.ImagePush(ctx, ref, types.ImagePushOptions{
		RegistryAuth: base64.URLEncoding.EncodeToString(buf),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to push %s: %w", ref, err)
	}
	return events, nil
}
