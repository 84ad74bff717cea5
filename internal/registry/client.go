// Package registry pulls the shared framework from an OCI registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// NotModifiedError indicates that the remote image digest equals the digest of
// the last sync, so nothing was pulled.
// This is not an error condition - the local copy is already current.
type NotModifiedError struct {
	Digest string
}

func (e *NotModifiedError) Error() string {
	return fmt.Sprintf("shared framework is up to date at %s", e.Digest)
}

// NetworkError indicates a transient network failure (connectivity issue, timeout, etc).
// These errors are retry-able and should trigger exponential backoff.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError indicates an authentication or authorization failure.
// These errors may be transient (registry temporarily down) or permanent (bad credentials).
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Client defines the interface for OCI registry operations.
type Client interface {
	// ListTags returns all tags available in the given repository, sorted.
	// repoURL should be a full OCI repository URL (e.g., "ghcr.io/org/framework").
	// auth is an optional authn.Authenticator; if nil, anonymous access is used.
	ListTags(ctx context.Context, repoURL string, auth authn.Authenticator) ([]string, error)

	// GetLatestTag returns the latest tag in the repository.
	// Returns empty string if no tags are found.
	GetLatestTag(ctx context.Context, repoURL string, auth authn.Authenticator) (string, error)

	// Pull resolves ref (repository plus tag or digest) to an image.
	// Layers are fetched lazily when read.
	Pull(ctx context.Context, ref string, auth authn.Authenticator) (v1.Image, error)
}

// OCIClient implements Client for OCI registries using go-containerregistry.
type OCIClient struct {
	transport http.RoundTripper
}

// NewOCIClient creates a new OCI registry client.
func NewOCIClient() *OCIClient {
	return &OCIClient{}
}

// WithTransport sets the HTTP transport used for registry requests.
func (c *OCIClient) WithTransport(rt http.RoundTripper) *OCIClient {
	c.transport = rt
	return c
}

func (c *OCIClient) options(ctx context.Context, auth authn.Authenticator) []remote.Option {
	if auth == nil {
		auth = authn.Anonymous
	}
	opts := []remote.Option{remote.WithContext(ctx), remote.WithAuth(auth)}
	if c.transport != nil {
		opts = append(opts, remote.WithTransport(c.transport))
	}
	return opts
}

// ListTags returns all tags in the OCI repository.
func (c *OCIClient) ListTags(ctx context.Context, repoURL string, auth authn.Authenticator) ([]string, error) {
	ref, err := name.NewRepository(repoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid repository URL: %w", err)
	}

	tags, err := remote.List(ref, c.options(ctx, auth)...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list tags: %w", err))
	}

	sort.Strings(tags)
	return tags, nil
}

// GetLatestTag returns the latest tag by sorting tags lexicographically.
//
// Lexicographic ordering does NOT follow semantic versioning
// (v1.10.0 sorts before v1.2.0); pin a tag when that matters.
func (c *OCIClient) GetLatestTag(ctx context.Context, repoURL string, auth authn.Authenticator) (string, error) {
	tags, err := c.ListTags(ctx, repoURL, auth)
	if err != nil {
		return "", err
	}

	if len(tags) == 0 {
		return "", nil
	}

	return tags[len(tags)-1], nil
}

// Pull returns the image referenced by ref.
func (c *OCIClient) Pull(ctx context.Context, ref string, auth authn.Authenticator) (v1.Image, error) {
	r, err := name.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference: %w", err)
	}

	img, err := remote.Image(r, c.options(ctx, auth)...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to pull %s: %w", ref, err))
	}
	return img, nil
}

// classify wraps registry failures in NetworkError or AuthError so callers can
// decide whether to retry. HTTP errors other than 401, 403, 429 and 5xx are
// returned unchanged.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		switch {
		case terr.StatusCode == http.StatusUnauthorized || terr.StatusCode == http.StatusForbidden:
			return &AuthError{Err: err}
		case terr.StatusCode == http.StatusTooManyRequests || terr.StatusCode >= http.StatusInternalServerError:
			return &NetworkError{Err: err}
		default:
			return err
		}
	}

	return &NetworkError{Err: err}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var authErr *AuthError
	return errors.As(err, &netErr) || errors.As(err, &authErr)
}
