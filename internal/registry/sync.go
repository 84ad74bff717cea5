package registry

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
)

// DigestFile records the image digest of the last successful sync in destDir.
const DigestFile = ".sync-digest"

// SyncOptions describes what to pull and where to put it.
type SyncOptions struct {
	RepoURL string
	// Tag to pull. Empty means the latest tag.
	Tag     string
	DestDir string
	Auth    authn.Authenticator
}

// SyncResult describes a completed sync.
type SyncResult struct {
	Tag    string
	Digest string
	Files  int
}

// Sync pulls the image and extracts its flattened filesystem into opts.DestDir.
// When the remote digest equals the digest recorded by the previous sync,
// nothing is written and *NotModifiedError is returned.
func Sync(ctx context.Context, c Client, opts SyncOptions) (*SyncResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", opts.RepoURL)

	tag := opts.Tag
	if tag == "" {
		latest, err := c.GetLatestTag(ctx, opts.RepoURL, opts.Auth)
		if err != nil {
			return nil, err
		}
		if latest == "" {
			return nil, fmt.Errorf("repository %s has no tags", opts.RepoURL)
		}
		tag = latest
	}

	img, err := c.Pull(ctx, opts.RepoURL+":"+tag, opts.Auth)
	if err != nil {
		return nil, err
	}
	digest, err := img.Digest()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read image digest: %w", err))
	}

	digestPath := filepath.Join(opts.DestDir, DigestFile)
	if last, err := os.ReadFile(digestPath); err == nil && strings.TrimSpace(string(last)) == digest.String() {
		log.V(1).Info("shared framework unchanged", "tag", tag, "digest", digest.String())
		return nil, &NotModifiedError{Digest: digest.String()}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", digestPath, err)
	}

	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", opts.DestDir, err)
	}

	rc := mutate.Extract(img)
	defer rc.Close()

	files, err := extract(rc, opts.DestDir)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(digestPath, []byte(digest.String()+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", digestPath, err)
	}

	log.Info("synced shared framework", "tag", tag, "digest", digest.String(), "files", files)
	return &SyncResult{Tag: tag, Digest: digest.String(), Files: files}, nil
}

// extract writes the regular files of the tar stream under dest.
// Entries that would land outside dest are rejected.
func extract(r io.Reader, dest string) (int, error) {
	tr := tar.NewReader(r)
	files := 0
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, classify(fmt.Errorf("failed to read image layer: %w", err))
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return files, err
		}
		if hdr.Typeflag != tar.TypeReg || rel == "." || rel == DigestFile {
			continue
		}

		target := filepath.Join(dest, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return files, fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := writeFile(target, tr); err != nil {
			return files, err
		}
		files++
	}
}

func safeRelPath(entry string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(entry, "/")))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image entry %q escapes the destination directory", entry)
	}
	return rel, nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// sleep waits for d or until ctx is done. Replaced in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SyncWithRetry runs Sync up to retries+1 times, backing off between attempts
// that failed with a NetworkError or AuthError.
func SyncWithRetry(ctx context.Context, c Client, opts SyncOptions, retries int) (*SyncResult, error) {
	log := logr.FromContextOrDiscard(ctx)

	var failures int32
	for {
		res, err := Sync(ctx, c, opts)
		if err == nil || !IsRetryable(err) || int(failures) >= retries {
			return res, err
		}

		wait := AddJitter(CalculateBackoff(failures))
		log.Info("sync failed, retrying", "attempt", failures+1, "backoff", wait.String(), "error", err.Error())
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
		failures++
	}
}
