// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mkostiv/scorebatch/internal/httputil"
	"github.com/mkostiv/scorebatch/pkg/types"
)

// BundleName is the filename of the cached OSMD bundle.
const BundleName = "opensheetmusicdisplay.min.js"

// FetchBundle downloads the OSMD bundle into cacheDir for offline
// previews and returns the cached path. A previously cached copy is
// reused without a network call. The download goes through the retry
// wrapper and lands via a temp-file rename so a partial download never
// becomes the cache.
func FetchBundle(ctx context.Context, client *http.Client, cacheDir string) (string, error) {
	path := filepath.Join(cacheDir, BundleName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", cacheDir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, CDNScriptURL, nil)
	if err != nil {
		return "", fmt.Errorf("building bundle request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("downloading OSMD bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading OSMD bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(cacheDir, BundleName+".tmp-")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing OSMD bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("moving bundle into cache: %w", err)
	}
	return path, nil
}

// Prepare stages a preview directory for score per the preview config.
// Online previews reference the OSMD CDN; with cfg.Offline the bundle
// is fetched into cfg.CacheDir (DefaultCacheDir when empty) and staged
// alongside the page. The caller owns the returned directory.
func Prepare(ctx context.Context, client *http.Client, cfg types.PreviewConfig, score string) (string, error) {
	scriptSrc := CDNScriptURL
	localBundle := ""
	if cfg.Offline {
		cacheDir := cfg.CacheDir
		if cacheDir == "" {
			cacheDir = DefaultCacheDir()
		}
		bundle, err := FetchBundle(ctx, client, cacheDir)
		if err != nil {
			return "", err
		}
		localBundle = bundle
		scriptSrc = BundleName
	}
	return Stage(score, scriptSrc, localBundle)
}

// DefaultCacheDir returns ~/.cache/scorebatch, falling back to a
// scorebatch-cache directory under the system temp dir.
func DefaultCacheDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "scorebatch")
	}
	return filepath.Join(os.TempDir(), "scorebatch-cache")
}
