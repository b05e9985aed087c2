package preview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mkostiv/scorebatch/pkg/types"
)

func writeScore(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("<score-partwise/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStage(t *testing.T) {
	score := writeScore(t, "etude.musicxml")

	dir, err := Stage(score, CDNScriptURL, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("index.html missing: %v", err)
	}
	html := string(page)

	if !strings.Contains(html, "etude.musicxml") {
		t.Error("page should name the source file")
	}
	if !strings.Contains(html, `load("score.musicxml")`) {
		t.Error("page should load the staged score copy")
	}
	if !strings.Contains(html, "opensheetmusicdisplay") {
		t.Error("page should reference the OSMD bundle")
	}

	if _, err := os.Stat(filepath.Join(dir, "score.musicxml")); err != nil {
		t.Errorf("staged score copy missing: %v", err)
	}
}

func TestStagePreservesExtension(t *testing.T) {
	score := writeScore(t, "piece.mxl")

	dir, err := Stage(score, CDNScriptURL, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if _, err := os.Stat(filepath.Join(dir, "score.mxl")); err != nil {
		t.Errorf("staged copy should keep the .mxl extension: %v", err)
	}
}

func TestStageMissingScore(t *testing.T) {
	_, err := Stage(filepath.Join(t.TempDir(), "gone.musicxml"), CDNScriptURL, "")
	if err == nil {
		t.Fatal("expected error for missing score file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestStageWithLocalBundle(t *testing.T) {
	score := writeScore(t, "a.xml")
	bundle := filepath.Join(t.TempDir(), BundleName)
	if err := os.WriteFile(bundle, []byte("// osmd"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err := Stage(score, BundleName, bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if _, err := os.Stat(filepath.Join(dir, BundleName)); err != nil {
		t.Errorf("local bundle should be staged next to the page: %v", err)
	}
}

func TestStageFailureRemovesDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	score := writeScore(t, "a.xml")
	missingBundle := filepath.Join(t.TempDir(), "no-such-bundle.js")

	if _, err := Stage(score, BundleName, missingBundle); err == nil {
		t.Fatal("expected error for missing bundle file")
	}

	leftovers, err := filepath.Glob(filepath.Join(tmp, "scorebatch-preview-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("failed staging must not leave directories behind, found %v", leftovers)
	}
}

func TestPrepareOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "// osmd bundle")
	}))
	defer srv.Close()

	old := CDNScriptURL
	CDNScriptURL = srv.URL
	t.Cleanup(func() { CDNScriptURL = old })

	score := writeScore(t, "c.musicxml")
	cfg := types.PreviewConfig{Offline: true, CacheDir: t.TempDir()}

	dir, err := Prepare(context.Background(), srv.Client(), cfg, score)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if _, err := os.Stat(filepath.Join(dir, BundleName)); err != nil {
		t.Errorf("offline preview should stage the cached bundle: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `src="`+BundleName+`"`) {
		t.Error("offline page should reference the local bundle, not the CDN")
	}
}

func TestServe(t *testing.T) {
	score := writeScore(t, "b.musicxml")
	dir, err := Stage(score, CDNScriptURL, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	urlCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, dir, 0, func(url string) { urlCh <- url })
	}()

	var url string
	select {
	case url = <-urlCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "osmd-container") {
		t.Error("served page should contain the OSMD container")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("clean shutdown expected, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestFetchBundle(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, "// osmd bundle")
	}))
	defer srv.Close()

	old := CDNScriptURL
	CDNScriptURL = srv.URL
	t.Cleanup(func() { CDNScriptURL = old })

	cacheDir := t.TempDir()

	path, err := FetchBundle(context.Background(), srv.Client(), cacheDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cached bundle missing: %v", err)
	}
	if string(data) != "// osmd bundle" {
		t.Errorf("cached contents = %q", data)
	}

	// Second fetch hits the cache, not the network.
	if _, err := FetchBundle(context.Background(), srv.Client(), cacheDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (cache should be reused)", hits)
	}
}

func TestFetchBundleServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	old := CDNScriptURL
	CDNScriptURL = srv.URL
	t.Cleanup(func() { CDNScriptURL = old })

	_, err := FetchBundle(context.Background(), srv.Client(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "unexpected status") {
		t.Errorf("unexpected error text: %v", err)
	}
}
