// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preview serves a MusicXML score in the browser through
// OpenSheetMusicDisplay (OSMD). The score and a generated index.html
// are staged into a temporary directory and served on localhost.
package preview

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
)

// CDNScriptURL is the OSMD bundle served when not running offline.
// Variable so tests can point it at a local server.
var CDNScriptURL = "https://cdn.jsdelivr.net/npm/opensheetmusicdisplay@1.9.0/build/opensheetmusicdisplay.min.js"

var pageTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Score Preview</title>
    <script src="{{.ScriptSrc}}"></script>
    <style>
      body { font-family: system-ui, -apple-system, sans-serif; margin: 0; }
      header { padding: 12px 16px; background: #f5f5f5; border-bottom: 1px solid #ddd; }
      #osmd-container { padding: 16px; }
    </style>
  </head>
  <body>
    <header>
      <strong>Score Preview</strong> &mdash; {{.Filename}}
    </header>
    <div id="osmd-container"></div>
    <script>
      const osmd = new opensheetmusicdisplay.OpenSheetMusicDisplay("osmd-container", {
        backend: "svg",
        drawingParameters: "default"
      });
      osmd
        .load("{{.ScoreFile}}")
        .then(() => osmd.render())
        .catch((err) => {
          const container = document.getElementById("osmd-container");
          container.innerHTML = "<pre style='color:#b00'>" + err + "</pre>";
        });
      window.addEventListener("resize", () => osmd.render());
    </script>
  </body>
</html>
`))

type pageData struct {
	Filename  string
	ScoreFile string
	ScriptSrc string
}

// Stage copies the score and a generated index.html into a fresh
// temporary directory and returns its path. scriptSrc is the URL or
// relative filename of the OSMD bundle referenced by the page. When
// localBundle is non-empty that file is copied alongside the page and
// scriptSrc should name its base name. A missing score file is an error.
func Stage(score, scriptSrc, localBundle string) (dir string, err error) {
	if _, err := os.Stat(score); err != nil {
		return "", fmt.Errorf("score file not found: %s", score)
	}

	dir, err = os.MkdirTemp("", "scorebatch-preview-")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	// The caller owns the directory only on success.
	staged := dir
	defer func() {
		if err != nil {
			os.RemoveAll(staged)
		}
	}()

	ext := filepath.Ext(score)
	if ext == "" {
		ext = ".musicxml"
	}
	scoreFile := "score" + ext

	if err := copyFile(score, filepath.Join(dir, scoreFile)); err != nil {
		return "", fmt.Errorf("staging score: %w", err)
	}
	if localBundle != "" {
		if err := copyFile(localBundle, filepath.Join(dir, filepath.Base(localBundle))); err != nil {
			return "", fmt.Errorf("staging OSMD bundle: %w", err)
		}
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return "", fmt.Errorf("creating index.html: %w", err)
	}
	defer f.Close()

	data := pageData{
		Filename:  filepath.Base(score),
		ScoreFile: scoreFile,
		ScriptSrc: scriptSrc,
	}
	if err := pageTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering index.html: %w", err)
	}

	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Serve runs a blocking file server for dir on 127.0.0.1. Port 0 picks
// a free port. onReady, if non-nil, is called with the page URL once
// the listener is bound. Cancelling ctx shuts the server down cleanly.
func Serve(ctx context.Context, dir string, port int, onReady func(url string)) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("binding preview listener: %w", err)
	}

	srv := &http.Server{Handler: http.FileServer(http.Dir(dir))}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if onReady != nil {
		onReady(fmt.Sprintf("http://%s/index.html", ln.Addr()))
	}

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
