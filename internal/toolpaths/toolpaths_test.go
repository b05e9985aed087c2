// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolpaths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Overrides
	}{
		{
			name: "reads override files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "homr", "  /opt/homr/bin/homr  \n")
				writeFile(t, dir, "pdftoppm", "/usr/local/opt/poppler/bin/pdftoppm")
				return dir
			},
			want: Overrides{
				"homr":     "/opt/homr/bin/homr",
				"pdftoppm": "/usr/local/opt/poppler/bin/pdftoppm",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Overrides{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "sips", "/usr/bin/sips")
				writeFile(t, dir, "empty", "")
				writeFile(t, dir, "blank", "  \n\t ")
				return dir
			},
			want: Overrides{"sips": "/usr/bin/sips"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "/bin/hidden")
				writeFile(t, dir, "magick", "/opt/imagemagick/bin/magick")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir
			},
			want: Overrides{"magick": "/opt/imagemagick/bin/magick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	o := Overrides{"homr": "/opt/homr/bin/homr"}

	assert.Equal(t, "/opt/homr/bin/homr", o.Resolve("homr"))
	assert.Equal(t, "sips", o.Resolve("sips"), "tools without an override pass through")

	var empty Overrides
	assert.Equal(t, "pdftoppm", empty.Resolve("pdftoppm"), "nil map resolves to the tool name")
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good", "/usr/bin/good")

	badPath := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(badPath, []byte("/usr/bin/bad"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/good", got["good"])
	_, hasBad := got["bad"]
	assert.False(t, hasBad, "unreadable override should be skipped")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
