// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan discovers image files eligible for recognition.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkostiv/scorebatch/pkg/types"
)

// imageExts is the fixed set of recognized image extensions. Matching
// is case-insensitive.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".heif": true,
}

// Recognized reports whether path carries a recognized image extension.
func Recognized(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Images walks the configured root recursively and returns every file
// whose extension belongs to the recognized set. A missing root is not
// an error and yields an empty list. Order follows the directory walk;
// callers must not rely on it being sorted.
func Images(cfg types.ScanConfig) ([]string, error) {
	root := cfg.Root
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if Recognized(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
