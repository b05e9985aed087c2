// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolpaths loads external-tool path overrides from a directory
// of plain-text files. Each file names one tool: the filename is the
// tool name (converter binary, recognizer, pdftoppm, ...) and the file
// contents (trimmed) are the binary path to run instead of a PATH lookup.
//
// Typical layout:
//
//	.scorebatch/tools/homr      -> /opt/homr/bin/homr
//	.scorebatch/tools/pdftoppm  -> /usr/local/opt/poppler/bin/pdftoppm
package toolpaths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Overrides maps tool names to binary paths.
type Overrides map[string]string

// Resolve returns the override for tool when one exists, or tool
// unchanged so the normal PATH lookup applies.
func (o Overrides) Resolve(tool string) string {
	if path, ok := o[tool]; ok {
		return path
	}
	return tool
}

// Load reads all files in dir into an Overrides map. A missing
// directory is not an error and yields an empty map. Dotfiles and
// subdirectories are ignored; unreadable files produce a warning on
// stderr but do not abort.
func Load(dir string) (Overrides, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return nil, fmt.Errorf("reading tool overrides directory %s: %w", dir, err)
	}

	overrides := make(Overrides)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read tool override %s: %v\n", name, err)
			continue
		}

		path := strings.TrimSpace(string(data))
		if path != "" {
			overrides[name] = path
		}
	}

	return overrides, nil
}
