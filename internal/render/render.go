// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF and SVG score sources into JPEGs so
// the recognition pipeline can consume them. PDFs render one JPEG per
// page via poppler's pdftoppm; SVGs go through rsvg-convert or inkscape
// to an intermediate PNG that is then JPEG-encoded with the same
// converter backend the normalizer uses.
package render

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mkostiv/scorebatch/pkg/types"
)

// OutputDirName is the sibling directory that receives rendered JPEGs.
const OutputDirName = "rendered_jpegs"

// sourceExts lists the renderable source extensions.
var sourceExts = map[string]bool{
	".pdf": true,
	".svg": true,
}

// Options control rasterization: the render stage config plus the
// per-invocation dry-run switch.
type Options struct {
	types.RenderConfig

	// DryRun prints what would be rendered without invoking any tool.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.DPI <= 0 {
		o.DPI = 300
	}
	if o.Quality <= 0 {
		o.Quality = 92
	}
	return o
}

// Sources walks root and returns every .pdf and .svg file, sorted by
// path so rendering order is stable across runs.
func Sources(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Never descend into a previous run's output.
			if d.Name() == OutputDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputDir maps a source file to its per-file output directory:
// <root>/rendered_jpegs/<relative path without extension>.
func OutputDir(root, src string) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return "", fmt.Errorf("relativizing %s under %s: %w", src, root, err)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(root, OutputDirName, rel), nil
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProcessRoot renders every PDF/SVG source under root, printing per-file
// status to out and diagnostics to errw. A missing root is skipped with
// a warning; per-file failures never abort the run.
func ProcessRoot(root string, pdf *PDFRenderer, svg *SVGRenderer, opts Options, out, errw io.Writer) error {
	opts = opts.withDefaults()

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(errw, "Skipping missing root: %s\n", root)
			return nil
		}
		return fmt.Errorf("checking root %s: %w", root, err)
	}

	srcs, err := Sources(root)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		fmt.Fprintf(out, "No .pdf/.svg files found under %s\n", root)
		return nil
	}

	for _, src := range srcs {
		outDir, err := OutputDir(root, src)
		if err != nil {
			fmt.Fprintf(errw, "FAILED %s: %v\n", src, err)
			continue
		}

		if strings.EqualFold(filepath.Ext(src), ".pdf") {
			if opts.DryRun {
				fmt.Fprintf(out, "[DRY] PDF  %s -> %s\n", src, filepath.Join(outDir, stem(src)+"-N.jpg"))
				continue
			}
			pages, err := pdf.Render(src, outDir, opts)
			if err != nil {
				fmt.Fprintf(errw, "FAILED %s: %v\n", src, err)
				continue
			}
			fmt.Fprintf(out, "PDF  %s -> %d page(s) in %s\n", src, len(pages), outDir)
			continue
		}

		dst := filepath.Join(outDir, stem(src)+".jpg")
		if opts.DryRun {
			fmt.Fprintf(out, "[DRY] SVG  %s -> %s\n", src, dst)
			continue
		}
		if err := svg.Render(src, dst, opts); err != nil {
			fmt.Fprintf(errw, "FAILED %s: %v\n", src, err)
			continue
		}
		fmt.Fprintf(out, "SVG  %s -> %s\n", src, dst)
	}

	return nil
}
