// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/internal/normalize"
)

// PDFRenderer rasterizes PDFs one JPEG per page through pdftoppm.
type PDFRenderer struct {
	Runner  execx.Runner
	Resolve func(string) string
}

func (p *PDFRenderer) bin() string {
	if p.Resolve == nil {
		return "pdftoppm"
	}
	return p.Resolve("pdftoppm")
}

// Render writes one JPEG per page into outDir, named <stem>-N.jpg by
// pdftoppm, and returns the produced page files sorted by name.
func (p *PDFRenderer) Render(src, outDir string, opts Options) ([]string, error) {
	opts = opts.withDefaults()

	bin := p.bin()
	if _, err := p.Runner.LookPath(bin); err != nil {
		return nil, fmt.Errorf("pdftoppm not found on PATH (install poppler): %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	prefix := filepath.Join(outDir, stem(src))
	args := []string{
		"-jpeg",
		"-r", strconv.Itoa(opts.DPI),
		"-jpegopt", fmt.Sprintf("quality=%d", opts.Quality),
		src, prefix,
	}
	if err := p.Runner.RunSilent(bin, args...); err != nil {
		return nil, fmt.Errorf("rendering %s with pdftoppm: %w", src, err)
	}

	pages, err := filepath.Glob(prefix + "-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("collecting pages for %s: %w", src, err)
	}
	sort.Strings(pages)
	return pages, nil
}

// SVGRenderer rasterizes SVGs to PNG via rsvg-convert or inkscape, then
// encodes the PNG as JPEG through a normalize.Converter. The heif-convert
// backend cannot encode PNGs; with it SVG rendering fails per-file.
type SVGRenderer struct {
	Runner    execx.Runner
	Resolve   func(string) string
	Converter normalize.Converter
}

func (s *SVGRenderer) resolve(tool string) string {
	if s.Resolve == nil {
		return tool
	}
	return s.Resolve(tool)
}

// Render rasterizes src into a JPEG at dst. The intermediate PNG is
// removed regardless of the JPEG encode outcome.
func (s *SVGRenderer) Render(src, dst string, opts Options) error {
	opts = opts.withDefaults()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	tmpPNG := strings.TrimSuffix(dst, filepath.Ext(dst)) + ".png"
	if err := s.toPNG(src, tmpPNG, opts.DPI); err != nil {
		return err
	}
	defer os.Remove(tmpPNG)

	if err := s.Converter.ToJPEG(tmpPNG, dst); err != nil {
		return fmt.Errorf("encoding %s as JPEG: %w", src, err)
	}
	return nil
}

func (s *SVGRenderer) toPNG(src, dst string, dpi int) error {
	if rsvg := s.resolve("rsvg-convert"); s.onPath(rsvg) {
		// librsvg has no dpi option; 96 dpi is its baseline, so scale
		// by dpi/96 as a proxy.
		scale := float64(dpi) / 96.0
		if scale < 0.1 {
			scale = 0.1
		}
		args := []string{"-o", dst, "-z", strconv.FormatFloat(scale, 'g', -1, 64), src}
		if err := s.Runner.RunSilent(rsvg, args...); err != nil {
			return fmt.Errorf("rendering %s with rsvg-convert: %w", src, err)
		}
		return nil
	}

	if inkscape := s.resolve("inkscape"); s.onPath(inkscape) {
		args := []string{
			src,
			"--export-type=png",
			"--export-filename=" + dst,
			fmt.Sprintf("--export-dpi=%d", dpi),
		}
		if err := s.Runner.RunSilent(inkscape, args...); err != nil {
			return fmt.Errorf("rendering %s with inkscape: %w", src, err)
		}
		return nil
	}

	return fmt.Errorf("no SVG renderer found: install librsvg (rsvg-convert) or inkscape")
}

func (s *SVGRenderer) onPath(bin string) bool {
	_, err := s.Runner.LookPath(bin)
	return err == nil
}
