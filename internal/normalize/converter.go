// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"

	"github.com/mkostiv/scorebatch/internal/execx"
	"github.com/mkostiv/scorebatch/pkg/types"
)

// Converter produces a JPEG from an image file by shelling out to a
// platform utility.
type Converter interface {
	// Name returns the backend binary name for diagnostics.
	Name() string

	// Available reports whether the backend binary is on PATH.
	Available() bool

	// ToJPEG converts src into a JPEG written at dst, overwriting any
	// existing file at dst. The source file is left in place.
	ToJPEG(src, dst string) error
}

// Resolver maps a tool name to the binary to execute, typically
// toolpaths.Overrides.Resolve. A nil Resolver uses the name as-is.
type Resolver func(tool string) string

// converter implements Converter for one backend binary. The backends
// differ only in name and argument layout.
type converter struct {
	bin    string
	argsFn func(src, dst string) []string
	runner execx.Runner
	res    Resolver
}

func (c *converter) resolve() string {
	if c.res == nil {
		return c.bin
	}
	return c.res(c.bin)
}

func (c *converter) Name() string { return c.bin }

func (c *converter) Available() bool {
	_, err := c.runner.LookPath(c.resolve())
	return err == nil
}

func (c *converter) ToJPEG(src, dst string) error {
	bin := c.resolve()
	if _, err := c.runner.LookPath(bin); err != nil {
		return fmt.Errorf("converter %s not found on PATH: %w", c.bin, err)
	}
	if err := c.runner.RunSilent(bin, c.argsFn(src, dst)...); err != nil {
		return fmt.Errorf("converter %s failed for %s: %w", c.bin, src, err)
	}
	return nil
}

func newSips(r execx.Runner, res Resolver) *converter {
	return &converter{
		bin: "sips",
		argsFn: func(src, dst string) []string {
			return []string{"-s", "format", "jpeg", src, "--out", dst}
		},
		runner: r,
		res:    res,
	}
}

func newMagick(r execx.Runner, res Resolver) *converter {
	return &converter{
		bin: "magick",
		argsFn: func(src, dst string) []string {
			return []string{src, dst}
		},
		runner: r,
		res:    res,
	}
}

func newHeifConvert(r execx.Runner, res Resolver) *converter {
	return &converter{
		bin: "heif-convert",
		argsFn: func(src, dst string) []string {
			return []string{src, dst}
		},
		runner: r,
		res:    res,
	}
}

// NewConverter builds the converter selected by the conversion config,
// probing for one when the backend is auto or unset.
func NewConverter(cfg types.ConversionConfig, r execx.Runner, res Resolver) (Converter, error) {
	switch cfg.Backend {
	case types.BackendSips:
		return newSips(r, res), nil
	case types.BackendMagick:
		return newMagick(r, res), nil
	case types.BackendHeifConvert:
		return newHeifConvert(r, res), nil
	case types.BackendAuto, "":
		return DetectConverter(r, res)
	}
	return nil, fmt.Errorf("unknown converter backend %q", cfg.Backend)
}

// DetectConverter probes sips, then magick, then heif-convert, and
// returns the first backend found on PATH. Returns an error when none
// is available.
func DetectConverter(r execx.Runner, res Resolver) (Converter, error) {
	candidates := []*converter{
		newSips(r, res),
		newMagick(r, res),
		newHeifConvert(r, res),
	}
	for _, c := range candidates {
		if c.Available() {
			return c, nil
		}
	}
	return nil, fmt.Errorf(
		"no image converter available: none of sips, magick, heif-convert found on PATH")
}

// Unavailable returns a Converter whose every conversion fails with err.
// The batch uses it when detection fails at startup, so that non-HEIC
// files still process while HEIC files report the detection failure.
func Unavailable(err error) Converter {
	return unavailable{err}
}

type unavailable struct{ err error }

func (u unavailable) Name() string                 { return "none" }
func (u unavailable) Available() bool              { return false }
func (u unavailable) ToJPEG(src, dst string) error { return u.err }
