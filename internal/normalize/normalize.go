// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts HEIC/HEIF images to JPEG before they are
// handed to the recognition tool. Other formats pass through untouched.
package normalize

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mkostiv/scorebatch/pkg/types"
)

// rawExts lists the formats the recognition tool cannot read directly.
var rawExts = map[string]bool{
	".heic": true,
	".heif": true,
}

// NeedsConversion reports whether path is a HEIC/HEIF image, compared
// case-insensitively on the final extension.
func NeedsConversion(path string) bool {
	return rawExts[strings.ToLower(filepath.Ext(path))]
}

// JPEGPath derives the converted output path by replacing the final
// extension with "jpg". The converted file is a sibling of the source.
func JPEGPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
}

// Result holds the outcome of normalizing one file.
type Result struct {
	// Path is safe to hand to the recognition tool. Empty on failure.
	Path string

	// Status records whether a conversion happened.
	Status types.ConversionStatus
}

// Normalize returns a path the recognition tool can consume. Non-HEIC
// inputs pass through with no converter call. HEIC/HEIF inputs are
// converted to a JPEG sibling, overwriting any previous conversion; on
// failure the error names the source file and Result.Path is empty.
func Normalize(c Converter, path string) (Result, error) {
	if !NeedsConversion(path) {
		return Result{Path: path, Status: types.ConversionNone}, nil
	}

	dst := JPEGPath(path)
	if err := c.ToJPEG(path, dst); err != nil {
		return Result{Status: types.ConversionFailed},
			fmt.Errorf("converting %s: %w", path, err)
	}
	return Result{Path: dst, Status: types.ConversionDone}, nil
}
