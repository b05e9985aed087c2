// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the per-file conversion and recognition loop.
// Files are processed strictly in sequence: each file's conversion and
// recognition complete before the next file begins.
package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/mkostiv/scorebatch/internal/normalize"
	"github.com/mkostiv/scorebatch/internal/recognize"
	"github.com/mkostiv/scorebatch/pkg/types"
)

// separator is the visual banner printed before each file.
const separator = "========================================"

// Result holds the outcome counts of a batch run.
type Result struct {
	Recognized      int // recognition invoked, exit code 0
	RecognizeFailed int // recognition invoked but exited non-zero or failed to start
	ConvertFailed   int // conversion failed, recognition never invoked
}

// Total returns the number of files processed.
func (r Result) Total() int {
	return r.Recognized + r.RecognizeFailed + r.ConvertFailed
}

// HasFailures reports whether any file failed conversion or recognition.
func (r Result) HasFailures() bool {
	return r.RecognizeFailed > 0 || r.ConvertFailed > 0
}

// FileOutcome records what happened to a single file.
type FileOutcome struct {
	Source     string
	Normalized string // empty when conversion failed
	Status     types.ConversionStatus
	ExitCode   int // recognition exit code; -1 when recognition never ran
	Duration   time.Duration
}

// Recorder receives per-file outcomes. Implementations may persist
// them; a nil Recorder discards them.
type Recorder interface {
	Record(o FileOutcome)
}

// Run processes files in order: banner, normalization, recognition,
// blank-line delimiter, then a single completion message. A failed
// conversion skips the file with a diagnostic on errw; a non-zero
// recognition exit is counted but never aborts the batch. Operator
// output goes to out, diagnostics to errw.
func Run(files []string, conv normalize.Converter, rec recognize.Recognizer, recorder Recorder, out, errw io.Writer) Result {
	var result Result

	for _, file := range files {
		fmt.Fprintln(out, separator)
		fmt.Fprintf(out, "Processing: %s\n", file)

		start := time.Now()
		outcome := processFile(file, conv, rec, out, errw)
		outcome.Duration = time.Since(start)

		switch {
		case outcome.Status == types.ConversionFailed:
			result.ConvertFailed++
		case outcome.ExitCode == 0:
			result.Recognized++
		default:
			result.RecognizeFailed++
		}

		if recorder != nil {
			recorder.Record(outcome)
		}

		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Done processing all images!")
	return result
}

func processFile(file string, conv normalize.Converter, rec recognize.Recognizer, out, errw io.Writer) FileOutcome {
	outcome := FileOutcome{Source: file, ExitCode: -1}

	res, err := normalize.Normalize(conv, file)
	if err != nil {
		fmt.Fprintf(errw, "Skipping %s: %v\n", file, err)
		outcome.Status = types.ConversionFailed
		return outcome
	}
	outcome.Normalized = res.Path
	outcome.Status = res.Status

	code, err := rec.Run(res.Path)
	if err != nil {
		fmt.Fprintf(errw, "Recognition did not start for %s: %v\n", res.Path, err)
		return outcome
	}
	outcome.ExitCode = code
	return outcome
}
