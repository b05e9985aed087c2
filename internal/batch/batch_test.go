package batch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mkostiv/scorebatch/pkg/types"
)

// fakeConverter converts by recording the call; paths in failPaths fail.
type fakeConverter struct {
	failPaths map[string]bool
	calls     []string
}

func (f *fakeConverter) Name() string    { return "fake" }
func (f *fakeConverter) Available() bool { return true }

func (f *fakeConverter) ToJPEG(src, dst string) error {
	f.calls = append(f.calls, src+" -> "+dst)
	if f.failPaths[src] {
		return errors.New("exit status 1")
	}
	return nil
}

// fakeRecognizer records invocations and returns a configured exit code.
type fakeRecognizer struct {
	exitCodes map[string]int // path -> exit code, default 0
	startErr  error
	calls     []string
}

func (f *fakeRecognizer) Name() string { return "homr" }
func (f *fakeRecognizer) Check() error { return nil }

func (f *fakeRecognizer) Run(imagePath string) (int, error) {
	f.calls = append(f.calls, imagePath)
	if f.startErr != nil {
		return -1, f.startErr
	}
	return f.exitCodes[imagePath], nil
}

// recordingRecorder collects outcomes in memory.
type recordingRecorder struct {
	outcomes []FileOutcome
}

func (r *recordingRecorder) Record(o FileOutcome) { r.outcomes = append(r.outcomes, o) }

func TestRunPlainJPEG(t *testing.T) {
	conv := &fakeConverter{}
	rec := &fakeRecognizer{}
	var out, errw bytes.Buffer

	result := Run([]string{"photo1.jpg"}, conv, rec, nil, &out, &errw)

	if len(rec.calls) != 1 || rec.calls[0] != "photo1.jpg" {
		t.Errorf("recognizer calls = %v, want [photo1.jpg]", rec.calls)
	}
	if len(conv.calls) != 0 {
		t.Errorf("converter must not run for JPEG input, got %v", conv.calls)
	}
	if result.Recognized != 1 || result.HasFailures() {
		t.Errorf("result = %+v, want 1 recognized, no failures", result)
	}
	if !strings.Contains(out.String(), "Processing: photo1.jpg") {
		t.Error("banner should name the file being processed")
	}
	if !strings.Contains(out.String(), "Done processing all images!") {
		t.Error("completion message missing")
	}
}

func TestRunConvertsHEICBeforeRecognition(t *testing.T) {
	conv := &fakeConverter{}
	rec := &fakeRecognizer{}
	var out, errw bytes.Buffer

	result := Run([]string{"scan.HEIC"}, conv, rec, nil, &out, &errw)

	if len(conv.calls) != 1 || conv.calls[0] != "scan.HEIC -> scan.jpg" {
		t.Errorf("converter calls = %v, want [scan.HEIC -> scan.jpg]", conv.calls)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "scan.jpg" {
		t.Errorf("recognizer must receive the converted path, got %v", rec.calls)
	}
	if result.Recognized != 1 {
		t.Errorf("result = %+v, want 1 recognized", result)
	}
}

func TestRunSkipsFailedConversion(t *testing.T) {
	conv := &fakeConverter{failPaths: map[string]bool{"bad.heic": true}}
	rec := &fakeRecognizer{}
	var out, errw bytes.Buffer

	result := Run([]string{"bad.heic", "good.jpg"}, conv, rec, nil, &out, &errw)

	if len(rec.calls) != 1 || rec.calls[0] != "good.jpg" {
		t.Errorf("recognizer must skip the failed file, got calls %v", rec.calls)
	}
	if result.ConvertFailed != 1 || result.Recognized != 1 {
		t.Errorf("result = %+v, want 1 convert-failed and 1 recognized", result)
	}
	if !strings.Contains(errw.String(), "Skipping bad.heic") {
		t.Errorf("skip diagnostic missing from stderr output: %q", errw.String())
	}
}

func TestRunEmptyList(t *testing.T) {
	conv := &fakeConverter{}
	rec := &fakeRecognizer{}
	var out, errw bytes.Buffer

	result := Run(nil, conv, rec, nil, &out, &errw)

	if result.Total() != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if len(rec.calls) != 0 {
		t.Errorf("recognizer must not run for an empty batch, got %v", rec.calls)
	}
	if strings.TrimSpace(out.String()) != "Done processing all images!" {
		t.Errorf("empty batch should print only the completion message, got %q", out.String())
	}
}

func TestRunCountsRecognitionFailures(t *testing.T) {
	conv := &fakeConverter{}
	rec := &fakeRecognizer{exitCodes: map[string]int{"b.jpg": 2}}
	var out, errw bytes.Buffer

	result := Run([]string{"a.jpg", "b.jpg"}, conv, rec, nil, &out, &errw)

	if result.Recognized != 1 || result.RecognizeFailed != 1 {
		t.Errorf("result = %+v, want 1 recognized and 1 recognize-failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	// The batch continues past the failure.
	if len(rec.calls) != 2 {
		t.Errorf("recognizer calls = %v, want both files", rec.calls)
	}
}

func TestRunRecognitionStartFailure(t *testing.T) {
	conv := &fakeConverter{}
	rec := &fakeRecognizer{startErr: errors.New("fork failed")}
	var out, errw bytes.Buffer

	result := Run([]string{"a.jpg"}, conv, rec, nil, &out, &errw)

	if result.RecognizeFailed != 1 {
		t.Errorf("result = %+v, want 1 recognize-failed", result)
	}
	if !strings.Contains(errw.String(), "Recognition did not start") {
		t.Errorf("start failure diagnostic missing: %q", errw.String())
	}
}

func TestRunRecordsOutcomes(t *testing.T) {
	conv := &fakeConverter{failPaths: map[string]bool{"bad.heif": true}}
	rec := &fakeRecognizer{exitCodes: map[string]int{"late.jpg": 1}}
	recorder := &recordingRecorder{}
	var out, errw bytes.Buffer

	Run([]string{"scan.heic", "bad.heif", "late.jpg"}, conv, rec, recorder, &out, &errw)

	if len(recorder.outcomes) != 3 {
		t.Fatalf("recorded %d outcomes, want 3", len(recorder.outcomes))
	}

	first := recorder.outcomes[0]
	if first.Source != "scan.heic" || first.Normalized != "scan.jpg" {
		t.Errorf("first outcome = %+v", first)
	}
	if first.Status != types.ConversionDone || first.ExitCode != 0 {
		t.Errorf("first outcome = %+v, want converted with exit 0", first)
	}

	second := recorder.outcomes[1]
	if second.Status != types.ConversionFailed || second.Normalized != "" || second.ExitCode != -1 {
		t.Errorf("second outcome = %+v, want failed conversion with no recognition", second)
	}

	third := recorder.outcomes[2]
	if third.Status != types.ConversionNone || third.ExitCode != 1 {
		t.Errorf("third outcome = %+v, want passthrough with exit 1", third)
	}
}
