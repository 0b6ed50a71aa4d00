package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sctutils/internal/config"
	"sctutils/internal/console"
)

type memRecorder struct {
	commands []string
	statuses []int
}

func (m *memRecorder) RecordCommand(command string, status int, output string, started time.Time, duration time.Duration) error {
	m.commands = append(m.commands, command)
	m.statuses = append(m.statuses, status)
	return nil
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := New(config.Default().FSL, &console.Printer{Out: &buf, Verbose: true}, nil)
	return r, &buf
}

func TestRunCapturesOutputAndEchoes(t *testing.T) {
	r, buf := newTestRunner(t)
	res, err := r.Run(context.Background(), "echo hello; echo oops 1>&2")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Status != 0 {
		t.Fatalf("expected status 0, got %d", res.Status)
	}
	if !strings.Contains(res.Output, "hello") || !strings.Contains(res.Output, "oops") {
		t.Fatalf("expected combined stdout+stderr, got %q", res.Output)
	}
	if strings.HasSuffix(res.Output, "\n") {
		t.Fatalf("trailing newline should be trimmed")
	}
	if !strings.HasPrefix(buf.String(), ">> echo hello") {
		t.Fatalf("expected command echo, got %q", buf.String())
	}
}

func TestRunNonZeroReturnsCommandError(t *testing.T) {
	r, buf := newTestRunner(t)
	res, err := r.Run(context.Background(), "echo broken; exit 3")
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %T", err)
	}
	if cmdErr.Status != 3 || res.Status != 3 {
		t.Fatalf("expected status 3, got %d/%d", cmdErr.Status, res.Status)
	}
	if cmdErr.Output != "broken" {
		t.Fatalf("unexpected output %q", cmdErr.Output)
	}
	if !strings.Contains(buf.String(), "ERROR!!!") {
		t.Fatalf("expected error banner, got %q", buf.String())
	}
}

func TestRunExportsOutputType(t *testing.T) {
	r, _ := newTestRunner(t)
	r.OutputType = config.OutputNIFTIGZ
	res, err := r.Run(context.Background(), `printf %s "$FSLOUTPUTTYPE"`)
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "NIFTI_GZ" {
		t.Fatalf("expected FSLOUTPUTTYPE=NIFTI_GZ, got %q", res.Output)
	}
}

func TestStatusDoesNotFailOnNonZero(t *testing.T) {
	r, _ := newTestRunner(t)
	res, err := r.Status(context.Background(), "exit 7")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Status != 7 {
		t.Fatalf("expected 7, got %d", res.Status)
	}
}

func TestRecorderSeesEveryCommand(t *testing.T) {
	r, _ := newTestRunner(t)
	rec := &memRecorder{}
	r.Recorder = rec

	_, _ = r.Run(context.Background(), "true")
	_, _ = r.Run(context.Background(), "false")

	if len(rec.commands) != 2 {
		t.Fatalf("expected 2 records, got %d", len(rec.commands))
	}
	if rec.statuses[0] != 0 || rec.statuses[1] != 1 {
		t.Fatalf("unexpected statuses %v", rec.statuses)
	}
}

func TestCheckInstalled(t *testing.T) {
	r, buf := newTestRunner(t)
	if err := r.CheckInstalled(context.Background(), "true", "coreutils"); err != nil {
		t.Fatalf("expected installed, got %v", err)
	}

	err := r.CheckInstalled(context.Background(), "definitely-not-a-real-binary-xyz", "FSL")
	if !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing, got %v", err)
	}
	var depErr *DependencyError
	if !errors.As(err, &depErr) || depErr.Name != "FSL" {
		t.Fatalf("expected DependencyError naming FSL, got %v", err)
	}
	if !strings.Contains(buf.String(), "FSL is not installed") {
		t.Fatalf("expected diagnostic, got %q", buf.String())
	}
}

func TestExecMissingBinary(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Exec(context.Background(), "definitely-not-a-real-binary-xyz", "a.nii")
	if !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("expected ErrDependencyMissing, got %v", err)
	}
}

func TestExecUsesPathBinary(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"args:$1\"\nexit 0\n"
	if err := os.WriteFile(filepath.Join(dir, "faketool"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	r, _ := newTestRunner(t)
	res, err := r.Exec(context.Background(), "faketool", "with space.nii")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if res.Output != "args:with space.nii" {
		t.Fatalf("argument was split or mangled: %q", res.Output)
	}
}

func TestRunCanceledContext(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, "sleep 5"); !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected failure for canceled context, got %v", err)
	}
}
