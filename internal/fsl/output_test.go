package fsl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"sctutils/internal/fsutil"
)

type memOutputs struct{ pairs [][2]string }

func (m *memOutputs) RecordOutput(input, output string) error {
	m.pairs = append(m.pairs, [2]string{input, output})
	return nil
}

func TestGenerateOutputFileMovesAcrossDirectories(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir() + "/"
	in := filepath.Join(src, "tmp_seg.nii")
	writeFile(t, in, "volume")
	writeFile(t, dst+"seg.nii", "stale")
	writeFile(t, dst+"seg.nii.gz", "stale")

	stub := &stubExecutor{}
	tk, buf := newTestToolkit(stub)
	rec := &memOutputs{}
	tk.Recorder = rec

	got, err := tk.GenerateOutputFile(context.Background(), in, dst, "seg", ".nii")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != dst+"seg.nii" {
		t.Fatalf("unexpected output path %s", got)
	}
	if data, _ := os.ReadFile(got); string(data) != "volume" {
		t.Fatalf("expected moved content, got %q", data)
	}
	if fsutil.IsFile(dst + "seg.nii.gz") {
		t.Fatalf("stale .nii.gz should have been deleted")
	}
	if fsutil.IsFile(in) {
		t.Fatalf("input should have been moved")
	}
	if len(stub.calls) != 0 {
		t.Fatalf("same extension must not convert, got %+v", stub.calls)
	}
	if !strings.Contains(buf.String(), "already exists. Delete it.") || !strings.Contains(buf.String(), "File created: "+got) {
		t.Fatalf("unexpected messages %q", buf.String())
	}
	if len(rec.pairs) != 1 || rec.pairs[0][1] != got {
		t.Fatalf("expected output to be recorded, got %+v", rec.pairs)
	}
}

func TestGenerateOutputFileConvertsExtension(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir() + "/"
	in := filepath.Join(src, "tmp.nii.gz")
	writeFile(t, in, "zipped")

	stub := &stubExecutor{convert: true}
	tk, _ := newTestToolkit(stub)

	got, err := tk.GenerateOutputFile(context.Background(), in, dst, "out", ".nii")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected one conversion, got %+v", stub.calls)
	}
	if args := stub.calls[0].args; args[0] != "NIFTI" || args[1] != dst+"out" {
		t.Fatalf("unexpected conversion args %v", args)
	}
	if !fsutil.IsFile(got) || fsutil.IsFile(dst+"out.nii.gz") {
		t.Fatalf("expected only %s after conversion", got)
	}
}

func TestGenerateOutputFileSameDirectoryKeepsInput(t *testing.T) {
	dir := t.TempDir() + "/"
	in := dir + "t2.nii"
	writeFile(t, in, "input")
	writeFile(t, dir+"t2_out.nii.gz", "other extension survives")
	writeFile(t, dir+"t2_out.nii", "exact target is replaced")

	tk, _ := newTestToolkit(&stubExecutor{})
	got, err := tk.GenerateOutputFile(context.Background(), in, dir, "t2_out", ".nii")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if data, _ := os.ReadFile(got); string(data) != "input" {
		t.Fatalf("expected input moved over target, got %q", data)
	}
	if !fsutil.IsFile(dir + "t2_out.nii.gz") {
		t.Fatalf("same-directory relocation must only delete the exact target")
	}
}

func TestGenerateOutputFileIdenticalPathIsNoop(t *testing.T) {
	dir := t.TempDir() + "/"
	in := dir + "anat.nii.gz"
	writeFile(t, in, "keep")

	stub := &stubExecutor{}
	tk, buf := newTestToolkit(stub)
	got, err := tk.GenerateOutputFile(context.Background(), in, dir, "anat", ".nii.gz")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != dir+"anat.nii.gz" {
		t.Fatalf("expected unchanged path, got %s", got)
	}
	if data, _ := os.ReadFile(in); string(data) != "keep" {
		t.Fatalf("file must be untouched")
	}
	if len(stub.calls) != 0 {
		t.Fatalf("no external call expected")
	}
	if !strings.Contains(buf.String(), "Do nothing.") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestGenerateOutputFileMissingInput(t *testing.T) {
	tk, _ := newTestToolkit(&stubExecutor{})
	_, err := tk.GenerateOutputFile(context.Background(), filepath.Join(t.TempDir(), "nope.nii"), t.TempDir()+"/", "x", ".nii")
	if !errors.Is(err, fsutil.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestGenerateOutputFileConversionFailure(t *testing.T) {
	src := t.TempDir()
	in := filepath.Join(src, "a.nii")
	writeFile(t, in, "x")

	stub := &stubExecutor{errs: map[string]error{"fslchfiletype": errors.New("boom")}}
	tk, _ := newTestToolkit(stub)
	if _, err := tk.GenerateOutputFile(context.Background(), in, t.TempDir()+"/", "b", ".nii.gz"); err == nil {
		t.Fatalf("expected conversion error")
	}
}

func TestMoveFileMissingDestinationDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.nii")
	writeFile(t, src, "x")
	if err := moveFile(src, filepath.Join(t.TempDir(), "absent", "a.nii")); err == nil {
		t.Fatalf("expected error for missing destination directory")
	}
	if !fsutil.IsFile(src) {
		t.Fatalf("source must survive a failed move")
	}
}

func TestMoveFileOnlyCopiesAcrossDevices(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.nii")
	writeFile(t, src, "input")
	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "keep"), "x")

	err := moveFile(src, dst)
	if err == nil {
		t.Fatalf("expected renaming onto a directory to fail")
	}
	if errors.Is(err, syscall.EXDEV) {
		t.Fatalf("unexpected cross-device error %v", err)
	}
	if b, err := os.ReadFile(src); err != nil || string(b) != "input" {
		t.Fatalf("input should be untouched, got %q, %v", b, err)
	}
	if !fsutil.IsDir(dst) {
		t.Fatalf("destination directory was replaced")
	}
}

func TestCopyFileRemovesPartialOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.nii")
	// reading a directory fails after dst has been created
	if err := copyFile(t.TempDir(), dst); err == nil {
		t.Fatalf("expected copy from a directory to fail")
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected partial output to be removed, stat: %v", err)
	}
}

func TestCopyFileKeepsContentAndMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.nii")
	writeFile(t, src, "volume")
	if err := os.Chmod(src, 0o600); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "b.nii")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	if b, _ := os.ReadFile(dst); string(b) != "volume" {
		t.Fatalf("content = %q", b)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
