package fsl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"sctutils/internal/console"
	"sctutils/internal/fsutil"
)

// GenerateOutputFile moves fnameIn to pathOut+fileOut+extOut, deleting any
// colliding output first and converting the file type when the extensions
// differ. pathOut is concatenated as given, so it should end with a slash.
// The returned path is pathOut+fileOut+extOut.
func (t *Toolkit) GenerateOutputFile(ctx context.Context, fnameIn, pathOut, fileOut, extOut string) (string, error) {
	target := pathOut + fileOut + extOut

	absIn, err := filepath.Abs(fnameIn)
	if err != nil {
		return "", err
	}
	absOut, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	pathIn, _, extIn := fsutil.ParseFilename(filepath.ToSlash(absIn))

	if !fsutil.IsFile(absIn) {
		t.printer.Always("  ERROR: File "+absIn+" does not exist.", console.Error)
		return "", fmt.Errorf("%s: %w", absIn, fsutil.ErrFileNotFound)
	}

	if absIn == absOut {
		t.printer.Printv("  WARNING: File "+target+" already exists. Do nothing.", true, console.Warning)
		return target, nil
	}

	absPathOut, err := filepath.Abs(pathOut)
	if err != nil {
		return "", err
	}

	// In another directory any NIfTI form of the output is stale; in the same
	// directory only the exact target is removed so the input survives.
	stale := []string{pathOut + fileOut + extOut}
	if filepath.Clean(filepath.FromSlash(pathIn)) != absPathOut {
		stale = []string{pathOut + fileOut + fsutil.ExtNii, pathOut + fileOut + fsutil.ExtNiiGz}
	}
	for _, p := range stale {
		if !fsutil.IsFile(p) {
			continue
		}
		t.printer.Printv("  WARNING: File "+p+" already exists. Delete it.", true, console.Warning)
		if err := os.Remove(p); err != nil {
			return "", fmt.Errorf("remove existing output: %w", err)
		}
	}

	moved := pathOut + fileOut + extIn
	if err := moveFile(absIn, moved); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", absIn, moved, err)
	}

	if extOut != extIn {
		if outputType, ok := OutputTypeFor(extOut); ok {
			if err := t.ChangeFileType(ctx, outputType, pathOut+fileOut); err != nil {
				return "", err
			}
		}
	}

	if t.Recorder != nil {
		if err := t.Recorder.RecordOutput(absIn, target); err != nil && t.log != nil {
			t.log.Warn("failed to record output", "output", target, "error", err)
		}
	}

	t.printer.Print("  File created: "+target, console.Normal)
	return target, nil
}

// moveFile renames src to dst, copying when they sit on different filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

// copyFile copies src to dst with src's permissions. A partial dst is removed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
