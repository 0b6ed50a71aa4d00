// Package fsl wraps the FSL command-line tools used by the pipeline: size and
// orientation queries, file type conversion, and output relocation.
package fsl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sctutils/internal/config"
	"sctutils/internal/console"
	"sctutils/internal/shell"
)

// Executor runs a program with arguments.
type Executor interface {
	Exec(ctx context.Context, name string, args ...string) (shell.Result, error)
}

// OutputRecorder persists relocated outputs.
type OutputRecorder interface {
	RecordOutput(input, output string) error
}

// Toolkit invokes the configured FSL binaries.
type Toolkit struct {
	exec     Executor
	cfg      config.FSL
	printer  *console.Printer
	log      *slog.Logger
	Recorder OutputRecorder
}

// NewToolkit returns a toolkit using exec for every external call.
func NewToolkit(exec Executor, cfg config.FSL, printer *console.Printer, log *slog.Logger) *Toolkit {
	return &Toolkit{exec: exec, cfg: cfg, printer: printer, log: log}
}

// Dimensions queries the grid size and voxel spacing of fname.
func (t *Toolkit) Dimensions(ctx context.Context, fname string) (Dimensions, error) {
	res, err := t.exec.Exec(ctx, t.cfg.SizeTool, fname)
	if err != nil {
		return Dimensions{}, fmt.Errorf("query dimensions of %s: %w", fname, err)
	}
	dims, err := ParseSize(res.Output)
	if err != nil {
		return Dimensions{}, fmt.Errorf("query dimensions of %s: %w", fname, err)
	}
	return dims, nil
}

// Orientation returns the orientation label (e.g. "RPI") of fname.
func (t *Toolkit) Orientation(ctx context.Context, fname string) (string, error) {
	res, err := t.exec.Exec(ctx, t.cfg.OrientationTool, "-get", "-i", fname)
	if err != nil {
		return "", fmt.Errorf("query orientation of %s: %w", fname, err)
	}
	label, err := ParseOrientation(res.Output)
	if err != nil {
		return "", fmt.Errorf("query orientation of %s: %w", fname, err)
	}
	return label, nil
}

// ChangeFileType converts the image at base (no extension) to outputType.
func (t *Toolkit) ChangeFileType(ctx context.Context, outputType, base string) error {
	if _, err := t.exec.Exec(ctx, t.cfg.FileTypeTool, outputType, base); err != nil {
		return fmt.Errorf("convert %s to %s: %w", base, outputType, err)
	}
	if t.log != nil {
		t.log.Debug("file type changed", "base", base, "type", outputType)
	}
	return nil
}

// OutputTypeFor maps a NIfTI extension to its FSL output type.
func OutputTypeFor(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".nii":
		return config.OutputNIFTI, true
	case ".nii.gz":
		return config.OutputNIFTIGZ, true
	default:
		return "", false
	}
}
