package fsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormatMismatch reports tool output that does not have the expected layout.
var ErrFormatMismatch = errors.New("unexpected tool output format")

// OrientationPrefix precedes the label printed by the orientation tool.
const OrientationPrefix = "Input image orientation : "

// FormatError describes which part of a tool's output could not be parsed.
type FormatError struct {
	Tool   string
	Reason string
	Output string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormatMismatch }

// Dimensions holds the grid size and voxel spacing of a 4D volume.
type Dimensions struct {
	Nx, Ny, Nz, Nt int
	Px, Py, Pz, Pt float64
}

var sizeLabels = [8]string{"dim1", "dim2", "dim3", "dim4", "pixdim1", "pixdim2", "pixdim3", "pixdim4"}

// ParseSize reads fslsize output: label/value pairs where the values at odd
// positions 1..15 are four sizes followed by four spacings.
func ParseSize(output string) (Dimensions, error) {
	fields := strings.Fields(output)
	if len(fields) < 2*len(sizeLabels) {
		return Dimensions{}, &FormatError{Tool: "fslsize", Reason: fmt.Sprintf("expected %d fields, got %d", 2*len(sizeLabels), len(fields)), Output: output}
	}

	var ints [4]int
	var floats [4]float64
	for i, label := range sizeLabels {
		if fields[2*i] != label {
			return Dimensions{}, &FormatError{Tool: "fslsize", Reason: fmt.Sprintf("field %d is %q, want %q", 2*i, fields[2*i], label), Output: output}
		}
		raw := fields[2*i+1]
		if i < 4 {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return Dimensions{}, &FormatError{Tool: "fslsize", Reason: fmt.Sprintf("%s is not an integer: %q", label, raw), Output: output}
			}
			ints[i] = n
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Dimensions{}, &FormatError{Tool: "fslsize", Reason: fmt.Sprintf("%s is not a number: %q", label, raw), Output: output}
		}
		floats[i-4] = f
	}

	return Dimensions{
		Nx: ints[0], Ny: ints[1], Nz: ints[2], Nt: ints[3],
		Px: floats[0], Py: floats[1], Pz: floats[2], Pt: floats[3],
	}, nil
}

// ParseOrientation strips OrientationPrefix from the orientation tool output.
func ParseOrientation(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), OrientationPrefix); ok {
			label := strings.TrimSpace(rest)
			if label == "" {
				return "", &FormatError{Tool: "orientation", Reason: "empty orientation label", Output: output}
			}
			return label, nil
		}
	}
	return "", &FormatError{Tool: "orientation", Reason: fmt.Sprintf("missing %q prefix", strings.TrimSpace(OrientationPrefix)), Output: output}
}
