package fsutil

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sctutils/internal/console"
)

// Recognized NIfTI extensions.
const (
	ExtNii   = ".nii"
	ExtNiiGz = ".nii.gz"
)

// ErrFileNotFound reports a path that exists under none of the accepted forms.
var ErrFileNotFound = errors.New("file not found")

var niftiExts = []string{ExtNii, ExtNiiGz}

// ParseFilename splits fname into directory (with trailing slash, or empty
// for a bare name), base name, and extension. ".nii.gz" is one extension.
func ParseFilename(fname string) (dir, base, ext string) {
	if i := strings.LastIndex(fname, "/"); i >= 0 {
		dir, base = fname[:i+1], fname[i+1:]
	} else {
		base = fname
	}

	base, ext = splitExt(base)
	if ext == ".gz" && strings.HasSuffix(base, ExtNii) {
		base = strings.TrimSuffix(base, ExtNii)
		ext = ExtNiiGz
	}
	return dir, base, ext
}

// splitExt treats leading dots as part of the name, so ".hidden" has no extension.
func splitExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || strings.TrimLeft(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

// IsNifti reports whether path carries a NIfTI extension.
func IsNifti(path string) bool {
	_, _, ext := ParseFilename(path)
	return ext == ExtNii || ext == ExtNiiGz
}

// IsFile reports whether path is an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FirstExisting returns the first candidate of fname that exists: the exact
// file, fname with each NIfTI extension appended, or fname as a directory.
func FirstExisting(fname string) string {
	if IsFile(fname) {
		return fname
	}
	for _, ext := range niftiExts {
		if IsFile(fname + ext) {
			return fname + ext
		}
	}
	if IsDir(fname) {
		return fname
	}
	return ""
}

// CheckExist returns ErrFileNotFound unless fname resolves through FirstExisting.
func CheckExist(fname string, p *console.Printer) error {
	if FirstExisting(fname) != "" {
		p.Print("  OK: "+fname, console.Normal)
		return nil
	}
	p.Always("  ERROR: "+fname+" does not exist.", console.Error)
	return fmt.Errorf("%s: %w", fname, ErrFileNotFound)
}

// SlashAtTheEnd ensures path ends with a slash (slash=true) or strips all
// trailing slashes (slash=false). Empty paths are returned unchanged.
func SlashAtTheEnd(path string, slash bool) string {
	if path == "" {
		return path
	}
	if !slash {
		return strings.TrimRight(path, "/")
	}
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

// DeleteNifti removes the .nii and .nii.gz siblings of fname's base name.
// Missing files are ignored.
func DeleteNifti(fname string) error {
	dir, base, _ := ParseFilename(fname)
	var errs []error
	for _, ext := range niftiExts {
		if err := RemoveIfExists(dir + base + ext); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveIfExists deletes path, treating absence as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
