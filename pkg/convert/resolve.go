package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/svg2pdf/pkg/errors"
)

const (
	svgExt = ".svg"
	pdfExt = ".pdf"
)

// errOutputNotDir is the usage error for a multi-file run whose output
// target is not a directory.
func errOutputNotDir(output string) error {
	return errors.New(errors.ErrCodeInvalidOutput,
		"output must be a directory when converting multiple files: %s", output)
}

// IsSVG reports whether path has a .svg extension, ignoring case.
func IsSVG(path string) bool {
	return strings.EqualFold(ext(filepath.Base(path)), svgExt)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ext(base))
}

// ext is filepath.Ext except that a dot-file such as ".svg" has no
// extension.
func ext(base string) string {
	e := filepath.Ext(base)
	if e == base {
		return ""
	}
	return e
}

// ResolveOutputPath computes where the PDF for input is written.
//
//   - no output: input with its extension replaced by ".pdf"
//   - output is an existing directory: output/<stem>.pdf
//   - multiple inputs and output is not a directory: usage error
//   - otherwise: output itself (a single explicit file)
//
// The result depends only on the arguments and on whether output exists as
// a directory; the same rules apply to every backend.
func ResolveOutputPath(input, output string, multiple bool) (string, error) {
	if output == "" {
		dir, base := filepath.Split(input)
		return dir + strings.TrimSuffix(base, ext(base)) + pdfExt, nil
	}

	if isDir(output) {
		return filepath.Join(output, Stem(input)+pdfExt), nil
	}

	if multiple {
		return "", errOutputNotDir(output)
	}

	return output, nil
}

// PrepareOutputDir validates and creates the output directory of a
// multi-file run before any conversion starts. It does nothing for single
// inputs or when no output was given. Creating an existing directory is
// not an error.
func PrepareOutputDir(output string, multiple bool) error {
	if output == "" || !multiple {
		return nil
	}

	info, err := os.Stat(output)
	if err == nil && !info.IsDir() {
		return errOutputNotDir(output)
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOutput, err, "create output directory %s", output)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
