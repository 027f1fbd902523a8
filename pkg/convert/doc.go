// Package convert turns SVG files into PDF documents.
//
// # Overview
//
// The package is the coordination layer shared by every svg2pdf front-end:
//
//   - [ResolveOutputPath] decides where each PDF goes
//   - [Backend] renders one file; [NewBackend] picks an implementation by name
//   - [Batch] runs the command-line batch and aggregates a [Result]
//   - [Desktop] runs interactive submissions and reports through a [Surface]
//
// Rendering itself is delegated. The "canvas" backend parses the SVG with
// github.com/tdewolff/canvas and rescales the drawing by dpi/96 before
// writing the PDF; the "rsvg" backend hands the DPI to rsvg-convert.
//
//	backend, err := convert.NewBackend("canvas")
//	if err != nil {
//	    return err
//	}
//	b := &convert.Batch{Backend: backend, Reporter: reporter, Logger: logger}
//	result, err := b.Run(ctx, convert.Request{
//	    Inputs: []string{"a.svg", "b.svg"},
//	    Output: "out",
//	    DPI:    96,
//	})
//
// # Output paths
//
// Without an output target each PDF is written next to its input with the
// extension replaced by ".pdf". With several inputs the target must be a
// directory and every input maps to <dir>/<stem>.pdf.
//
// # Caching
//
// [Cached] wraps any backend with a [cache.Cache] keyed by SVG content, DPI
// and backend name. A hit still writes the output file, so repeated runs
// produce the same files.
//
// [cache.Cache]: github.com/matzehuels/svg2pdf/pkg/cache.Cache
package convert
