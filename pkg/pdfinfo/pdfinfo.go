// Package pdfinfo reads basic facts back from a written PDF: page count and
// page dimensions in points. The batch driver logs them at debug level and
// tests use them to check DPI scaling.
package pdfinfo

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu would otherwise create ~/.config/pdfcpu on first use.
	api.DisableConfigDir()
}

// Page is the size of one page in PDF points (1/72 inch).
type Page struct {
	Width  float64
	Height float64
}

// Info summarizes a PDF document.
type Info struct {
	Pages []Page
}

// First returns the first page, or a zero Page for an empty document.
func (i Info) First() Page {
	if len(i.Pages) == 0 {
		return Page{}
	}
	return i.Pages[0]
}

// Read inspects the PDF in rs.
func Read(rs io.ReadSeeker) (Info, error) {
	conf := model.NewDefaultConfiguration()
	dims, err := api.PageDims(rs, conf)
	if err != nil {
		return Info{}, fmt.Errorf("read page dimensions: %w", err)
	}

	info := Info{Pages: make([]Page, len(dims))}
	for i, d := range dims {
		info.Pages[i] = Page{Width: d.Width, Height: d.Height}
	}
	return info, nil
}

// ReadFile inspects the PDF stored at path.
func ReadFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return Read(f)
}
