package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/svg2pdf/pkg/convert"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// browserMode selects what a fileBrowser picks.
type browserMode int

const (
	browseFiles browserMode = iota // one or more SVG files
	browseDir                      // a single directory
)

// browserEntry is one row of the browser listing.
type browserEntry struct {
	Name  string
	IsDir bool
}

// browserResult is returned by fileBrowser.update once the user is done.
type browserResult struct {
	Done     bool
	Canceled bool
	Paths    []string
}

// fileBrowser is an embedded bubbletea component listing one directory at
// a time. In browseFiles mode it shows directories and SVG files and lets
// the user mark several files; in browseDir mode it shows directories only.
type fileBrowser struct {
	Mode    browserMode
	Dir     string
	Entries []browserEntry
	Cursor  int
	Offset  int
	Height  int
	Marked  map[string]bool
	Err     error
}

// newFileBrowser opens a browser in dir. An unreadable dir falls back to
// the working directory.
func newFileBrowser(mode browserMode, dir string) fileBrowser {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	b := fileBrowser{Mode: mode, Height: 12, Marked: make(map[string]bool)}
	b.load(dir)
	return b
}

// load lists dir. Hidden entries are not shown.
func (b *fileBrowser) load(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.Err = err
		return
	}

	b.Dir = dir
	b.Err = nil
	b.Cursor = 0
	b.Offset = 0
	b.Entries = b.Entries[:0]
	if parent := filepath.Dir(dir); parent != dir {
		b.Entries = append(b.Entries, browserEntry{Name: "..", IsDir: true})
	}

	var dirs, files []browserEntry
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		isDir := e.IsDir()
		if !isDir && e.Type()&os.ModeSymlink != 0 {
			if fi, err := os.Stat(filepath.Join(dir, name)); err == nil {
				isDir = fi.IsDir()
			}
		}
		switch {
		case isDir:
			dirs = append(dirs, browserEntry{Name: name, IsDir: true})
		case b.Mode == browseFiles && convert.IsSVG(name):
			files = append(files, browserEntry{Name: name})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	b.Entries = append(b.Entries, dirs...)
	b.Entries = append(b.Entries, files...)
}

func (b fileBrowser) path(e browserEntry) string {
	if e.Name == ".." {
		return filepath.Dir(b.Dir)
	}
	return filepath.Join(b.Dir, e.Name)
}

// marked returns the marked files in sorted order.
func (b fileBrowser) marked() []string {
	paths := make([]string, 0, len(b.Marked))
	for p, ok := range b.Marked {
		if ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func (b fileBrowser) update(msg tea.KeyMsg) (fileBrowser, browserResult) {
	switch msg.String() {
	case "esc", "q":
		return b, browserResult{Done: true, Canceled: true}
	case "up", "k":
		if b.Cursor > 0 {
			b.Cursor--
			if b.Cursor < b.Offset {
				b.Offset = b.Cursor
			}
		}
	case "down", "j":
		if b.Cursor < len(b.Entries)-1 {
			b.Cursor++
			if b.Cursor >= b.Offset+b.Height {
				b.Offset = b.Cursor - b.Height + 1
			}
		}
	case "backspace", "left", "h":
		b.load(filepath.Dir(b.Dir))
	case " ":
		if b.Mode == browseFiles && len(b.Entries) > 0 {
			e := b.Entries[b.Cursor]
			if !e.IsDir {
				p := b.path(e)
				b.Marked[p] = !b.Marked[p]
			}
		}
	case "s":
		if b.Mode == browseDir {
			return b, browserResult{Done: true, Paths: []string{b.Dir}}
		}
	case "enter", "right", "l":
		if len(b.Entries) == 0 {
			if b.Mode == browseDir {
				return b, browserResult{Done: true, Paths: []string{b.Dir}}
			}
			return b, browserResult{}
		}
		e := b.Entries[b.Cursor]
		if e.IsDir {
			b.load(b.path(e))
			return b, browserResult{}
		}
		if paths := b.marked(); len(paths) > 0 {
			return b, browserResult{Done: true, Paths: paths}
		}
		return b, browserResult{Done: true, Paths: []string{b.path(e)}}
	}
	return b, browserResult{}
}

func (b fileBrowser) view() string {
	var sb strings.Builder

	title := "Select SVG files"
	help := "↑/↓ navigate  ⏎ open/choose  space mark  ⌫ parent  esc cancel"
	if b.Mode == browseDir {
		title = "Select output directory"
		help = "↑/↓ navigate  ⏎ open  s choose this directory  ⌫ parent  esc cancel"
	}
	sb.WriteString(StyleTitle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render(b.Dir))
	sb.WriteString("\n")
	sb.WriteString(listDimStyle.Render(help))
	sb.WriteString("\n\n")

	if b.Err != nil {
		sb.WriteString(StyleError.Render(b.Err.Error()))
		sb.WriteString("\n\n")
	}
	if len(b.Entries) == 0 {
		sb.WriteString(listDimStyle.Render("  (empty)"))
		sb.WriteString("\n")
	}

	end := b.Offset + b.Height
	if end > len(b.Entries) {
		end = len(b.Entries)
	}
	for i := b.Offset; i < end; i++ {
		e := b.Entries[i]
		cursor := "  "
		if i == b.Cursor {
			cursor = "▸ "
		}
		mark := "  "
		if b.Marked[b.path(e)] {
			mark = listMarkedStyle.Render(iconSuccess) + " "
		}
		name := e.Name
		if e.IsDir {
			name += "/"
		}

		line := cursor + mark + name
		switch {
		case i == b.Cursor:
			sb.WriteString(listSelectedStyle.Render(line))
		case e.IsDir:
			sb.WriteString(listDimStyle.Render(line))
		default:
			sb.WriteString(listNormalStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	if n := len(b.marked()); n > 0 {
		sb.WriteString("\n")
		sb.WriteString(listMarkedStyle.Render(fmt.Sprintf("  %d file(s) marked", n)))
		sb.WriteString("\n")
	}
	return sb.String()
}
