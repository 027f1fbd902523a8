package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2pdf/pkg/convert"
	"github.com/matzehuels/svg2pdf/pkg/observability"
	"github.com/matzehuels/svg2pdf/pkg/watch"
)

// DPI spinner bounds.
const (
	dpiMin  = 10.0
	dpiMax  = 600.0
	dpiStep = 10.0
)

const desktopTitle = "SVG to PDF Converter"

// desktopOpts holds the flags of the desktop command.
type desktopOpts struct {
	outputDir string
	dpi       float64
	backend   string
	dropDir   string
	noCache   bool
}

// desktopCommand creates the interactive terminal front-end.
func (c *CLI) desktopCommand() *cobra.Command {
	var opts desktopOpts

	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Interactive converter with a drop field, DPI spinner and log",
		Long: `Open an interactive converter in the terminal.

Paste or drag SVG files into the drop field (most terminals insert the
dropped path), or browse for them with ctrl+o. Each submission is converted
with the DPI shown in the spinner and written next to its source, or into
the output directory when one is set.

With --drop-dir, SVG files saved into that folder are converted as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyDesktopDefaults(cmd, &opts)
			return c.runDesktop(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "write PDFs into this directory instead of next to each SVG")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", convert.DefaultDPI, "initial DPI spinner value")
	cmd.Flags().StringVar(&opts.backend, "backend", "canvas", "renderer: canvas (built in), rsvg (needs rsvg-convert)")
	cmd.Flags().StringVar(&opts.dropDir, "drop-dir", "", "also convert SVG files saved into this folder")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	_ = cmd.MarkFlagDirname("output-dir")
	_ = cmd.MarkFlagDirname("drop-dir")
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)

	return cmd
}

func (c *CLI) applyDesktopDefaults(cmd *cobra.Command, opts *desktopOpts) {
	if !cmd.Flags().Changed("dpi") {
		opts.dpi = c.config.Convert.DPI
	}
	if !cmd.Flags().Changed("backend") && c.config.Convert.Backend != "" {
		opts.backend = c.config.Convert.Backend
	}
	if !cmd.Flags().Changed("output-dir") {
		opts.outputDir = c.config.Convert.OutputDir
	}
	if !cmd.Flags().Changed("drop-dir") {
		opts.dropDir = c.config.Desktop.DropDir
	}
}

// runDesktop runs the bubbletea program until the user quits or ctx is
// canceled.
func (c *CLI) runDesktop(parent context.Context, opts desktopOpts) error {
	logger, closeLog := c.desktopLogger()
	defer closeLog()

	backend, rc, err := c.openBackend(parent, opts.backend, opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	surface := &teaSurface{done: ctx.Done()}
	d := &convert.Desktop{Backend: backend, Logger: logger}
	m := newDesktopModel(ctx, d, surface, opts.outputDir, opts.dpi)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	surface.send = p.Send

	if opts.dropDir != "" {
		debounce, err := c.config.DebounceInterval()
		if err != nil {
			return err
		}
		w, err := watch.New(opts.dropDir, func(paths []string) {
			p.Send(submitMsg{paths: paths, queued: true})
		}, watch.WithDebounce(debounce), watch.WithLogger(logger))
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
		go p.Send(logMsg(fmt.Sprintf("Watching %s for new SVG files", w.Dir())))
	}

	_, err = p.Run()
	cancel()
	if err != nil && parent.Err() != nil {
		return parent.Err()
	}
	return err
}

// desktopLogger returns the logger used while the terminal belongs to the
// program. Under --verbose it appends to desktop.log in the cache directory.
func (c *CLI) desktopLogger() (*log.Logger, func()) {
	if !c.verbose {
		return newLogger(io.Discard, LogInfo), func() {}
	}
	dir, err := cacheDir()
	if err == nil {
		err = os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return newLogger(io.Discard, LogInfo), func() {}
	}
	path := filepath.Join(dir, "desktop.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return newLogger(io.Discard, LogInfo), func() {}
	}

	logger := newLogger(f, LogDebug)
	observability.SetConvertHooks(logHooks{logger})
	observability.SetCacheHooks(logHooks{logger})
	c.Logger.Info("Debug log", "path", path)
	return logger, func() { f.Close() }
}

// =============================================================================
// Surface
// =============================================================================

type (
	logMsg   string
	alertMsg struct {
		title   string
		message string
		ack     chan struct{}
	}
	// submitMsg carries paths from a source outside the key handler.
	// Queued submissions wait for a running batch instead of being refused.
	submitMsg struct {
		paths  []string
		queued bool
	}
	batchDoneMsg struct {
		summary convert.Summary
	}
)

// teaSurface forwards desktop reports to the running program. Alert blocks
// until the dialog is dismissed or the program exits.
type teaSurface struct {
	send func(tea.Msg)
	done <-chan struct{}
}

func (s *teaSurface) Log(message string) {
	s.send(logMsg(message))
}

func (s *teaSurface) Alert(title, message string) {
	ack := make(chan struct{})
	s.send(alertMsg{title: title, message: message, ack: ack})
	select {
	case <-ack:
	case <-s.done:
	}
}

// =============================================================================
// Model
// =============================================================================

type desktopFocus int

const (
	focusDrop desktopFocus = iota
	focusOutput
	focusDPI
	focusCount
)

// desktopModel is the bubbletea model of the desktop front-end.
type desktopModel struct {
	ctx     context.Context
	desktop *convert.Desktop
	surface convert.Surface

	focus  desktopFocus
	drop   string
	output string
	dpi    string

	log      []string
	alerts   []alertMsg
	browsing bool
	browser  fileBrowser
	busy     bool
	queue    [][]string

	width  int
	height int
}

func newDesktopModel(ctx context.Context, d *convert.Desktop, s convert.Surface, outputDir string, dpi float64) desktopModel {
	return desktopModel{
		ctx:     ctx,
		desktop: d,
		surface: s,
		output:  outputDir,
		dpi:     strconv.FormatFloat(dpi, 'f', -1, 64),
	}
}

func (m desktopModel) Init() tea.Cmd {
	return nil
}

func (m desktopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.browser.Height = max(5, msg.Height-8)
	case logMsg:
		m.log = append(m.log, string(msg))
	case alertMsg:
		m.alerts = append(m.alerts, msg)
	case submitMsg:
		if msg.queued && m.busy {
			m.queue = append(m.queue, msg.paths)
			return m, nil
		}
		return m.submit(msg.paths)
	case batchDoneMsg:
		m.busy = false
		if len(m.queue) > 0 {
			next := m.queue[0]
			m.queue = m.queue[1:]
			return m.submit(next)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m desktopModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if len(m.alerts) > 0 {
		switch msg.String() {
		case "enter", "esc", " ":
			close(m.alerts[0].ack)
			m.alerts = m.alerts[1:]
		}
		return m, nil
	}

	if m.browsing {
		return m.handleBrowserKey(msg)
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % focusCount
	case "shift+tab":
		m.focus = (m.focus + focusCount - 1) % focusCount
	case "ctrl+o":
		m.browser = m.openBrowser(browseFiles, "")
		m.browsing = true
	case "ctrl+d":
		m.browser = m.openBrowser(browseDir, m.output)
		m.browsing = true
	case "enter":
		paths := convert.SplitDropped(m.drop)
		m.drop = ""
		return m.submit(paths)
	case "up":
		if m.focus == focusDPI {
			m.dpi = stepDPI(m.dpi, dpiStep)
		}
	case "down":
		if m.focus == focusDPI {
			m.dpi = stepDPI(m.dpi, -dpiStep)
		}
	case "backspace":
		m.setField(dropLastRune(m.field()))
	case "ctrl+u":
		m.setField("")
	default:
		if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
			return m, nil
		}
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		if m.focus == focusDPI {
			text = strings.Map(keepNumeric, text)
		}
		m.setField(m.field() + text)

		// A drag and drop arrives as a bracketed paste.
		if msg.Paste && m.focus == focusDrop {
			paths := convert.SplitDropped(m.drop)
			m.drop = ""
			return m.submit(paths)
		}
	}
	return m, nil
}

func (m desktopModel) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b, res := m.browser.update(msg)
	m.browser = b
	if !res.Done {
		return m, nil
	}
	m.browsing = false
	if res.Canceled || len(res.Paths) == 0 {
		return m, nil
	}
	if b.Mode == browseDir {
		m.output = res.Paths[0]
		return m, nil
	}
	return m.submit(res.Paths)
}

func (m desktopModel) openBrowser(mode browserMode, dir string) fileBrowser {
	b := newFileBrowser(mode, dir)
	if m.height > 0 {
		b.Height = max(5, m.height-8)
	}
	return b
}

// submit starts converting paths in the background. A submission made
// while a batch is running is refused.
func (m desktopModel) submit(paths []string) (tea.Model, tea.Cmd) {
	if len(paths) == 0 {
		return m, nil
	}
	if m.busy {
		m.log = append(m.log, "Busy: wait for the current conversion to finish")
		return m, nil
	}

	m.busy = true
	ctx, d, s := m.ctx, m.desktop, m.surface
	sub := convert.Submission{Paths: paths, OutputDir: m.output, DPI: m.dpi}
	return m, func() tea.Msg {
		return batchDoneMsg{summary: d.OnFilesSubmitted(ctx, s, sub)}
	}
}

func (m desktopModel) field() string {
	switch m.focus {
	case focusOutput:
		return m.output
	case focusDPI:
		return m.dpi
	}
	return m.drop
}

func (m *desktopModel) setField(v string) {
	switch m.focus {
	case focusOutput:
		m.output = v
	case focusDPI:
		m.dpi = v
	default:
		m.drop = v
	}
}

// stepDPI moves the spinner value by delta within [dpiMin, dpiMax]. Text
// that does not parse restarts from the default.
func stepDPI(text string, delta float64) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || v <= 0 {
		v = convert.DefaultDPI
	} else {
		v += delta
	}
	v = min(max(v, dpiMin), dpiMax)
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func keepNumeric(r rune) rune {
	if (r >= '0' && r <= '9') || r == '.' {
		return r
	}
	return -1
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// =============================================================================
// View
// =============================================================================

var (
	fieldLabelStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fieldStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorDim).Padding(0, 1)
	fieldFocusedStyle = fieldStyle.BorderForeground(colorCyan)
	logPaneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	alertStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorRed).Padding(1, 2)
)

func (m desktopModel) View() string {
	if len(m.alerts) > 0 {
		return m.alertView(m.alerts[0])
	}
	if m.browsing {
		return m.browser.view()
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	fieldWidth := max(20, width-18)

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(desktopTitle))
	sb.WriteString("\n")
	sb.WriteString(StyleDim.Render("Paste or drop SVG files into the field below, or press ctrl+o to browse."))
	sb.WriteString("\n\n")

	sb.WriteString(m.fieldView("Files", m.drop, "drop SVG files here", focusDrop, fieldWidth))
	sb.WriteString("\n")
	sb.WriteString(m.fieldView("Output dir", m.output, "next to each SVG", focusOutput, fieldWidth))
	sb.WriteString("\n")
	sb.WriteString(m.fieldView("DPI", m.dpi, "", focusDPI, 10))
	if m.focus == focusDPI {
		sb.WriteString(StyleDim.Render(fmt.Sprintf("  ↑/↓ %g to %g", dpiMin, dpiMax)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(StyleTitle.Render("Conversion log"))
	sb.WriteString("\n")
	sb.WriteString(logPaneStyle.Width(max(20, width-4)).Render(m.logView()))
	sb.WriteString("\n")

	if m.busy {
		status := "Converting..."
		if n := len(m.queue); n > 0 {
			status = fmt.Sprintf("Converting... (%d queued)", n)
		}
		sb.WriteString(StyleHighlight.Render(status))
		sb.WriteString("\n")
	}
	sb.WriteString(StyleDim.Render("tab focus  ⏎ convert  ctrl+o browse files  ctrl+d output dir  esc quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m desktopModel) fieldView(label, value, placeholder string, f desktopFocus, width int) string {
	style := fieldStyle
	text := value
	if m.focus == f {
		style = fieldFocusedStyle
		text += "▏"
	}
	if value == "" && placeholder != "" {
		text = StyleDim.Render(placeholder)
		if m.focus == f {
			text = "▏" + text
		}
	}
	box := style.Width(width).Render(text)
	return lipgloss.JoinHorizontal(lipgloss.Center, fieldLabelStyle.Render(label), box)
}

// logView renders the newest lines that fit the pane.
func (m desktopModel) logView() string {
	rows := 8
	if m.height > 0 {
		rows = max(3, m.height-17)
	}
	lines := m.log
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	if len(lines) == 0 {
		return StyleDim.Render("Nothing converted yet.")
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "Converted "):
			out[i] = StyleSuccess.Render(iconSuccess) + " " + l
		case strings.HasPrefix(l, "Skipping "), strings.HasPrefix(l, "Busy"):
			out[i] = StyleWarning.Render(iconWarning) + " " + l
		default:
			out[i] = StyleDim.Render(iconInfo) + " " + l
		}
	}
	return strings.Join(out, "\n")
}

func (m desktopModel) alertView(a alertMsg) string {
	body := StyleError.Bold(true).Render(a.title) + "\n\n" +
		StyleValue.Render(a.message) + "\n\n" +
		StyleDim.Render("⏎ dismiss")
	box := alertStyle.Render(body)
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
