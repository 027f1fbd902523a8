package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2pdf/pkg/convert"
	"github.com/matzehuels/svg2pdf/pkg/errors"
	"github.com/matzehuels/svg2pdf/pkg/watch"
)

// watchOpts holds the flags of the watch command.
type watchOpts struct {
	outputDir string
	dpi       float64
	backend   string
	noCache   bool
}

// watchCommand creates the drop-folder converter.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Convert SVG files as they are saved into a folder",
		Long: `Watch a folder and convert every SVG file written into it.

Bursts of file events are grouped (desktop.debounce in the config file) so
that a file is converted once after the writer is done with it. Without an
argument the folder from desktop.drop_dir is watched. Stop with ctrl+c.`,
		Example: `  svg2pdf watch ~/Desktop/svg-inbox
  svg2pdf watch inbox -o out --dpi 150`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.config.Desktop.DropDir
			if len(args) == 1 {
				dir = args[0]
			}
			if err := errors.ValidatePath(dir); err != nil {
				printNextStep(c.Stderr, "Set a folder with", appName+" watch <dir>")
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "no folder to watch")
			}
			c.applyWatchDefaults(cmd, &opts)
			return c.runWatch(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "write PDFs into this directory instead of next to each SVG")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", convert.DefaultDPI, "resolution used to size the PDF page")
	cmd.Flags().StringVar(&opts.backend, "backend", "canvas", "renderer: canvas (built in), rsvg (needs rsvg-convert)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	_ = cmd.MarkFlagDirname("output-dir")
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)

	return cmd
}

func (c *CLI) applyWatchDefaults(cmd *cobra.Command, opts *watchOpts) {
	if !cmd.Flags().Changed("dpi") {
		opts.dpi = c.config.Convert.DPI
	}
	if !cmd.Flags().Changed("backend") && c.config.Convert.Backend != "" {
		opts.backend = c.config.Convert.Backend
	}
	if !cmd.Flags().Changed("output-dir") {
		opts.outputDir = c.config.Convert.OutputDir
	}
}

// runWatch converts files as they appear in dir until ctx is canceled.
func (c *CLI) runWatch(ctx context.Context, dir string, opts watchOpts) error {
	logger := loggerFromContext(ctx)

	backend, rc, err := c.openBackend(ctx, opts.backend, opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	debounce, err := c.config.DebounceInterval()
	if err != nil {
		return err
	}

	d := &convert.Desktop{Backend: backend, Logger: logger}
	surface := &printSurface{stdout: c.Stdout, stderr: c.Stderr}
	sub := convert.Submission{
		OutputDir: opts.outputDir,
		DPI:       strconv.FormatFloat(opts.dpi, 'f', -1, 64),
	}

	w, err := watch.New(dir, func(paths []string) {
		s := sub
		s.Paths = paths
		d.OnFilesSubmitted(ctx, surface, s)
	}, watch.WithDebounce(debounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}

	printInfo(c.Stderr, "Watching %s", StyleHighlight.Render(w.Dir()))
	output := opts.outputDir
	if output == "" {
		output = "next to each SVG"
	}
	printKeyValue(c.Stderr, "Output", output)
	printKeyValue(c.Stderr, "DPI", sub.DPI)
	printKeyValue(c.Stderr, "Backend", backend.Name())
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()

	printInfo(c.Stderr, "Stopped watching %s", w.Dir())
	return nil
}

// printSurface reports desktop events as terminal lines.
type printSurface struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (s *printSurface) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.HasPrefix(message, "Skipping ") {
		printWarning(s.stderr, "%s", message)
		return
	}
	fmt.Fprintln(s.stdout, message)
}

func (s *printSurface) Alert(title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	printError(s.stderr, "%s", title)
	printDetail(s.stderr, "%s", message)
}

var _ convert.Surface = (*printSurface)(nil)
