package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2pdf/pkg/cache"
	"github.com/matzehuels/svg2pdf/pkg/convert"
	"github.com/matzehuels/svg2pdf/pkg/errors"
)

// convertOpts holds the command-line flags of the root command.
type convertOpts struct {
	output    string  // output file (single input) or directory
	outputDir bool    // output came from convert.output_dir and is always a directory
	dpi       float64 // render resolution
	backend   string  // renderer name
	keepGoing bool    // treat missing inputs as per-file failures
	noCache   bool    // bypass the render cache
}

// convertCommand creates the root command that converts its arguments.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   appName + " [flags] <input.svg>...",
		Short: "Convert SVG files to PDF",
		Long: `svg2pdf converts SVG files to PDF documents.

With a single input the PDF is written next to it, or to --output.
With several inputs --output must name a directory; it is created if needed.
Files without an .svg extension are skipped. A missing input stops the run
unless --keep-going is set.`,
		Example: `  svg2pdf logo.svg
  svg2pdf --dpi 192 -o build/ icons/*.svg
  svg2pdf --backend rsvg diagram.svg -o diagram.pdf`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"svg"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfigDefaults(cmd, &opts)
			return c.runConvert(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input) or directory (multiple inputs)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", convert.DefaultDPI, "resolution used to size the PDF page")
	cmd.Flags().StringVar(&opts.backend, "backend", "canvas", "renderer: canvas (built in), rsvg (needs rsvg-convert)")
	cmd.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "report missing inputs and continue instead of aborting")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)

	return cmd
}

func completeBackends(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return convert.Backends(), cobra.ShellCompDirectiveNoFileComp
}

// applyConfigDefaults fills flags the user did not set from the config file.
func (c *CLI) applyConfigDefaults(cmd *cobra.Command, opts *convertOpts) {
	cfg := c.config.Convert
	if !cmd.Flags().Changed("dpi") {
		opts.dpi = cfg.DPI
	}
	if !cmd.Flags().Changed("backend") && cfg.Backend != "" {
		opts.backend = cfg.Backend
	}
	if !cmd.Flags().Changed("output") && cfg.OutputDir != "" {
		opts.output = cfg.OutputDir
		opts.outputDir = true
	}
}

// runConvert runs the batch driver over inputs.
func (c *CLI) runConvert(ctx context.Context, inputs []string, opts convertOpts) error {
	logger := loggerFromContext(ctx)

	backend, rc, err := c.openBackend(ctx, opts.backend, opts.noCache)
	if err != nil {
		return err
	}
	defer rc.Close()

	if opts.outputDir {
		if err := os.MkdirAll(opts.output, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOutput, err, "create output directory %s", opts.output)
		}
	}

	batch := &convert.Batch{
		Backend:   withSpinner(backend, c.Stderr, c.verbose),
		Reporter:  &reporter{stdout: c.Stdout, stderr: c.Stderr},
		Logger:    logger,
		KeepGoing: opts.keepGoing,
	}

	prog := newProgress(logger)
	res, err := batch.Run(ctx, convert.Request{Inputs: inputs, Output: opts.output, DPI: opts.dpi})
	if res != nil && len(inputs) > 1 {
		prog.done(fmt.Sprintf("Converted %d of %d files", res.Count(convert.StatusConverted), len(inputs)))
	}
	return err
}

// openBackend resolves a backend by name, checks that it can run and wraps
// it with the render cache. The caller closes the returned cache.
func (c *CLI) openBackend(ctx context.Context, name string, noCache bool) (convert.Backend, cache.Cache, error) {
	backend, err := convert.NewBackend(name)
	if err != nil {
		return nil, nil, err
	}
	if err := backend.Available(); err != nil {
		return nil, nil, err
	}

	ttl, err := c.config.CacheTTL()
	if err != nil {
		return nil, nil, err
	}
	rc := c.newCache(ctx, noCache)
	return convert.Cached(backend, rc, ttl, c.Logger), rc, nil
}

// =============================================================================
// Reporter
// =============================================================================

// reporter prints batch outcomes: conversions on stdout, everything else on
// stderr.
type reporter struct {
	stdout io.Writer
	stderr io.Writer
}

func (r *reporter) Converted(input, output string) {
	fmt.Fprintf(r.stdout, "Converted %s -> %s\n", input, output)
}

func (r *reporter) Skipped(input string) {
	printWarning(r.stderr, "Skipping non-SVG file: %s", input)
}

func (r *reporter) Missing(input string) {
	printError(r.stderr, "Input file not found: %s", input)
}

func (r *reporter) Failed(input, _ string, err error) {
	printError(r.stderr, "Failed to convert %s", input)
	printDetail(r.stderr, "%s", errors.UserMessage(err))
}

var _ convert.Reporter = (*reporter)(nil)
