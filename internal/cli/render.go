package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/eclass/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	extractor  string   // registry name of the extractor
	output     string   // output file (single format) or base path
	formats    []string // output formats: "svg", "dot"
	detailed   bool     // include node IDs and costs in labels
	allClasses bool     // draw the whole e-graph instead of the term
	noCache    bool     // bypass the result cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{extractor: pipeline.DefaultExtractor}

	cmd := &cobra.Command{
		Use:   "render [egraph.json]",
		Short: "Draw the extracted term as SVG or DOT",
		Long: `Draw the extracted term of a serialized e-graph.

By default one box is drawn per class reachable from the roots, labeled with
the operator of its chosen node. With --all every class and node of the
e-graph is drawn and the chosen nodes are highlighted.

Outputs are written next to the input unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if !cmd.Flags().Changed("extractor") && c.config.Extractor != "" {
				opts.extractor = c.config.Extractor
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.extractor, "extractor", "e", opts.extractor, "extractor to run")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and costs")
	cmd.Flags().BoolVar(&opts.allClasses, "all", false, "draw every class and node of the e-graph")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender extracts and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:      input,
		Extractor:  opts.extractor,
		CacheTTL:   c.config.TTL(),
		Formats:    opts.formats,
		Detailed:   opts.detailed,
		AllClasses: opts.allClasses,
		Logger:     c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %s", StyleTitle.Render(input))
	printStats(result.Stats.ClassCount, result.Stats.NodeCount, result.CacheInfo.ExtractHit)
	for _, format := range opts.formats {
		path := outputPath(opts.output, input, format, len(opts.formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath picks the file for one format. A single format honors output
// as given; several formats share output (or the input) as base path.
func outputPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
