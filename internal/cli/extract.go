package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/eclass/pkg/extract"
	"github.com/matzehuels/eclass/pkg/pipeline"
)

// listExtractorsName is accepted in place of an extractor name and prints the
// registry instead of extracting.
const listExtractorsName = "print"

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	extractor         string // registry name of the extractor
	out               string // report file path
	noCache           bool   // bypass the result cache
	refresh           bool   // recompute and overwrite the cached result
	failOnUnreachable bool   // treat roots without a finite term as errors
	metrics           string // Prometheus textfile to write after the run
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	opts := extractOpts{
		extractor: pipeline.DefaultExtractor,
		out:       defaultOut,
	}

	cmd := &cobra.Command{
		Use:   "extract [egraph.json]",
		Short: "Extract a minimum-cost term and write a cost report",
		Long: `Extract a minimum-cost term from a serialized e-graph.

The input uses the egraph-serialize JSON format. The selected extractor picks
one node per class; the tree and DAG cost of the root classes and the
extraction time are written as JSON to --out.

With --metrics, load, extraction and cache counters are written in the
Prometheus text format for node_exporter's textfile collector.

Results are cached, so re-running the same graph with the same extractor
returns the stored selection and its original timing.

Use --extractor print to list the available extractors.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.extractor == listExtractorsName {
				return nil
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			if opts.extractor == listExtractorsName {
				return printExtractors(cmd, extract.DefaultRegistry())
			}
			return c.withMetrics(opts.metrics, func() error {
				return c.runExtract(cmd.Context(), args[0], opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.extractor, "extractor", "e", opts.extractor, "extractor to run (\"print\" lists them)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "report output file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results and recompute")
	cmd.Flags().BoolVar(&opts.failOnUnreachable, "fail-on-unreachable", false, "fail when a root class has no finite term")
	cmd.Flags().StringVar(&opts.metrics, "metrics", "", "write Prometheus metrics to this textfile")

	return cmd
}

// applyConfig fills every flag the user did not set from the config file.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *extractOpts) {
	flags := cmd.Flags()
	if !flags.Changed("extractor") && c.config.Extractor != "" {
		opts.extractor = c.config.Extractor
	}
	if flags.Lookup("out") != nil && !flags.Changed("out") && c.config.Out != "" {
		opts.out = c.config.Out
	}
	if !flags.Changed("fail-on-unreachable") && c.config.FailOnUnreachable {
		opts.failOnUnreachable = true
	}
	if !flags.Changed("metrics") && c.config.MetricsFile != "" {
		opts.metrics = c.config.MetricsFile
	}
}

// runExtract runs the pipeline and writes the report.
func (c *CLI) runExtract(ctx context.Context, input string, opts extractOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Extracting with %s...", opts.extractor))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:             input,
		Extractor:         opts.extractor,
		FailOnUnreachable: opts.failOnUnreachable,
		Refresh:           opts.refresh,
		CacheTTL:          c.config.TTL(),
		Logger:            c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.Stop()

	prog := newProgress(c.Logger)
	if err := result.Report.WriteFile(opts.out); err != nil {
		return err
	}
	prog.done("Wrote " + opts.out)

	rep := result.Report
	printSuccess("Extracted %s", StyleTitle.Render(input))
	printStats(result.Stats.ClassCount, result.Stats.NodeCount, result.CacheInfo.ExtractHit)
	printKeyValue("extractor", rep.Extractor)
	printKeyValue("tree cost", StyleNumber.Render(rep.Tree.String()))
	printKeyValue("dag cost", StyleNumber.Render(rep.Dag.String()))
	printKeyValue("time", fmt.Sprintf("%dµs", rep.Micros))
	for _, root := range result.Unreachable {
		printWarning("root class %s has no finite term", root)
	}
	printFile(opts.out)
	printNextStep("Draw it", fmt.Sprintf("%s render %s -e %s", appName, input, rep.Extractor))
	return nil
}

// extractorsCommand creates the extractors command.
func (c *CLI) extractorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extractors",
		Short: "List the available extractors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printExtractors(cmd, extract.DefaultRegistry())
		},
	}
}

// printExtractors writes one registered name per line to the command output.
func printExtractors(cmd *cobra.Command, reg *extract.Registry) error {
	for _, name := range reg.Names() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
			return err
		}
	}
	return nil
}
