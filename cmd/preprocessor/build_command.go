package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"preprocessor/internal/config"
	"preprocessor/internal/history"
	"preprocessor/internal/labels"
	"preprocessor/internal/logging"
	"preprocessor/internal/pipeline"
	"preprocessor/internal/preflight"
	"preprocessor/internal/services"
)

type pathFlags struct {
	targetDir string
	sourceDir string
}

func (p *pathFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.targetDir, "target-directory", "t", "", "Dataset directory to create or update")
	cmd.Flags().StringVarP(&p.sourceDir, "source-directory", "s", "", "Directory containing the raw images (default ./raw_images)")
}

// apply copies explicitly set path flags onto cfg.
func (p *pathFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("target-directory") {
		expanded, err := config.ExpandPath(strings.TrimSpace(p.targetDir))
		if err != nil {
			return fmt.Errorf("resolve --target-directory: %w", err)
		}
		cfg.Paths.TargetDir = expanded
	}
	if cmd.Flags().Changed("source-directory") {
		expanded, err := config.ExpandPath(strings.TrimSpace(p.sourceDir))
		if err != nil {
			return fmt.Errorf("resolve --source-directory: %w", err)
		}
		cfg.Paths.SourceDir = expanded
	}
	return nil
}

type buildOptions struct {
	paths         pathFlags
	apiURL        string
	apiMode       string
	width         int
	height        int
	dryRun        bool
	abortOnError  bool
	skipPreflight bool
	jsonOutput    bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resize, label, and store raw images in the target dataset",
		Long: `Scan the source directory, fetch each image's label from the label API,
and write resized copies into <target>/<label>/. Images whose label and
dimensions already match the dataset manifest are left alone, so repeated
builds only process what changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "cli")

			if !opts.skipPreflight {
				if err := runBuildPreflight(cfg); err != nil {
					return err
				}
			}

			client, err := labels.New(cfg.API.URL,
				labels.WithTimeout(cfg.APITimeout()),
				labels.WithMaxRetries(cfg.API.MaxRetries),
				labels.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			req, err := pipeline.RequestFromConfig(cfg)
			if err != nil {
				return err
			}
			req.DryRun = opts.dryRun

			builderOpts := []pipeline.Option{pipeline.WithLogger(logger)}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in `preprocessor history`"),
					logging.String(logging.FieldErrorHint, "check the state directory is writable"),
				)
			} else {
				defer store.Close()
				builderOpts = append(builderOpts, pipeline.WithHistory(store))
			}

			summary, err := pipeline.New(client, builderOpts...).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, line := range summaryLines(summary, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d image(s) could not be processed; they were left at their previous dataset state", summary.Failed)
			}
			return nil
		},
	}

	opts.paths.register(cmd)
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "Label API root URL")
	cmd.Flags().StringVar(&opts.apiMode, "api-mode", "", "Label lookup mode: bulk or per_image")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Output image width in pixels (default 512)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Output image height in pixels (default 512)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Plan the build without writing images or the manifest")
	cmd.Flags().BoolVar(&opts.abortOnError, "abort-on-error", false, "Stop at the first image that cannot be processed")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Skip directory and free space checks")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

// apply layers explicitly set flags over the loaded configuration and
// validates the result.
func (o *buildOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if err := o.paths.apply(cmd, cfg); err != nil {
		return services.Wrap(services.ErrValidation, "cli", "build", "", err)
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.URL = strings.TrimRight(strings.TrimSpace(o.apiURL), "/")
	}
	if flags.Changed("api-mode") {
		cfg.API.Mode = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(o.apiMode)), "-", "_")
	}
	if flags.Changed("width") {
		cfg.Image.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Image.Height = o.height
	}
	if flags.Changed("abort-on-error") {
		cfg.Run.AbortOnError = o.abortOnError
	}

	if strings.TrimSpace(cfg.Paths.TargetDir) == "" {
		return services.Wrap(services.ErrValidation, "cli", "build", "--target-directory is required (or set paths.target_dir)", nil)
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "cli", "build", "", err)
	}
	return nil
}

// runBuildPreflight runs the local checks a build depends on. The label API
// is not probed here; the build reports API failures itself.
func runBuildPreflight(cfg *config.Config) error {
	results := []preflight.Result{
		preflight.CheckSourceDirectory("Source directory", cfg.Paths.SourceDir),
		preflight.CheckWritableDirectory("Target directory", cfg.Paths.TargetDir),
		preflight.CheckFreeSpace("Free space", cfg.Paths.TargetDir, uint64(cfg.Preflight.MinFreeMiB)),
	}
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrValidation, "cli", "preflight", strings.Join(parts, "; "), nil)
}
