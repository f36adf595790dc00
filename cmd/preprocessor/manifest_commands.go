package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"preprocessor/internal/dataset"
	"preprocessor/internal/imageproc"
	"preprocessor/internal/manifest"
	"preprocessor/internal/services"
	"preprocessor/internal/textutil"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect a dataset manifest",
	}
	manifestCmd.AddCommand(newManifestListCommand(ctx))
	manifestCmd.AddCommand(newManifestStatsCommand(ctx))
	return manifestCmd
}

// loadTargetManifest resolves the target directory from flags or config and
// loads its manifest.
func loadTargetManifest(ctx *commandContext, cmd *cobra.Command, paths *pathFlags) (string, dataset.Manifest, manifest.LoadInfo, error) {
	cfg, err := ctx.configCopy()
	if err != nil {
		return "", nil, manifest.LoadInfo{}, err
	}
	if err := paths.apply(cmd, cfg); err != nil {
		return "", nil, manifest.LoadInfo{}, services.Wrap(services.ErrValidation, "cli", "manifest", "", err)
	}
	target := cfg.Paths.TargetDir
	if strings.TrimSpace(target) == "" {
		return "", nil, manifest.LoadInfo{}, services.Wrap(services.ErrValidation, "cli", "manifest", "--target-directory is required (or set paths.target_dir)", nil)
	}
	m, info, err := manifest.Load(target)
	if err != nil {
		return "", nil, manifest.LoadInfo{}, err
	}
	return target, m, info, nil
}

func describeMissingManifest(info manifest.LoadInfo) string {
	if info.Malformed {
		return fmt.Sprintf("Manifest at %s is unreadable (%v); the next build will rebuild it", info.Path, info.Cause)
	}
	return fmt.Sprintf("No manifest at %s; run `preprocessor build` first", info.Path)
}

func newManifestListCommand(ctx *commandContext) *cobra.Command {
	var paths pathFlags
	var labelFilter string
	var verify bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dataset entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, m, info, err := loadTargetManifest(ctx, cmd, &paths)
			if err != nil {
				return err
			}

			entries := m.Entries()
			if filter := textutil.NormalizeLabel(labelFilter); filter != "" {
				kept := entries[:0]
				for _, entry := range entries {
					if entry.Label == filter {
						kept = append(kept, entry)
					}
				}
				entries = kept
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if !info.Exists || info.Malformed {
				fmt.Fprintln(out, describeMissingManifest(info))
				return nil
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No matching entries")
				return nil
			}

			headers := []string{"File", "Label", "Size"}
			if verify {
				headers = append(headers, "On Disk")
			}
			rows := make([][]string, 0, len(entries))
			missing := 0
			for _, entry := range entries {
				row := []string{entry.Filename, entry.Label, entry.Dimensions().String()}
				if verify {
					_, statErr := os.Stat(imageproc.OutputPath(target, entry.Label, entry.Filename))
					present := statErr == nil
					if !present {
						missing++
					}
					row = append(row, yesNo(present))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			if verify && missing > 0 {
				fmt.Fprintf(out, "%d entries have no image on disk; delete %s to force a full rebuild\n", missing, info.Path)
			}
			return nil
		},
	}
	paths.register(cmd)
	cmd.Flags().StringVar(&labelFilter, "label", "", "Only list entries with this label")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check that each entry's image exists on disk")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output entries as JSON")
	return cmd
}

type labelCount struct {
	Label  string `json:"label"`
	Images int    `json:"images"`
}

type manifestStats struct {
	Path       string               `json:"path"`
	Exists     bool                 `json:"exists"`
	Malformed  bool                 `json:"malformed,omitempty"`
	UpdatedAt  string               `json:"updated_at,omitempty"`
	Entries    int                  `json:"entries"`
	Labels     []labelCount         `json:"labels"`
	Dimensions []dataset.Dimensions `json:"dimensions"`
}

func collectManifestStats(m dataset.Manifest, info manifest.LoadInfo) manifestStats {
	stats := manifestStats{
		Path:      info.Path,
		Exists:    info.Exists,
		Malformed: info.Malformed,
		Entries:   len(m),
		Labels:    []labelCount{},
	}
	if !info.UpdatedAt.IsZero() {
		stats.UpdatedAt = info.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	for label, count := range m.Labels() {
		stats.Labels = append(stats.Labels, labelCount{Label: label, Images: count})
	}
	sort.Slice(stats.Labels, func(i, j int) bool {
		if stats.Labels[i].Images != stats.Labels[j].Images {
			return stats.Labels[i].Images > stats.Labels[j].Images
		}
		return stats.Labels[i].Label < stats.Labels[j].Label
	})

	seen := make(map[dataset.Dimensions]struct{})
	for _, entry := range m {
		seen[entry.Dimensions()] = struct{}{}
	}
	stats.Dimensions = make([]dataset.Dimensions, 0, len(seen))
	for dims := range seen {
		stats.Dimensions = append(stats.Dimensions, dims)
	}
	sort.Slice(stats.Dimensions, func(i, j int) bool {
		return stats.Dimensions[i].String() < stats.Dimensions[j].String()
	})
	return stats
}

func newManifestStatsCommand(ctx *commandContext) *cobra.Command {
	var paths pathFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize images per label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, m, info, err := loadTargetManifest(ctx, cmd, &paths)
			if err != nil {
				return err
			}
			stats := collectManifestStats(m, info)
			if jsonOutput {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			if !info.Exists || info.Malformed {
				fmt.Fprintln(out, describeMissingManifest(info))
				return nil
			}
			fmt.Fprintln(out, renderValueLine("Manifest", stats.Path))
			if !info.UpdatedAt.IsZero() {
				fmt.Fprintln(out, renderValueLine("Updated", humanize.Time(info.UpdatedAt)))
			}
			fmt.Fprintln(out, renderValueLine("Entries", humanize.Comma(int64(stats.Entries))))
			dims := make([]string, 0, len(stats.Dimensions))
			for _, d := range stats.Dimensions {
				dims = append(dims, d.String())
			}
			fmt.Fprintln(out, renderValueLine("Dimensions", strings.Join(dims, ", ")))

			rows := make([][]string, 0, len(stats.Labels))
			for _, lc := range stats.Labels {
				rows = append(rows, []string{textutil.TitleCase(lc.Label), strconv.Itoa(lc.Images)})
			}
			fmt.Fprintln(out, renderTable([]string{"Label", "Images"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	paths.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output statistics as JSON")
	return cmd
}

