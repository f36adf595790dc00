package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"preprocessor/internal/dataset"
	"preprocessor/internal/fileutil"
	"preprocessor/internal/history"
	"preprocessor/internal/imageproc"
	"preprocessor/internal/labels"
	"preprocessor/internal/logging"
	"preprocessor/internal/manifest"
	"preprocessor/internal/services"
	"preprocessor/internal/source"
)

const (
	stageLoad    = "load"
	stageScan    = "scan"
	stageLabel   = "label"
	stagePlan    = "plan"
	stageProcess = "process"
	stageSave    = "save"
)

// Recorder persists run history.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

var _ Recorder = (*history.Store)(nil)

// ProcessFunc writes one processed image.
type ProcessFunc func(srcPath, dstPath string, opts imageproc.Options) (imageproc.Result, error)

// Builder runs dataset builds against a label source.
type Builder struct {
	labels  labels.Source
	history Recorder
	process ProcessFunc
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithHistory records each run in rec. Recording failures are logged, not returned.
func WithHistory(rec Recorder) Option {
	return func(b *Builder) {
		b.history = rec
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// WithProcessor replaces the image writer.
func WithProcessor(fn ProcessFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.process = fn
		}
	}
}

// New constructs a Builder that resolves labels from src.
func New(src labels.Source, opts ...Option) *Builder {
	b := &Builder{
		labels:  src,
		process: imageproc.Process,
		logger:  logging.NewComponentLogger(nil, "pipeline"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes one build: lock the target, load its manifest, scan the
// source, resolve labels, synchronize, write changed images, and save the
// manifest once. The manifest is not saved when the run is cancelled or
// aborts on an image failure, so the previous dataset state stays intact.
func (b *Builder) Run(ctx context.Context, req Request) (summary Summary, err error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}
	if b.labels == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "pipeline", "run", "label source unavailable", nil)
	}

	started := b.now()
	summary = Summary{
		RunID:      uuid.NewString(),
		StartedAt:  started.UTC(),
		DryRun:     req.DryRun,
		SourceDir:  req.SourceDir,
		TargetDir:  req.TargetDir,
		Dimensions: req.Dimensions,
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, b.logger)

	logger.Info("build started",
		logging.String(logging.FieldEventType, "build_start"),
		logging.String("source_dir", req.SourceDir),
		logging.String("target_dir", req.TargetDir),
		logging.String("dimensions", req.Dimensions.String()),
		logging.Bool("dry_run", req.DryRun),
	)

	defer func() {
		finished := b.now()
		summary.Duration = finished.Sub(started)
		b.recordHistory(ctx, logger, summary.historyRun(req, finished.UTC(), err))
		if err != nil {
			logging.ErrorWithContext(logger, "build failed", "build_failure",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, errorHint(err)),
			)
			return
		}
		logger.Info("build completed",
			logging.String(logging.FieldEventType, "build_complete"),
			logging.Int("scanned", summary.Scanned),
			logging.Int("written", summary.Written),
			logging.Int("up_to_date", summary.UpToDate),
			logging.Int("missing_labels", summary.MissingLabels),
			logging.Int("failed", summary.Failed),
			logging.Int("manifest_size", summary.ManifestSize),
			logging.Duration("duration", summary.Duration),
		)
	}()

	lock, err := b.lockTarget(req)
	if err != nil {
		return summary, err
	}
	if lock != nil {
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				logger.Warn("failed to release target lock", logging.Error(releaseErr))
			}
		}()
	}

	existing, err := b.loadManifest(services.WithStage(ctx, stageLoad), req)
	if err != nil {
		return summary, err
	}

	images, err := source.Scan(req.SourceDir, req.Extensions)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(images)
	logging.WithContext(services.WithStage(ctx, stageScan), b.logger).Info("source scanned",
		logging.Int("images", len(images)),
		logging.String("source_dir", req.SourceDir),
	)

	records, err := b.resolveLabels(services.WithStage(ctx, stageLabel), req, images, &summary)
	if err != nil {
		return summary, err
	}

	updated, actions, err := dataset.Synchronize(existing, records, req.Dimensions)
	if err != nil {
		return summary, services.Wrap(services.ErrValidation, "pipeline", "plan", "synchronize manifest", err)
	}
	summary.Actions = len(actions)
	summary.UpToDate = len(records) - len(actions)
	summary.Planned = actions
	logging.WithContext(services.WithStage(ctx, stagePlan), b.logger).Info("write plan ready",
		logging.Int("actions", len(actions)),
		logging.Int("up_to_date", summary.UpToDate),
		logging.Int("manifest_before", len(existing)),
	)

	if req.DryRun {
		summary.ManifestSize = len(updated)
		return summary, nil
	}

	paths := make(map[string]string, len(images))
	for _, img := range images {
		paths[img.Filename] = img.Path
	}
	stale, err := b.applyActions(services.WithStage(ctx, stageProcess), req, actions, paths, existing, updated, &summary)
	if err != nil {
		return summary, err
	}

	saveCtx := services.WithStage(ctx, stageSave)
	if err := manifest.Save(req.TargetDir, updated); err != nil {
		return summary, fmt.Errorf("save manifest: %w", err)
	}
	summary.ManifestSize = len(updated)
	logging.WithContext(saveCtx, b.logger).Info("manifest saved",
		logging.String("path", manifest.Path(req.TargetDir)),
		logging.Int("entries", len(updated)),
	)
	b.removeStale(saveCtx, stale)
	return summary, nil
}

// lockTarget takes the target directory lock. Dry runs against a target
// that does not exist yet skip the lock so they leave no trace on disk.
func (b *Builder) lockTarget(req Request) (*manifest.Lock, error) {
	if req.DryRun {
		if _, err := os.Stat(req.TargetDir); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	lock, err := manifest.Acquire(req.TargetDir)
	if err != nil {
		if errors.Is(err, manifest.ErrLocked) {
			return nil, services.Wrap(services.ErrValidation, "pipeline", "lock", "another build is using this target directory", err)
		}
		return nil, err
	}
	return lock, nil
}

func (b *Builder) loadManifest(ctx context.Context, req Request) (dataset.Manifest, error) {
	logger := logging.WithContext(ctx, b.logger)
	existing, info, err := manifest.Load(req.TargetDir)
	if err != nil {
		return nil, err
	}
	if info.Malformed {
		logging.WarnWithContext(logger, "existing manifest unreadable, starting from an empty manifest", "manifest_malformed",
			logging.String("path", info.Path),
			logging.Error(info.Cause),
			logging.String(logging.FieldImpact, "every labeled image will be reprocessed"),
			logging.String(logging.FieldErrorHint, "inspect or delete the manifest file"),
		)
		return existing, nil
	}
	if info.Exists {
		logger.Info("target directory already exists, updating dataset",
			logging.Int("entries", len(existing)),
		)
	} else {
		logger.Info("creating new dataset", logging.String("target_dir", req.TargetDir))
	}
	return existing, nil
}

func (b *Builder) resolveLabels(ctx context.Context, req Request, images []source.Image, summary *Summary) ([]dataset.SourceRecord, error) {
	logger := logging.WithContext(ctx, b.logger)
	resolution, err := labels.Resolve(ctx, b.labels, req.APIMode, source.IDs(images))
	if err != nil {
		return nil, fmt.Errorf("resolve labels: %w", err)
	}

	records := make([]dataset.SourceRecord, 0, len(images))
	for _, img := range images {
		label, ok := resolution.Label(img.ID)
		if !ok {
			summary.MissingLabels++
			summary.Missing = append(summary.Missing, img.Filename)
			logging.WarnWithContext(logging.WithContext(services.WithFilename(ctx, img.Filename), b.logger),
				"label not known by the label api, skipping image", "label_missing",
				logging.String("image_id", img.ID),
				logging.String(logging.FieldImpact, "image left out of the dataset"),
				logging.String(logging.FieldErrorHint, "add the image id to the label api"),
			)
			continue
		}
		records = append(records, dataset.SourceRecord{Filename: img.Filename, Label: label})
	}
	summary.Labeled = len(records)
	logger.Info("labels resolved",
		logging.Int("labeled", len(records)),
		logging.Int("missing", summary.MissingLabels),
		logging.Int("unknown_ids", len(resolution.Missing)),
		logging.String("mode", req.APIMode),
	)
	return records, nil
}

// applyActions writes every planned image and returns the copies left under
// a previous label. Those are only removed once the manifest is saved, so an
// aborted or cancelled run never deletes a file the kept manifest names.
func (b *Builder) applyActions(ctx context.Context, req Request, actions []dataset.WriteAction, paths map[string]string, existing, updated dataset.Manifest, summary *Summary) ([]string, error) {
	sampler := logging.NewProgressSampler(10)
	opts := req.imageOptions()
	var stale []string
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imgCtx := services.WithFilename(ctx, action.Filename)
		logger := logging.WithContext(imgCtx, b.logger)

		dst := imageproc.OutputPath(req.TargetDir, action.Label, action.Filename)
		if _, err := b.process(paths[action.Filename], dst, opts); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Filename: action.Filename, Error: err.Error()})
			if req.AbortOnError {
				return nil, fmt.Errorf("process %s: %w", action.Filename, err)
			}
			dataset.Revert(updated, existing, action.Filename)
			logging.WarnWithContext(logger, "image processing failed, skipping", "image_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "image left at its previous dataset state"),
				logging.String(logging.FieldErrorHint, "check the source image is a readable image file"),
			)
			continue
		}
		summary.Written++

		if prev := action.Previous; prev != nil {
			old := imageproc.OutputPath(req.TargetDir, prev.Label, prev.Filename)
			if filepath.Clean(old) != filepath.Clean(dst) {
				stale = append(stale, old)
			}
		}

		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("image written",
				logging.String("label", action.Label),
				logging.String("path", dst),
				logging.Bool("relabeled", action.Relabeled()),
			)
		}
		if sampler.ShouldLog(i+1, len(actions)) {
			logging.WithContext(ctx, b.logger).Info("processing images",
				logging.Int("done", i+1),
				logging.Int("total", len(actions)),
			)
		}
	}
	return stale, nil
}

func (b *Builder) removeStale(ctx context.Context, paths []string) {
	logger := logging.WithContext(ctx, b.logger)
	for _, path := range paths {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logging.WarnWithContext(logger, "failed to remove image stored under previous label", "stale_image",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "old copy remains in the previous label directory"),
			)
		}
	}
}

func (b *Builder) recordHistory(ctx context.Context, logger *slog.Logger, run history.Run) {
	if b.history == nil {
		return
	}
	if err := b.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history listing"),
			logging.String(logging.FieldErrorHint, "check the state directory is writable"),
		)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "run interrupted; the previous manifest was kept"
	case errors.Is(err, manifest.ErrLocked):
		return "wait for the other build to finish"
	case errors.Is(err, services.ErrNotFound):
		return "check --source-directory"
	case errors.Is(err, services.ErrTimeout), errors.Is(err, services.ErrExternal):
		return "check the label api url and network connectivity"
	case errors.Is(err, services.ErrConfiguration), errors.Is(err, services.ErrValidation):
		return "check flags and configuration"
	default:
		return "check logs for details"
	}
}
