// Package pipeline composes sync, extraction, conversion and persistence
// into the per-float ingestion state machine. It is the only component
// aware of the difference between single-float and batch runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"atlas/argosync"
	"atlas/extract"
	"atlas/models"
	"atlas/utils"
)

// Operation names recorded in the processing log.
type Operation string

const (
	OpSync         Operation = "SYNC"
	OpSyncAll      Operation = "SYNC_ALL"
	OpWeeklyUpdate Operation = "WEEKLY_UPDATE"
)

// Batch runs commit the enclosing transaction every this many
// processed-or-failed floats.
const commitBatchSize = 10

// Syncer is the download stage.
type Syncer interface {
	FetchFloat(ctx context.Context, floatID string) bool
	FullSync(ctx context.Context) (*argosync.Summary, error)
	WeeklyUpdate(ctx context.Context) (*argosync.Summary, error)
	Downloaded() ([]string, error)
}

// Extractor is the scientific-file parsing stage.
type Extractor interface {
	ProcessFloat(floatID string) (*extract.Result, error)
}

// Converter is the tabular flattening stage. An empty path means there
// was nothing to convert.
type Converter interface {
	ConvertFile(floatID string) (string, error)
}

// Store is the relational persistence contract the pipeline requires.
type Store interface {
	UpsertFloat(ctx context.Context, meta *models.FloatMetadata, status *models.FloatStatus) bool
	LogProcessing(ctx context.Context, operation, status string, successful, failed []int64, elapsed time.Duration, errorDetails map[string]any) bool
	Commit(ctx context.Context) error
}

// Uploader is the blob-storage collaborator.
type Uploader interface {
	Upload(ctx context.Context, floatID, localPath string) bool
}

// Timing breaks a run down by phase.
type Timing struct {
	Download time.Duration
	Parse    time.Duration
	Upload   time.Duration
	Total    time.Duration
}

// RunResult is the outcome surface exposed to the CLI.
type RunResult struct {
	Success        bool
	FloatID        string
	Total          int
	Downloaded     int
	Processed      int
	DownloadFailed int
	ProcessFailed  int
	Timing         Timing
	Err            string
}

// Runner drives the ingestion pipeline for one invocation.
type Runner struct {
	syncer    Syncer
	extractor Extractor
	converter Converter
	store     Store
	uploader  Uploader

	// SkipDownload reuses previously staged files instead of hitting the
	// remote store.
	SkipDownload bool
}

func NewRunner(syncer Syncer, extractor Extractor, converter Converter, store Store, uploader Uploader) *Runner {
	return &Runner{
		syncer:    syncer,
		extractor: extractor,
		converter: converter,
		store:     store,
		uploader:  uploader,
	}
}

// RunSync downloads and processes a single float. The first error aborts
// the run.
func (r *Runner) RunSync(ctx context.Context, floatID string) *RunResult {
	start := time.Now()
	var timing Timing

	if !r.SkipDownload {
		slog.Info("starting single float sync", "float_id", floatID)
		downloadStart := time.Now()
		if !r.syncer.FetchFloat(ctx, floatID) {
			return &RunResult{
				FloatID:        floatID,
				DownloadFailed: 1,
				Err:            fmt.Sprintf("failed to download any files for float %s", floatID),
			}
		}
		timing.Download = time.Since(downloadStart)
	}

	result := r.process(ctx, OpSync, []string{floatID}, 0, 1, start, timing)
	result.FloatID = floatID
	return result
}

// RunSyncAll performs a full DAC sync, then processes every float the
// manifest records as downloaded.
func (r *Runner) RunSyncAll(ctx context.Context) *RunResult {
	return r.runBatch(ctx, OpSyncAll, r.syncer.FullSync)
}

// RunWeeklyUpdate syncs the weekly index and processes the manifest's
// downloaded floats, sharing resumable state with RunSyncAll.
func (r *Runner) RunWeeklyUpdate(ctx context.Context) *RunResult {
	return r.runBatch(ctx, OpWeeklyUpdate, r.syncer.WeeklyUpdate)
}

func (r *Runner) runBatch(ctx context.Context, op Operation, sync func(context.Context) (*argosync.Summary, error)) *RunResult {
	start := time.Now()
	var timing Timing
	var downloadFailed, total int

	if !r.SkipDownload {
		downloadStart := time.Now()
		summary, err := sync(ctx)
		if err != nil {
			return &RunResult{Err: err.Error()}
		}
		downloadFailed = summary.Failed
		total = summary.Total
		timing.Download = time.Since(downloadStart)
	}

	floatIDs, err := r.syncer.Downloaded()
	if err != nil {
		return &RunResult{Err: err.Error()}
	}
	if r.SkipDownload {
		total = len(floatIDs)
	}

	return r.process(ctx, op, floatIDs, downloadFailed, total, start, timing)
}

// process walks each float through parse -> persist -> convert/upload,
// with per-float failure isolation in batch modes and periodic commits.
func (r *Runner) process(ctx context.Context, op Operation, floatIDs []string, downloadFailed, total int, start time.Time, timing Timing) *RunResult {
	if len(floatIDs) == 0 {
		timing.Total = time.Since(start)
		return &RunResult{
			Success:        true,
			DownloadFailed: downloadFailed,
			Timing:         timing,
		}
	}

	batch := op != OpSync

	var processed, processFailed, skippedNoLocation int
	var successfulIDs, failedIDs []int64

	var bar interface{ Add(int) error }
	if batch {
		bar = utils.NewBar(len(floatIDs), "processing floats")
	}

	for _, floatID := range floatIDs {
		parseStart := time.Now()
		result, err := r.extractor.ProcessFloat(floatID)
		timing.Parse += time.Since(parseStart)

		if err == nil {
			if !result.Status.HasPosition() {
				// No usable coordinates: counted as processed, nothing
				// persisted.
				slog.Warn("skipping float persistence, no location data", "float_id", floatID)
				processed++
				skippedNoLocation++
			} else {
				uploadStart := time.Now()
				err = r.persistFloat(ctx, floatID, result)
				timing.Upload += time.Since(uploadStart)
				if err == nil {
					successfulIDs = append(successfulIDs, result.Metadata.FloatID)
					processed++
				}
			}
		}

		if err != nil {
			slog.Error("failed to process float", "float_id", floatID, "error", err)
			if id, convErr := strconv.ParseInt(floatID, 10, 64); convErr == nil {
				failedIDs = append(failedIDs, id)
			}
			processFailed++

			if !batch {
				elapsed := time.Since(start)
				r.store.LogProcessing(ctx, string(op), "FAILED", nil, failedIDs, elapsed,
					map[string]any{"error": err.Error()})
				if commitErr := r.store.Commit(ctx); commitErr != nil {
					slog.Error("final commit failed", "error", commitErr)
				}
				timing.Total = elapsed
				return &RunResult{
					FloatID:       floatID,
					ProcessFailed: 1,
					Timing:        timing,
					Err:           err.Error(),
				}
			}
		}

		if batch {
			if (processed+processFailed)%commitBatchSize == 0 {
				if err := r.store.Commit(ctx); err != nil {
					slog.Error("batch commit failed", "error", err)
				}
			}
			bar.Add(1)
		}
	}

	timing.Total = time.Since(start)
	totalFailed := downloadFailed + processFailed

	status := "SUCCESS"
	if totalFailed > 0 {
		status = "FAILED"
	}

	var details map[string]any
	if totalFailed > 0 || skippedNoLocation > 0 {
		details = map[string]any{
			"download_failed":     downloadFailed,
			"process_failed":      processFailed,
			"skipped_no_location": skippedNoLocation,
		}
	}

	r.store.LogProcessing(ctx, string(op), status, successfulIDs, failedIDs, timing.Total, details)
	if err := r.store.Commit(ctx); err != nil {
		slog.Error("final commit failed", "error", err)
	}

	slog.Info("processing completed",
		"operation", string(op),
		"total", total,
		"processed", processed,
		"download_failed", downloadFailed,
		"process_failed", processFailed,
		"elapsed", utils.Elapsed(timing.Total))

	return &RunResult{
		Success:        processed > 0 || totalFailed == 0,
		Total:          total,
		Downloaded:     len(floatIDs),
		Processed:      processed,
		DownloadFailed: downloadFailed,
		ProcessFailed:  processFailed,
		Timing:         timing,
	}
}

// persistFloat runs the relational upsert, then tries the Parquet
// conversion and blob upload. Conversion or upload trouble is logged and
// skipped; only the upsert can fail the float.
func (r *Runner) persistFloat(ctx context.Context, floatID string, result *extract.Result) error {
	if !r.store.UpsertFloat(ctx, result.Metadata, result.Status) {
		return fmt.Errorf("database upload failed for float %s", floatID)
	}

	parquetPath, err := r.converter.ConvertFile(floatID)
	if err != nil {
		slog.Warn("parquet conversion failed", "float_id", floatID, "error", err)
		return nil
	}
	if parquetPath == "" {
		slog.Debug("no parquet file to upload", "float_id", floatID)
		return nil
	}

	if r.uploader == nil || !r.uploader.Upload(ctx, floatID, parquetPath) {
		slog.Warn("blob upload skipped", "float_id", floatID)
	}
	return nil
}
