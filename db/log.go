package db

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const insertLogSQL = `
	INSERT INTO processing_log
		(operation, status, successful_float_ids, failed_float_ids, processing_time_ms, error_details)
	VALUES ($1, $2, $3, $4, $5, $6)`

// LogProcessing appends one audit entry for a pipeline invocation.
// Logging trouble is swallowed: observability must not fail the pipeline.
func (s *Store) LogProcessing(ctx context.Context, operation, status string, successful, failed []int64, elapsed time.Duration, errorDetails map[string]any) bool {
	if s.tx == nil {
		return false
	}

	var details []byte
	if len(errorDetails) > 0 {
		var err error
		details, err = json.Marshal(errorDetails)
		if err != nil {
			slog.Warn("could not encode error details", "error", err)
			details = nil
		}
	}

	if successful == nil {
		successful = []int64{}
	}
	if failed == nil {
		failed = []int64{}
	}

	_, err := s.tx.Exec(ctx, insertLogSQL,
		operation, status, successful, failed, elapsed.Milliseconds(), details)
	if err != nil {
		slog.Error("failed to write processing log", "operation", operation, "error", err)
		return false
	}

	slog.Info("processing log entry created",
		"operation", operation,
		"status", status,
		"successful_count", len(successful),
		"failed_count", len(failed))
	return true
}
