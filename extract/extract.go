// Package extract parses staged Argo NetCDF files into the metadata and
// status records the persistence layer consumes. The float-type
// classifier and battery estimator live here; both degrade to unknown or
// absent outcomes instead of failing a float outright.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"atlas/config"
	"atlas/models"
	"atlas/ncio"
)

var (
	ErrNoMetadata = errors.New("no metadata available")
	ErrNoStatus   = errors.New("no profile status available")
)

// Result is one float's extraction outcome: both records are always
// present on success.
type Result struct {
	Metadata *models.FloatMetadata
	Status   *models.FloatStatus
}

// Extractor reads per-float staged files.
type Extractor struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// ProcessFloat extracts metadata and latest status for a staged float.
// Order matters: the profile file yields the recent-profile time the
// status rule needs, the metadata then informs the battery estimate.
func (e *Extractor) ProcessFloat(floatID string) (*Result, error) {
	dir := filepath.Join(e.cfg.StagePath, floatID)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("staging directory for float %s: %w", floatID, err)
	}

	numericID, _ := strconv.ParseInt(floatID, 10, 64)

	status := e.profileStatus(dir, floatID, numericID)

	meta, err := e.metadata(dir, floatID, status)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, ErrNoStatus
	}

	// The metadata's platform number is authoritative for the id.
	status.FloatID = meta.FloatID

	e.estimateBattery(dir, floatID, meta, status)

	return &Result{Metadata: meta, Status: status}, nil
}

func (e *Extractor) profileStatus(dir, floatID string, numericID int64) *models.FloatStatus {
	path := filepath.Join(dir, floatID+"_prof.nc")
	ds, err := ncio.Open(path)
	if err != nil {
		slog.Warn("profile file not readable", "float_id", floatID, "error", err)
		return nil
	}
	defer ds.Close()

	status := ProfileStatus(ds, numericID)
	if status != nil {
		slog.Debug("profile status extracted", "float_id", floatID, "cycle", status.CycleNumber)
	}
	return status
}

func (e *Extractor) metadata(dir, floatID string, status *models.FloatStatus) (*models.FloatMetadata, error) {
	path := filepath.Join(dir, floatID+"_meta.nc")
	ds, err := ncio.Open(path)
	if err != nil {
		slog.Error("metadata file not readable", "float_id", floatID, "error", err)
		return nil, ErrNoMetadata
	}
	defer ds.Close()

	var recent *time.Time
	if status != nil {
		recent = status.LastUpdate
	}

	meta, err := ParseMetadata(ds, recent)
	if err != nil {
		slog.Error("metadata extraction failed", "float_id", floatID, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrNoMetadata, err)
	}

	slog.Debug("metadata extracted",
		"float_id", floatID,
		"status", meta.Status,
		"float_type", meta.FloatType)
	return meta, nil
}

// estimateBattery feeds the latest technical-file voltage sample, when one
// exists, into the battery model. Failure here never fails the float.
func (e *Extractor) estimateBattery(dir, floatID string, meta *models.FloatMetadata, status *models.FloatStatus) {
	var voltage *float64
	techPath := filepath.Join(dir, floatID+"_tech.nc")
	if ds, err := ncio.Open(techPath); err == nil {
		voltage = LatestBatteryVoltage(ds)
		ds.Close()
	}

	platform := "UNKNOWN"
	if meta.PlatformType != nil {
		platform = *meta.PlatformType
	}
	var cycle int32
	if status.CycleNumber != nil {
		cycle = *status.CycleNumber
	}

	status.BatteryPercent = EstimateBatteryPercent(platform, cycle, voltage, meta.LaunchDate)
	if status.BatteryPercent != nil {
		slog.Debug("battery estimated", "float_id", floatID, "battery_percent", *status.BatteryPercent)
	}
}
