package db

import (
	"context"
	"log/slog"
	"time"

	"atlas/models"
)

// One statement, one round-trip: the CTE writes the metadata row first,
// then the status row, so a consumer never observes one without the
// other. On conflict every column except the id is overwritten.
const upsertFloatSQL = `
	WITH meta_upsert AS (
		INSERT INTO argo_float_metadata (
			float_id, wmo_number, status, float_type, data_centre,
			project_name, operating_institution, pi_name,
			platform_type, platform_maker, float_serial_no,
			launch_date, launch_lat, launch_lon,
			start_mission_date, end_mission_date, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (float_id) DO UPDATE SET
			wmo_number = EXCLUDED.wmo_number,
			status = EXCLUDED.status,
			float_type = EXCLUDED.float_type,
			data_centre = EXCLUDED.data_centre,
			project_name = EXCLUDED.project_name,
			operating_institution = EXCLUDED.operating_institution,
			pi_name = EXCLUDED.pi_name,
			platform_type = EXCLUDED.platform_type,
			platform_maker = EXCLUDED.platform_maker,
			float_serial_no = EXCLUDED.float_serial_no,
			launch_date = EXCLUDED.launch_date,
			launch_lat = EXCLUDED.launch_lat,
			launch_lon = EXCLUDED.launch_lon,
			start_mission_date = EXCLUDED.start_mission_date,
			end_mission_date = EXCLUDED.end_mission_date,
			updated_at = EXCLUDED.updated_at
		RETURNING float_id
	)
	INSERT INTO argo_float_status (
		float_id, location, cycle_number, battery_percent,
		last_update, last_depth, last_temp, last_salinity, updated_at
	)
	VALUES (
		$18, ST_SetSRID(ST_MakePoint($19, $20), 4326),
		$21, $22, $23, $24, $25, $26, $27
	)
	ON CONFLICT (float_id) DO UPDATE SET
		location = EXCLUDED.location,
		cycle_number = EXCLUDED.cycle_number,
		battery_percent = EXCLUDED.battery_percent,
		last_update = EXCLUDED.last_update,
		last_depth = EXCLUDED.last_depth,
		last_temp = EXCLUDED.last_temp,
		last_salinity = EXCLUDED.last_salinity,
		updated_at = EXCLUDED.updated_at
	RETURNING float_id`

// UpsertFloat writes a float's metadata and status atomically inside the
// current transaction. Failure rolls the transaction back, reopens it and
// returns false; it never raises to the caller.
func (s *Store) UpsertFloat(ctx context.Context, meta *models.FloatMetadata, status *models.FloatStatus) bool {
	if s.tx == nil {
		return false
	}

	start := time.Now()
	now := time.Now().UTC()

	_, err := s.tx.Exec(ctx, upsertFloatSQL,
		meta.FloatID, meta.WMONumber, string(meta.Status), string(meta.FloatType), meta.DataCentre,
		meta.ProjectName, meta.OperatingInstitution, meta.PIName,
		meta.PlatformType, meta.PlatformMaker, meta.FloatSerialNo,
		meta.LaunchDate, meta.LaunchLat, meta.LaunchLon,
		meta.StartMissionDate, meta.EndMissionDate, now,
		status.FloatID, status.Longitude, status.Latitude,
		status.CycleNumber, status.BatteryPercent,
		status.LastUpdate, status.LastDepth, status.LastTemp, status.LastSalinity, now,
	)
	if err != nil {
		slog.Error("float upsert failed", "float_id", meta.FloatID, "error", err)
		s.reset(ctx)
		return false
	}

	slog.Debug("float upserted",
		"float_id", meta.FloatID,
		"query_time_ms", time.Since(start).Milliseconds())
	return true
}
