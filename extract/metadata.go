package extract

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"atlas/models"
	"atlas/ncio"
)

var ErrMissingField = errors.New("required metadata field missing")

// ParseMetadata reads a float's metadata file into a validated
// FloatMetadata record. The recent profile time, when known, feeds the
// status determination. Structural trouble surfaces as an error the
// caller treats as a per-float failure.
func ParseMetadata(ds ncio.Dataset, recentProfile *time.Time) (*models.FloatMetadata, error) {
	wmo, _ := ncio.String(ds, "PLATFORM_NUMBER")
	if wmo == "" {
		return nil, fmt.Errorf("%w: PLATFORM_NUMBER", ErrMissingField)
	}
	floatID, err := strconv.ParseInt(wmo, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("platform number %q is not numeric: %w", wmo, err)
	}

	dataCentre, _ := ncio.String(ds, "DATA_CENTRE")
	if dataCentre == "" {
		return nil, fmt.Errorf("%w: DATA_CENTRE", ErrMissingField)
	}

	// A non-blank END_MISSION_DATE means the mission is over, whether or
	// not the value parses as a date.
	endMissionRaw, _ := ncio.String(ds, "END_MISSION_DATE")

	meta := &models.FloatMetadata{
		FloatID:              floatID,
		WMONumber:            wmo,
		DataCentre:           dataCentre,
		ProjectName:          optString(ds, "PROJECT_NAME"),
		OperatingInstitution: optString(ds, "OPERATING_INSTITUTION"),
		PIName:               optString(ds, "PI_NAME"),
		PlatformType:         optString(ds, "PLATFORM_TYPE"),
		PlatformMaker:        optString(ds, "PLATFORM_MAKER"),
		FloatSerialNo:        optString(ds, "FLOAT_SERIAL_NO"),
		LaunchDate:           parseDateVar(ds, "LAUNCH_DATE"),
		StartMissionDate:     parseDateVar(ds, "START_DATE"),
		EndMissionDate:       parseDateVar(ds, "END_MISSION_DATE"),
		LaunchLat:            optFloat(ds, "LAUNCH_LATITUDE"),
		LaunchLon:            optFloat(ds, "LAUNCH_LONGITUDE"),
		FloatType:            classifyDataset(ds),
		Status:               DetermineStatus(endMissionRaw != "", recentProfile, time.Now().UTC()),
	}

	return meta, nil
}

func optString(ds ncio.Dataset, name string) *string {
	s, ok := ncio.String(ds, name)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func optFloat(ds ncio.Dataset, name string) *float64 {
	f, ok := ncio.Float64(ds, name)
	if !ok {
		return nil
	}
	return &f
}

// parseDateVar decodes the fixed-width Argo date strings, either
// YYYYMMDDHHMMSS or bare YYYYMMDD. Anything else is treated as absent.
func parseDateVar(ds ncio.Dataset, name string) *time.Time {
	s, _ := ncio.String(ds, name)
	if s == "" {
		return nil
	}

	if len(s) >= 14 {
		if t, err := time.Parse("20060102150405", s[:14]); err == nil {
			return &t
		}
	}
	if len(s) >= 8 {
		if t, err := time.Parse("20060102", s[:8]); err == nil {
			return &t
		}
	}
	return nil
}
