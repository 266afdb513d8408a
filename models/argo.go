package models

import "time"

// Status is the operational state of a float, derived from the metadata
// file and the recency of its last profile.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusDead     Status = "DEAD"
	StatusUnknown  Status = "UNKNOWN"
)

// FloatType is the sensor-suite classification of a float.
type FloatType string

const (
	TypeCore           FloatType = "core"
	TypeOxygen         FloatType = "oxygen"
	TypeBiogeochemical FloatType = "biogeochemical"
	TypeDeep           FloatType = "deep"
	TypeUnknown        FloatType = "unknown"
)

// FloatMetadata mirrors the argo_float_metadata table. FloatID, WMONumber
// and DataCentre are always present; everything else is best effort.
type FloatMetadata struct {
	FloatID   int64
	WMONumber string

	Status    Status
	FloatType FloatType

	DataCentre           string
	ProjectName          *string
	OperatingInstitution *string
	PIName               *string

	PlatformType  *string
	PlatformMaker *string
	FloatSerialNo *string

	LaunchDate       *time.Time
	LaunchLat        *float64
	LaunchLon        *float64
	StartMissionDate *time.Time
	EndMissionDate   *time.Time
}

// FloatStatus mirrors the argo_float_status table and always describes the
// most recent profile of a float.
type FloatStatus struct {
	FloatID        int64
	Latitude       *float64
	Longitude      *float64
	CycleNumber    *int32
	BatteryPercent *int32
	LastUpdate     *time.Time
	LastDepth      *float64
	LastTemp       *float64
	LastSalinity   *float64
}

// HasPosition reports whether the float carries usable coordinates.
// Floats without a position are excluded from persistence.
func (s *FloatStatus) HasPosition() bool {
	return s != nil && s.Latitude != nil && s.Longitude != nil
}
