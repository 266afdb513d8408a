package extract

import (
	"time"

	"atlas/models"
)

// Official Argo recency thresholds, in days. A float is active if it
// profiled within 45 days, presumed dead after 18 months of silence.
const (
	activeThresholdDays = 45
	deadThresholdDays   = 540
)

// DetermineStatus derives the operational status of a float. A recorded
// end-of-mission date wins over any recency evidence.
func DetermineStatus(endMissionSet bool, recentProfile *time.Time, now time.Time) models.Status {
	if endMissionSet {
		return models.StatusInactive
	}

	if recentProfile != nil {
		days := int(now.Sub(*recentProfile).Hours() / 24)
		switch {
		case days < activeThresholdDays:
			return models.StatusActive
		case days < deadThresholdDays:
			return models.StatusInactive
		default:
			return models.StatusDead
		}
	}

	return models.StatusUnknown
}
