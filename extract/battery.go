package extract

import (
	"slices"
	"strings"
	"time"
)

// Assumed nominal cycle lifetimes for the voltage-less fallback.
var longLifePlatforms = []string{"APEX", "NAVIS", "SOLO-II"}

const (
	longLifeCycles = 280
	defaultCycles  = 220
)

// EstimateBatteryPercent estimates remaining battery from voltage or, when
// no reading exists, from cycle count. Chemistry is inferred rather than
// read from the unreliable BATTERY_TYPE field: APEX floats launched in or
// before 2010 are assumed alkaline, everything else lithium primary.
// Returns nil when no estimate is possible.
func EstimateBatteryPercent(platformType string, cycleNumber int32, voltage *float64, launchDate *time.Time) *int32 {
	platform := strings.ToUpper(strings.TrimSpace(platformType))

	alkaline := platform == "APEX" && launchDate != nil && launchDate.Year() <= 2010

	if voltage != nil {
		v := *voltage
		var pct int32
		switch {
		case alkaline:
			// Alkaline cells discharge close to linearly over 10.5-15.5V.
			pct = clampPercent(int32(100 * (v - 10.5) / 5.0))
		case strings.Contains(platform, "DEEP ARVOR"):
			// 28V-class system, halve to the 14V curve.
			pct = lithiumPercent(v / 2)
		default:
			pct = lithiumPercent(v)
		}
		return &pct
	}

	if cycleNumber > 0 {
		typical := int32(defaultCycles)
		if slices.Contains(longLifePlatforms, platform) {
			typical = longLifeCycles
		}
		pct := clampPercent(int32(100 * (1 - float64(cycleNumber)/float64(typical))))
		return &pct
	}

	return nil
}

// lithiumPercent is a piecewise-linear fit of the lithium primary cell
// discharge curve: flat for most of the pack's life, then a sharp drop.
func lithiumPercent(v float64) int32 {
	switch {
	case v >= 14.0:
		return clampPercent(int32(90 + (v-14.0)*12))
	case v >= 13.0:
		return clampPercent(int32(75 + (v-13.0)*15))
	case v >= 12.0:
		return clampPercent(int32(55 + (v-12.0)*20))
	case v >= 11.6:
		return clampPercent(int32(40 + (v-11.6)*50))
	case v >= 11.0:
		return clampPercent(int32(15 + (v-11.0)*50))
	case v >= 10.8:
		return clampPercent(int32(5 + (v-10.8)*50))
	default:
		return 0
	}
}

func clampPercent(p int32) int32 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
