package extract

import (
	"strconv"
	"strings"

	"atlas/models"
	"atlas/ncio"
)

// Technical-parameter names that carry a battery voltage sample. The
// naming varies by platform firmware.
var batteryVoltageKeywords = []string{
	"BatteryParkNoLoad",
	"BatteryInitialAtProfileDepth",
	"VOLTAGE_Battery",
	"Battery voltage",
}

// Plausibility window for a pack voltage, wide enough for 28V Deep Arvor
// systems.
const (
	minPlausibleVoltage = 5.0
	maxPlausibleVoltage = 35.0
)

// ProfileStatus extracts the latest-profile summary from a profile file:
// position, cycle, timestamp and the last valid sensor readings. Returns
// nil when the file holds no profiles.
func ProfileStatus(ds ncio.Dataset, floatID int64) *models.FloatStatus {
	lats, _ := ncio.Float64s(ds, "LATITUDE")
	lons, _ := ncio.Float64s(ds, "LONGITUDE")
	cycles, _ := ncio.Float64s(ds, "CYCLE_NUMBER")
	julds, _ := ncio.Float64s(ds, "JULD")

	nProf := max(len(lats), len(lons), len(cycles), len(julds))
	if nProf == 0 {
		return nil
	}
	last := nProf - 1

	status := &models.FloatStatus{FloatID: floatID}

	if last < len(lats) && ncio.Valid(lats[last]) {
		status.Latitude = &lats[last]
	}
	if last < len(lons) && ncio.Valid(lons[last]) {
		status.Longitude = &lons[last]
	}
	if last < len(cycles) && ncio.Valid(cycles[last]) {
		cycle := int32(cycles[last])
		status.CycleNumber = &cycle
	}
	if last < len(julds) {
		if t, ok := ncio.TimeFromJulianDay(julds[last]); ok {
			status.LastUpdate = &t
		}
	}

	// Pressure reports the deepest valid level; temperature and salinity
	// the last valid reading of the ascent.
	if v, ok := maxValid(lastRow(ds, "PRES", last)); ok {
		status.LastDepth = &v
	}
	if v, ok := lastValid(lastRow(ds, "TEMP", last)); ok {
		status.LastTemp = &v
	}
	if v, ok := lastValid(lastRow(ds, "PSAL", last)); ok {
		status.LastSalinity = &v
	}

	return status
}

// LatestBatteryVoltage scans a technical file for the most recent (by
// cycle) battery voltage sample matching a known parameter name.
func LatestBatteryVoltage(ds ncio.Dataset) *float64 {
	names, ok := ncio.StringRows(ds, "TECHNICAL_PARAMETER_NAME")
	if !ok {
		return nil
	}
	values, ok := ncio.StringRows(ds, "TECHNICAL_PARAMETER_VALUE")
	if !ok {
		return nil
	}
	cycles, _ := ncio.Float64s(ds, "CYCLE_NUMBER")

	var latest *float64
	latestCycle := -1
	for i, rawName := range names {
		if i >= len(values) {
			break
		}
		name := strings.TrimSpace(rawName)
		if !matchesBatteryKeyword(name) {
			continue
		}

		voltage, err := strconv.ParseFloat(strings.TrimSpace(values[i]), 64)
		if err != nil || voltage < minPlausibleVoltage || voltage > maxPlausibleVoltage {
			continue
		}

		cycle := 0
		if i < len(cycles) {
			cycle = int(cycles[i])
		}
		if cycle >= latestCycle {
			v := voltage
			latest = &v
			latestCycle = cycle
		}
	}
	return latest
}

func matchesBatteryKeyword(name string) bool {
	for _, kw := range batteryVoltageKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func lastRow(ds ncio.Dataset, name string, last int) []float64 {
	grid, ok := ncio.Grid(ds, name)
	if !ok || last >= len(grid) {
		return nil
	}
	return grid[last]
}

func maxValid(row []float64) (float64, bool) {
	found := false
	best := 0.0
	for _, v := range row {
		if !ncio.Valid(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

func lastValid(row []float64) (float64, bool) {
	for i := len(row) - 1; i >= 0; i-- {
		if ncio.Valid(row[i]) {
			return row[i], true
		}
	}
	return 0, false
}
