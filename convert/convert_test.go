package convert

import (
	"testing"
	"time"

	"atlas/ncio"
)

func profileDataset() ncio.Memory {
	return ncio.Memory{
		"PLATFORM_NUMBER": []string{"2902345 ", "2902345 "},
		"CYCLE_NUMBER":    []float64{41, 42},
		"JULD":            []float64{27000.0, 27010.0},
		"LATITUDE":        []float64{10.0, 12.5},
		"LONGITUDE":       []float64{70.0, 72.25},
		"DATA_MODE":       "DA",
		"POSITION_QC":     "11",
		"PRES": [][]float64{
			{5.0, 100.0, 1000.0},
			{5.0, 99999.0, 1950.0},
		},
		"TEMP": [][]float64{
			{28.0, 15.0, 4.0},
			{27.5, 14.0, 99999.0},
		},
		"PSAL": [][]float64{
			{35.1, 35.0, 34.7},
			{35.2, 34.9, 34.6},
		},
		"PRES_QC": []string{"111", "1 1"},
		"TEMP_QC": []string{"111", "114"},
	}
}

func TestConvertFlattensGrid(t *testing.T) {
	rows := Convert(profileDataset(), "2902345")

	// Six grid cells, one pressure is a fill value.
	if len(rows) != 5 {
		t.Fatalf("got %d rows, expected 5", len(rows))
	}

	first := rows[0]
	if first.FloatID != 2902345 {
		t.Errorf("float id: got %d", first.FloatID)
	}
	if first.CycleNumber == nil || *first.CycleNumber != 41 {
		t.Errorf("cycle: got %v", first.CycleNumber)
	}
	if first.Level != 0 {
		t.Errorf("level: got %d", first.Level)
	}
	if first.Pressure != 5.0 {
		t.Errorf("pressure: got %v", first.Pressure)
	}
	if first.Temperature == nil || *first.Temperature != 28.0 {
		t.Errorf("temperature: got %v", first.Temperature)
	}
	if first.DataMode == nil || *first.DataMode != "D" {
		t.Errorf("data mode: got %v", first.DataMode)
	}
	if first.PositionQC == nil || *first.PositionQC != "1" {
		t.Errorf("position qc: got %v", first.PositionQC)
	}
	if first.PresQC == nil || *first.PresQC != "1" {
		t.Errorf("pres qc: got %v", first.PresQC)
	}

	// The fill-value pressure at profile 1 level 1 is dropped, so the
	// second profile contributes levels 0 and 2 only.
	second := rows[3]
	if second.Level != 0 || second.CycleNumber == nil || *second.CycleNumber != 42 {
		t.Errorf("row 3: level %d cycle %v", second.Level, second.CycleNumber)
	}
	if second.DataMode == nil || *second.DataMode != "A" {
		t.Errorf("row 3 data mode: got %v", second.DataMode)
	}

	last := rows[4]
	if last.Level != 2 {
		t.Errorf("row 4 level: got %d", last.Level)
	}
	// Fill-value temperature becomes absent, not a sentinel.
	if last.Temperature != nil {
		t.Errorf("row 4 temperature: got %v", *last.Temperature)
	}
	// TEMP_QC code "4" is carried even though the value itself is a fill.
	if last.TempQC == nil || *last.TempQC != "4" {
		t.Errorf("row 4 temp qc: got %v", last.TempQC)
	}
}

func TestConvertTimestamps(t *testing.T) {
	rows := Convert(profileDataset(), "2902345")

	first := rows[0]
	if first.ProfileTimestamp == nil {
		t.Fatal("timestamp: got nil")
	}
	expected := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 27000)
	if !first.ProfileTimestamp.Equal(expected) {
		t.Errorf("timestamp: got %v, expected %v", first.ProfileTimestamp, expected)
	}
	if first.Year == nil || *first.Year != int32(expected.Year()) {
		t.Errorf("year: got %v", first.Year)
	}
	if first.Month == nil || *first.Month != int32(expected.Month()) {
		t.Errorf("month: got %v", first.Month)
	}

	// Every level of a profile shares the profile's timestamp.
	if !rows[1].ProfileTimestamp.Equal(*first.ProfileTimestamp) {
		t.Error("levels of one profile disagree on timestamp")
	}
}

func TestConvertBlankQCBecomesAbsent(t *testing.T) {
	rows := Convert(profileDataset(), "2902345")

	// PRES_QC of profile 1 is "1 1": the blank at level 1 never surfaces
	// because that level's pressure is a fill, but level 2 carries "1".
	last := rows[4]
	if last.PresQC == nil || *last.PresQC != "1" {
		t.Errorf("pres qc: got %v", last.PresQC)
	}
	// No PSAL_QC variable at all.
	if last.PsalQC != nil {
		t.Errorf("psal qc: got %v", *last.PsalQC)
	}
}

func TestConvertLeadingBlankDataMode(t *testing.T) {
	// Profile 0 has no data mode assigned (blank fill); profile 1 is in
	// adjusted mode. The blank must stay in place, not shift profile 1's
	// code onto profile 0.
	ds := profileDataset()
	ds["DATA_MODE"] = " A"
	ds["POSITION_QC"] = " 1"

	rows := Convert(ds, "2902345")
	if len(rows) != 5 {
		t.Fatalf("got %d rows, expected 5", len(rows))
	}

	// Rows 0-2 belong to profile 0, rows 3-4 to profile 1.
	if rows[0].DataMode != nil {
		t.Errorf("profile 0 data mode: got %q, expected absent", *rows[0].DataMode)
	}
	if rows[0].PositionQC != nil {
		t.Errorf("profile 0 position qc: got %q, expected absent", *rows[0].PositionQC)
	}
	if rows[3].DataMode == nil || *rows[3].DataMode != "A" {
		t.Errorf("profile 1 data mode: got %v, expected A", rows[3].DataMode)
	}
	if rows[3].PositionQC == nil || *rows[3].PositionQC != "1" {
		t.Errorf("profile 1 position qc: got %v, expected 1", rows[3].PositionQC)
	}
}

func TestConvertNoPressureGrid(t *testing.T) {
	ds := ncio.Memory{
		"CYCLE_NUMBER": []float64{1},
		"JULD":         []float64{27000.0},
	}
	if rows := Convert(ds, "2902345"); rows != nil {
		t.Errorf("got %d rows, expected none", len(rows))
	}
}

func TestConvertFallbackFloatID(t *testing.T) {
	ds := profileDataset()
	delete(ds, "PLATFORM_NUMBER")

	rows := Convert(ds, "1901234")
	if len(rows) == 0 {
		t.Fatal("no rows")
	}
	if rows[0].FloatID != 1901234 {
		t.Errorf("float id: got %d, expected fallback 1901234", rows[0].FloatID)
	}
}
