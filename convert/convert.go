// Package convert flattens the profile x depth-level measurement grid of
// one float into a denormalized row table and writes it as Parquet for
// the columnar archive.
package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"atlas/config"
	"atlas/ncio"
)

// Row is one measurement at one depth level of one profile. Pressure is
// the only required measurement; rows without it are never emitted.
type Row struct {
	FloatID          int64
	CycleNumber      *int32
	Level            int32
	ProfileTimestamp *time.Time
	Latitude         *float64
	Longitude        *float64
	Pressure         float64
	Temperature      *float64
	Salinity         *float64
	PositionQC       *string
	PresQC           *string
	TempQC           *string
	PsalQC           *string
	TemperatureAdj   *float64
	SalinityAdj      *float64
	PressureAdj      *float64
	TempAdjQC        *string
	PsalAdjQC        *string
	DataMode         *string
	Oxygen           *float64
	OxygenQC         *string
	Chlorophyll      *float64
	ChlorophyllQC    *string
	Nitrate          *float64
	NitrateQC        *string
	Year             *int32
	Month            *int32
}

// Converter turns staged profile files into Parquet tables.
type Converter struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Converter {
	return &Converter{cfg: cfg}
}

// ConvertFile flattens a float's profile file and writes the Parquet
// table, returning its path. A missing profile file or a file with zero
// valid rows yields an empty path and no error: there is nothing to
// persist.
func (c *Converter) ConvertFile(floatID string) (string, error) {
	profPath := filepath.Join(c.cfg.StagePath, floatID, floatID+"_prof.nc")
	ds, err := ncio.Open(profPath)
	if err != nil {
		slog.Debug("no profile file to convert", "float_id", floatID)
		return "", nil
	}
	defer ds.Close()

	rows := Convert(ds, floatID)
	if len(rows) == 0 {
		slog.Warn("no valid measurements extracted", "float_id", floatID)
		return "", nil
	}

	if err := os.MkdirAll(c.cfg.ParquetStagePath, 0o755); err != nil {
		return "", fmt.Errorf("create parquet staging dir: %w", err)
	}

	outPath := filepath.Join(c.cfg.ParquetStagePath, floatID+"_profiles.parquet")
	if err := WriteParquet(rows, outPath, c.cfg.ParquetCompression); err != nil {
		return "", err
	}
	return outPath, nil
}

// Convert emits one row per (profile, level) pair holding a valid
// pressure. All other fields are best effort: absent when the source
// array is missing, wrong-shaped or holds a sentinel.
func Convert(ds ncio.Dataset, floatID string) []Row {
	pressures, ok := ncio.Grid(ds, "PRES")
	if !ok || len(pressures) == 0 {
		return nil
	}
	nProf := len(pressures)

	platformNumbers, _ := ncio.StringRows(ds, "PLATFORM_NUMBER")
	cycles, _ := ncio.Float64s(ds, "CYCLE_NUMBER")
	julds, _ := ncio.Float64s(ds, "JULD")
	lats, _ := ncio.Float64s(ds, "LATITUDE")
	lons, _ := ncio.Float64s(ds, "LONGITUDE")

	// Per-profile character sequences: one code per profile index, read
	// untrimmed so a blank fill code cannot shift the alignment.
	dataModes, _ := ncio.Chars(ds, "DATA_MODE")
	positionQC, _ := ncio.Chars(ds, "POSITION_QC")

	temps, _ := ncio.Grid(ds, "TEMP")
	salts, _ := ncio.Grid(ds, "PSAL")
	presAdj, _ := ncio.Grid(ds, "PRES_ADJUSTED")
	tempAdj, _ := ncio.Grid(ds, "TEMP_ADJUSTED")
	saltAdj, _ := ncio.Grid(ds, "PSAL_ADJUSTED")
	oxygen, _ := ncio.Grid(ds, "OXYGEN")
	chlorophyll, _ := ncio.Grid(ds, "CHLOROPHYLL")
	nitrate, _ := ncio.Grid(ds, "NITRATE")

	presQC, _ := ncio.StringRows(ds, "PRES_QC")
	tempQC, _ := ncio.StringRows(ds, "TEMP_QC")
	psalQC, _ := ncio.StringRows(ds, "PSAL_QC")
	tempAdjQC, _ := ncio.StringRows(ds, "TEMP_ADJUSTED_QC")
	psalAdjQC, _ := ncio.StringRows(ds, "PSAL_ADJUSTED_QC")
	oxygenQC, _ := ncio.StringRows(ds, "OXYGEN_QC")
	chlorophyllQC, _ := ncio.StringRows(ds, "CHLOROPHYLL_QC")
	nitrateQC, _ := ncio.StringRows(ds, "NITRATE_QC")

	fallbackID, _ := strconv.ParseInt(floatID, 10, 64)

	var rows []Row
	for i := 0; i < nProf; i++ {
		rowID := profileFloatID(platformNumbers, i, fallbackID)
		cycle := intAt(cycles, i)
		lat := floatAt(lats, i)
		lon := floatAt(lons, i)
		mode := charAt(dataModes, i)
		posQC := charAt(positionQC, i)

		// One timestamp per profile, reused for every level.
		var stamp *time.Time
		var year, month *int32
		if i < len(julds) {
			if t, ok := ncio.TimeFromJulianDay(julds[i]); ok {
				stamp = &t
				y, m := int32(t.Year()), int32(t.Month())
				year, month = &y, &m
			}
		}

		for j := range pressures[i] {
			pres := pressures[i][j]
			if !ncio.Valid(pres) {
				continue
			}

			rows = append(rows, Row{
				FloatID:          rowID,
				CycleNumber:      cycle,
				Level:            int32(j),
				ProfileTimestamp: stamp,
				Latitude:         lat,
				Longitude:        lon,
				Pressure:         pres,
				Temperature:      gridAt(temps, i, j),
				Salinity:         gridAt(salts, i, j),
				PositionQC:       posQC,
				PresQC:           qcAt(presQC, i, j),
				TempQC:           qcAt(tempQC, i, j),
				PsalQC:           qcAt(psalQC, i, j),
				TemperatureAdj:   gridAt(tempAdj, i, j),
				SalinityAdj:      gridAt(saltAdj, i, j),
				PressureAdj:      gridAt(presAdj, i, j),
				TempAdjQC:        qcAt(tempAdjQC, i, j),
				PsalAdjQC:        qcAt(psalAdjQC, i, j),
				DataMode:         mode,
				Oxygen:           gridAt(oxygen, i, j),
				OxygenQC:         qcAt(oxygenQC, i, j),
				Chlorophyll:      gridAt(chlorophyll, i, j),
				ChlorophyllQC:    qcAt(chlorophyllQC, i, j),
				Nitrate:          gridAt(nitrate, i, j),
				NitrateQC:        qcAt(nitrateQC, i, j),
				Year:             year,
				Month:            month,
			})
		}
	}

	return rows
}

func profileFloatID(platformNumbers []string, i int, fallback int64) int64 {
	if i < len(platformNumbers) {
		if id, err := strconv.ParseInt(strings.TrimSpace(platformNumbers[i]), 10, 64); err == nil {
			return id
		}
	}
	return fallback
}

func floatAt(arr []float64, i int) *float64 {
	if i >= len(arr) || !ncio.Valid(arr[i]) {
		return nil
	}
	return &arr[i]
}

func intAt(arr []float64, i int) *int32 {
	if i >= len(arr) || !ncio.Valid(arr[i]) {
		return nil
	}
	v := int32(arr[i])
	return &v
}

func gridAt(grid [][]float64, i, j int) *float64 {
	if i >= len(grid) || j >= len(grid[i]) || !ncio.Valid(grid[i][j]) {
		return nil
	}
	return &grid[i][j]
}

// charAt indexes a per-profile character sequence such as DATA_MODE.
func charAt(seq string, i int) *string {
	if i >= len(seq) {
		return nil
	}
	c := string(seq[i])
	if c == " " {
		return nil
	}
	return &c
}

// qcAt indexes a QC grid: one string per profile, one code byte per level.
func qcAt(rows []string, i, j int) *string {
	if i >= len(rows) || j >= len(rows[i]) {
		return nil
	}
	c := string(rows[i][j])
	if c == " " {
		return nil
	}
	return &c
}
