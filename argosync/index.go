package argosync

import (
	"encoding/csv"
	"strings"

	"github.com/gocarina/gocsv"
)

// indexRecord mirrors one data line of a GDAC index file:
// file,date,latitude,longitude,ocean,profiler_type,institution,date_update
// Only the file path is load-bearing; the rest is carried along for
// completeness.
type indexRecord struct {
	File         string `csv:"file"`
	Date         string `csv:"date"`
	Latitude     string `csv:"latitude"`
	Longitude    string `csv:"longitude"`
	Ocean        string `csv:"ocean"`
	ProfilerType string `csv:"profiler_type"`
	Institution  string `csv:"institution"`
	DateUpdate   string `csv:"date_update"`
}

// ParseIndex extracts the unique float ids belonging to one DAC from raw
// index text. Paths look like `<dac>/<float_id>/...`; comment lines start
// with '#'. Lines that do not match this shape are skipped, since index
// files are third party and occasionally inconsistent.
func ParseIndex(content, dac string) map[string]struct{} {
	floats := make(map[string]struct{})

	if indexHasHeader(content) {
		reader := csv.NewReader(strings.NewReader(content))
		reader.Comment = '#'
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		var records []*indexRecord
		if err := gocsv.UnmarshalCSV(reader, &records); err == nil {
			for _, rec := range records {
				addFloat(floats, rec.File, dac)
			}
			return floats
		}
	}

	// Headerless or malformed index: loose line scan.
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		addFloat(floats, fields[0], dac)
	}
	return floats
}

func indexHasHeader(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.HasPrefix(line, "file,")
	}
	return false
}

func addFloat(floats map[string]struct{}, path, dac string) {
	parts := strings.Split(path, "/")
	if len(parts) >= 2 && parts[0] == dac && parts[1] != "" {
		floats[parts[1]] = struct{}{}
	}
}
