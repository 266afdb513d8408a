package argosync

import "testing"

const indexWithHeader = `# Title : Profile directory file of the Argo GDAC
# Date of update : 20250301120000
file,date,latitude,longitude,ocean,profiler_type,institution,date_update
incois/2902345/profiles/D2902345_001.nc,20160705043000,12.5,68.25,I,838,IN,20250101000000
incois/2902345/profiles/D2902345_002.nc,20160715043000,12.6,68.30,I,838,IN,20250101000000
incois/1901234/profiles/R1901234_001.nc,20200101000000,-5.0,80.0,I,846,IN,20250101000000
coriolis/6903456/profiles/R6903456_001.nc,20200101000000,45.0,-20.0,A,844,IF,20250101000000
`

func TestParseIndex(t *testing.T) {
	floats := ParseIndex(indexWithHeader, "incois")

	if len(floats) != 2 {
		t.Fatalf("got %d floats, expected 2", len(floats))
	}
	for _, id := range []string{"2902345", "1901234"} {
		if _, ok := floats[id]; !ok {
			t.Errorf("float %s missing from index", id)
		}
	}
	if _, ok := floats["6903456"]; ok {
		t.Error("float from another DAC leaked through")
	}
}

func TestParseIndexHeaderless(t *testing.T) {
	content := `# comment only
incois/2902345/2902345_meta.nc,20160705043000
incois/1901234/1901234_meta.nc,20200101000000
`
	floats := ParseIndex(content, "incois")
	if len(floats) != 2 {
		t.Fatalf("got %d floats, expected 2", len(floats))
	}
}

func TestParseIndexEmpty(t *testing.T) {
	if floats := ParseIndex("", "incois"); len(floats) != 0 {
		t.Errorf("got %d floats from empty index", len(floats))
	}
	if floats := ParseIndex("# only comments\n# nothing else\n", "incois"); len(floats) != 0 {
		t.Errorf("got %d floats from comment-only index", len(floats))
	}
}

func TestParseIndexMalformedLines(t *testing.T) {
	content := `file,date,latitude,longitude,ocean,profiler_type,institution,date_update
incois/2902345/profiles/D2902345_001.nc,20160705043000,12.5,68.25,I,838,IN,20250101000000
garbage-line-without-separator
incois//missing_id.nc,,,,,,,
`
	floats := ParseIndex(content, "incois")
	if len(floats) != 1 {
		t.Fatalf("got %d floats, expected 1", len(floats))
	}
	if _, ok := floats["2902345"]; !ok {
		t.Error("valid float lost among malformed lines")
	}
}
