package ncio

import (
	"testing"
	"time"
)

func TestTimeFromJulianDay(t *testing.T) {
	// Day zero is the epoch itself.
	got, ok := TimeFromJulianDay(0)
	if !ok || !got.Equal(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day 0: got %v ok=%v", got, ok)
	}

	// Half a day is noon.
	got, ok = TimeFromJulianDay(0.5)
	if !ok || got.Hour() != 12 {
		t.Errorf("day 0.5: got %v ok=%v", got, ok)
	}

	// Fill sentinel yields no timestamp.
	if _, ok := TimeFromJulianDay(99999.0); ok {
		t.Error("fill value produced a timestamp")
	}
}

func TestValid(t *testing.T) {
	testCases := []struct {
		value    float64
		expected bool
	}{
		{25.0, true},
		{-5.0, true},
		{0, true},
		{99999.0, false},
		{99990.0, false},
		{99989.9, true},
	}
	for _, c := range testCases {
		if got := Valid(c.value); got != c.expected {
			t.Errorf("Valid(%v): got %v", c.value, got)
		}
	}
}

func TestAccessorsWidening(t *testing.T) {
	ds := Memory{
		"F32":  []float32{1.5, 2.5},
		"I16":  []int16{3, 4},
		"G32":  [][]float32{{1, 2}, {3, 4}},
		"CHAR": "AB",
		"ROWS": []string{"11", "22"},
	}

	f, ok := Float64s(ds, "F32")
	if !ok || len(f) != 2 || f[1] != 2.5 {
		t.Errorf("F32: got %v ok=%v", f, ok)
	}

	i, ok := Float64s(ds, "I16")
	if !ok || i[0] != 3.0 {
		t.Errorf("I16: got %v ok=%v", i, ok)
	}

	g, ok := Grid(ds, "G32")
	if !ok || g[1][0] != 3.0 {
		t.Errorf("G32: got %v ok=%v", g, ok)
	}

	s, ok := String(ds, "CHAR")
	if !ok || s != "AB" {
		t.Errorf("CHAR: got %q ok=%v", s, ok)
	}

	rows, ok := StringRows(ds, "ROWS")
	if !ok || len(rows) != 2 || rows[0] != "11" {
		t.Errorf("ROWS: got %v ok=%v", rows, ok)
	}

	if _, ok := Float64s(ds, "MISSING"); ok {
		t.Error("missing variable reported present")
	}
}

func TestCharsKeepsPadding(t *testing.T) {
	ds := Memory{"DATA_MODE": " AD"}

	raw, ok := Chars(ds, "DATA_MODE")
	if !ok || raw != " AD" {
		t.Errorf("Chars: got %q ok=%v, expected leading blank preserved", raw, ok)
	}

	// String trims, Chars must not: positional sequences rely on it.
	trimmed, ok := String(ds, "DATA_MODE")
	if !ok || trimmed != "AD" {
		t.Errorf("String: got %q ok=%v", trimmed, ok)
	}

	if _, ok := Chars(ds, "MISSING"); ok {
		t.Error("missing variable reported present")
	}
}

func TestStringsFlattening(t *testing.T) {
	ds := Memory{
		"PARAMETER": []string{"PRES            ", "TEMP            ", "                "},
	}
	got, ok := Strings(ds, "PARAMETER")
	if !ok || len(got) != 2 {
		t.Fatalf("got %v ok=%v", got, ok)
	}
	if got[0] != "PRES" || got[1] != "TEMP" {
		t.Errorf("got %v", got)
	}
}
