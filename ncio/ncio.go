// Package ncio wraps the NetCDF container format behind a small dataset
// interface with typed, fallback-providing accessors. Argo files store
// values as run-time-typed arrays (chars, shorts, floats, doubles); each
// accessor here coerces one shape and reports absence instead of failing.
package ncio

import (
	"math"
	"strings"
	"time"
)

// Values at or above this threshold are NetCDF fill values (99999 and
// friends) and must be treated as absent measurements.
const fillThreshold = 99990.0

var juldEpoch = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

// Var is one variable read from a dataset: the raw values and the names of
// the dimensions they span.
type Var struct {
	Values any
	Dims   []string
}

// Dataset is a read-only, self-describing array container.
type Dataset interface {
	// Var returns the named variable, or ok=false if it does not exist.
	Var(name string) (Var, bool)
	Close() error
}

// Valid reports whether a measurement value is usable, i.e. neither NaN
// nor a fill sentinel.
func Valid(v float64) bool {
	return !math.IsNaN(v) && v < fillThreshold
}

// TimeFromJulianDay converts an Argo JULD value (days since 1950-01-01)
// to a timestamp. Fill values and NaN yield ok=false.
func TimeFromJulianDay(days float64) (time.Time, bool) {
	if math.IsNaN(days) || days >= fillThreshold {
		return time.Time{}, false
	}
	secs := days * 86400.0
	return juldEpoch.Add(time.Duration(secs * float64(time.Second))), true
}

// String reads a scalar character variable, trimmed of padding. The empty
// string is a legal value; ok=false means the variable is missing or not
// character data.
func String(ds Dataset, name string) (string, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return "", false
	}
	switch s := v.Values.(type) {
	case string:
		return strings.TrimSpace(s), true
	case []string:
		if len(s) > 0 {
			return strings.TrimSpace(s[0]), true
		}
	}
	return "", false
}

// Chars reads a character variable as a raw, untrimmed sequence. Argo
// per-profile codes are char[N_PROF] folded into one string, one code
// byte per profile index with blank as fill; trimming would shift every
// index after a leading blank.
func Chars(ds Dataset, name string) (string, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return "", false
	}
	switch s := v.Values.(type) {
	case string:
		return s, true
	case []string:
		if len(s) > 0 {
			return s[0], true
		}
	}
	return "", false
}

// Strings reads a character variable of any rank as a flat list of
// trimmed, non-empty strings.
func Strings(ds Dataset, name string) ([]string, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return nil, false
	}
	var out []string
	appendTrimmed := func(s string) {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	switch s := v.Values.(type) {
	case string:
		appendTrimmed(s)
	case []string:
		for _, e := range s {
			appendTrimmed(e)
		}
	case [][]string:
		for _, row := range s {
			for _, e := range row {
				appendTrimmed(e)
			}
		}
	default:
		return nil, false
	}
	return out, true
}

// Float64 reads a scalar numeric variable. NaN and fill values count as
// absent.
func Float64(ds Dataset, name string) (float64, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return 0, false
	}
	f, ok := toFloat64(v.Values)
	if !ok || !Valid(f) {
		return 0, false
	}
	return f, true
}

// Float64s reads a one-dimensional numeric variable, widening whatever
// element type the file used. Fill values are preserved; callers filter
// with Valid.
func Float64s(ds Dataset, name string) ([]float64, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return nil, false
	}
	return toFloat64Slice(v.Values)
}

// Grid reads a two-dimensional numeric variable as float64 rows.
func Grid(ds Dataset, name string) ([][]float64, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return nil, false
	}
	switch g := v.Values.(type) {
	case [][]float64:
		return g, true
	case [][]float32:
		out := make([][]float64, len(g))
		for i, row := range g {
			out[i] = widen32(row)
		}
		return out, true
	case [][]int32:
		out := make([][]float64, len(g))
		for i, row := range g {
			out[i] = make([]float64, len(row))
			for j, e := range row {
				out[i][j] = float64(e)
			}
		}
		return out, true
	case [][]int16:
		out := make([][]float64, len(g))
		for i, row := range g {
			out[i] = make([]float64, len(row))
			for j, e := range row {
				out[i][j] = float64(e)
			}
		}
		return out, true
	}
	return nil, false
}

// StringRows reads a two-dimensional character variable as one string per
// outer index. Argo QC grids are char[N_PROF][N_LEVELS], which the
// container yields as a string per profile, one QC code per byte.
func StringRows(ds Dataset, name string) ([]string, bool) {
	v, ok := ds.Var(name)
	if !ok {
		return nil, false
	}
	switch s := v.Values.(type) {
	case []string:
		return s, true
	case string:
		return []string{s}, true
	}
	return nil, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint8:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toFloat64Slice(v any) ([]float64, bool) {
	switch s := v.(type) {
	case []float64:
		return s, true
	case []float32:
		return widen32(s), true
	case []int64:
		out := make([]float64, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out, true
	case []int32:
		out := make([]float64, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out, true
	case []int16:
		out := make([]float64, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out, true
	case []int8:
		out := make([]float64, len(s))
		for i, e := range s {
			out[i] = float64(e)
		}
		return out, true
	}
	return nil, false
}

func widen32(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, e := range in {
		out[i] = float64(e)
	}
	return out
}
