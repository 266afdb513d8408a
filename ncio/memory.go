package ncio

// Memory is an in-memory Dataset used by tests and tooling. Keys are
// variable names, values follow the same run-time shapes the NetCDF
// reader produces (string, []string, []float64, [][]float32, ...).
type Memory map[string]any

func (m Memory) Var(name string) (Var, bool) {
	v, ok := m[name]
	if !ok {
		return Var{}, false
	}
	return Var{Values: v}, true
}

func (m Memory) Close() error { return nil }
