package ncio

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// ncFile adapts a go-native-netcdf group to the Dataset interface.
type ncFile struct {
	group api.Group
}

// Open reads the root group of a NetCDF file.
func Open(path string) (Dataset, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	return &ncFile{group: group}, nil
}

func (f *ncFile) Var(name string) (Var, bool) {
	v, err := f.group.GetVariable(name)
	if err != nil || v == nil {
		return Var{}, false
	}
	return Var{Values: v.Values, Dims: v.Dimensions}, true
}

func (f *ncFile) Close() error {
	f.group.Close()
	return nil
}
