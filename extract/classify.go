package extract

import (
	"slices"
	"strings"

	"atlas/models"
	"atlas/ncio"
)

// Oxygen channels and the named BGC parameters used by the classifier.
var (
	oxygenParams      = []string{"doxy", "doxy2", "doxy3"}
	backscatterParams = []string{"bbp470", "bbp532", "bbp700", "beta_backscattering"}
	nitrateParams     = []string{"nitrate", "ntra", "ntrate"}
)

// ClassifyFloatType classifies a float from its recorded parameters,
// sensor names and platform family. It is a pure rule cascade, evaluated
// in order, first match wins. Parameters and sensors are expected
// lower-cased and trimmed.
func ClassifyFloatType(params, sensors []string, platformFamily string) models.FloatType {
	if strings.Contains(strings.ToUpper(platformFamily), "DEEP") {
		return models.TypeDeep
	}

	hasOxygen := containsAny(params, oxygenParams)
	hasOptode := anyContains(sensors, "opto")

	joined := strings.Join(params, " ")
	hasChla := slices.Contains(params, "chla") || strings.Contains(joined, "chlorophyll")
	hasBackscatter := containsAny(params, backscatterParams)
	hasNitrate := containsAny(params, nitrateParams)
	hasPH := slices.Contains(params, "ph_in_situ_total")
	hasCDOM := slices.Contains(params, "cdom")

	// Oxygen floats upgrade to biogeochemical when any other BGC channel
	// is present.
	if hasOxygen || hasOptode {
		if hasChla || hasBackscatter || hasNitrate || hasPH || hasCDOM {
			return models.TypeBiogeochemical
		}
		return models.TypeOxygen
	}

	// Full BGC suite
	if countTrue(hasChla, hasBackscatter, hasNitrate, hasPH) >= 2 {
		return models.TypeBiogeochemical
	}

	// Partial BGC
	if hasChla || hasBackscatter || hasNitrate || hasPH || hasCDOM {
		return models.TypeBiogeochemical
	}

	// Enhanced core: more than the three core channels, or bio sensors
	if countDistinct(params) > 3 || anyContains(sensors, "bio") {
		return models.TypeBiogeochemical
	}

	return models.TypeCore
}

// classifyDataset extracts parameters, sensors and platform family from a
// metadata file and classifies. Missing variables classify as empty
// lists, so a meta file without them falls through the cascade to core.
func classifyDataset(ds ncio.Dataset) models.FloatType {
	params, _ := ncio.Strings(ds, "PARAMETER")
	sensors, _ := ncio.Strings(ds, "SENSOR")
	family, _ := ncio.String(ds, "PLATFORM_FAMILY")
	return ClassifyFloatType(lowered(params), lowered(sensors), family)
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(haystack, needles []string) bool {
	for _, n := range needles {
		if slices.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func anyContains(haystack []string, substring string) bool {
	for _, s := range haystack {
		if strings.Contains(s, substring) {
			return true
		}
	}
	return false
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func countDistinct(in []string) int {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		set[s] = struct{}{}
	}
	return len(set)
}
