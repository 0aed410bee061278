package geocode

import (
	"strings"

	"github.com/Ramsey-B/peony/pkg/utils"
)

const (
	ProvinceMilano       = "Milano"
	ProvinceMonzaBrianza = "Monza and Brianza"
)

// NormalizeProvince maps a geocoder county onto the service area's provinces.
// Matching ignores case and diacritics; anything outside the service area is dropped.
func NormalizeProvince(county string) (string, bool) {
	folded := utils.Fold(county)
	switch {
	case strings.Contains(folded, "monza") && strings.Contains(folded, "brianza"):
		return ProvinceMonzaBrianza, true
	case strings.Contains(folded, "milano"):
		return ProvinceMilano, true
	default:
		return "", false
	}
}
