package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProvince(t *testing.T) {
	tests := []struct {
		county string
		want   string
		ok     bool
	}{
		{county: "Monza e della Brianza", want: ProvinceMonzaBrianza, ok: true},
		{county: "MONZA E DELLA BRIANZA", want: ProvinceMonzaBrianza, ok: true},
		{county: "Monza and Brianza", want: ProvinceMonzaBrianza, ok: true},
		{county: "MILANO", want: ProvinceMilano, ok: true},
		{county: "Città metropolitana di Milano", want: ProvinceMilano, ok: true},
		{county: "  milano ", want: ProvinceMilano, ok: true},
		{county: "Mìlano", want: ProvinceMilano, ok: true},
		{county: "Bergamo", ok: false},
		{county: "Monza", ok: false},
		{county: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.county, func(t *testing.T) {
			got, ok := NormalizeProvince(tt.county)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
