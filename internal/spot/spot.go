// Package spot defines surf spot profiles and regions. A profile captures the
// conditions a break works best under; the scoring engine reads it as pure
// data and never mutates it.
package spot

import "time"

// Profile describes how a spot responds to swell, wind, and tide.
//
// Directions are compass bearings in degrees (0 = N, 90 = E). SwellDirections
// lists the bearings the spot picks up best; OffshoreWindDir is the wind
// origin bearing that grooms the spot. Tide bounds are meters above datum;
// both zero means the spot works on any tide.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RegionID string `json:"region_id"`
	Timezone string `json:"timezone"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	SwellHeightMin  float64   `json:"swell_height_min"`
	SwellHeightMax  float64   `json:"swell_height_max"`
	SwellDirections []float64 `json:"swell_directions"`
	SwellPeriodMin  float64   `json:"swell_period_min"`
	SwellPeriodMax  float64   `json:"swell_period_max"`
	OffshoreWindDir float64   `json:"offshore_wind_dir"`
	TideIdealMin    float64   `json:"tide_ideal_min"`
	TideIdealMax    float64   `json:"tide_ideal_max"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WantsTide reports whether the profile expresses a tide preference.
func (p *Profile) WantsTide() bool {
	return p.TideIdealMin != 0 || p.TideIdealMax != 0
}

// Region groups spots for regional schedulings and comparisons.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
