package verdict

import (
	"aquacheck/domain/water"
)

// GaugeZone buckets confidence the way the result gauge shades it
type GaugeZone string

const (
	GaugeLow    GaugeZone = "low"
	GaugeMedium GaugeZone = "medium"
	GaugeHigh   GaugeZone = "high"
)

// ZoneFor returns the gauge zone for a confidence in [0,1].
func ZoneFor(confidence float64) GaugeZone {
	switch {
	case confidence < 0.5:
		return GaugeLow
	case confidence < 0.75:
		return GaugeMedium
	default:
		return GaugeHigh
	}
}

// Verdict is the interpreted outcome for one water sample
type Verdict struct {
	Potable         bool                           `json:"potable"`
	Confidence      float64                        `json:"confidence"`
	Bands           map[water.Parameter]water.Band `json:"bands"`
	Recommendations []string                       `json:"recommendations"`

	Headline string    `json:"headline"`
	Message  string    `json:"message"`
	Gauge    GaugeZone `json:"gauge"`
}

// OutOfBand returns the parameters whose band is not normal, in declaration order.
func (v Verdict) OutOfBand() []water.Parameter {
	var out []water.Parameter
	for _, p := range water.Parameters {
		if b, ok := v.Bands[p]; ok && b != water.Normal {
			out = append(out, p)
		}
	}
	return out
}

// ConfidencePercent returns confidence on a 0-100 scale.
func (v Verdict) ConfidencePercent() float64 {
	return v.Confidence * 100
}
