package water

import (
	"fmt"
	"math"
	"strings"

	"aquacheck/domain/core"
)

// Band is the qualitative position of a measurement relative to its nominal range.
type Band string

const (
	BelowNormal Band = "below-normal"
	Normal      Band = "normal"
	AboveNormal Band = "above-normal"
)

// Range is a closed numeric interval
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies in [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp pins v to the nearest bound
func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Spec describes one measurement: its accepted input range, its healthy band
// and the wording used when presenting it.
type Spec struct {
	Parameter Parameter `json:"name"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Hard      Range     `json:"range"`
	Nominal   Range     `json:"nominal"`
	Step      float64   `json:"step"`
	Help      string    `json:"help"`

	// BandLabels describe below-normal, normal and above-normal in that order.
	BandLabels [3]string `json:"band_labels"`
}

// BandOf classifies v against the nominal range. The nominal bounds themselves
// are normal.
func (s Spec) BandOf(v float64) Band {
	switch {
	case v < s.Nominal.Min:
		return BelowNormal
	case v > s.Nominal.Max:
		return AboveNormal
	default:
		return Normal
	}
}

// Describe returns the human wording for a band of this measurement.
func (s Spec) Describe(b Band) string {
	switch b {
	case BelowNormal:
		return s.BandLabels[0]
	case AboveNormal:
		return s.BandLabels[2]
	default:
		return s.BandLabels[1]
	}
}

var defaultLabels = [3]string{"Low", "Normal", "High"}

var specs = [Count]Spec{
	{
		Parameter:  PH,
		Label:      "pH Level",
		Hard:       Range{0, 14},
		Nominal:    Range{6.5, 8.5},
		Step:       0.1,
		Help:       "pH indicates water's acidity or alkalinity. 7 is neutral.",
		BandLabels: [3]string{"Too acidic", "Optimal", "Too alkaline"},
	},
	{
		Parameter:  Hardness,
		Label:      "Hardness",
		Unit:       "mg/L",
		Hard:       Range{0, 500},
		Nominal:    Range{60, 180},
		Step:       0.1,
		Help:       "Measures calcium and magnesium content",
		BandLabels: [3]string{"Soft water", "Moderate", "Hard water"},
	},
	{
		Parameter:  Solids,
		Label:      "Total Dissolved Solids",
		Unit:       "mg/L",
		Hard:       Range{0, 100000},
		Nominal:    Range{500, 1500},
		Step:       1,
		Help:       "Total amount of dissolved minerals",
		BandLabels: [3]string{"Excellent", "Good", "Poor"},
	},
	{
		Parameter:  Chloramines,
		Label:      "Chloramines",
		Unit:       "ppm",
		Hard:       Range{0, 10},
		Nominal:    Range{1.0, 4.0},
		Step:       0.1,
		Help:       "Disinfectant level in water",
		BandLabels: defaultLabels,
	},
	{
		Parameter:  Sulfate,
		Label:      "Sulfate",
		Unit:       "mg/L",
		Hard:       Range{0, 500},
		Nominal:    Range{250, 500},
		Step:       0.1,
		Help:       "Sulfate mineral content",
		BandLabels: defaultLabels,
	},
	{
		Parameter:  Conductivity,
		Label:      "Conductivity",
		Unit:       "μS/cm",
		Hard:       Range{0, 1000},
		Nominal:    Range{50, 500},
		Step:       0.1,
		Help:       "Electrical conductivity of water",
		BandLabels: defaultLabels,
	},
	{
		Parameter:  OrganicCarbon,
		Label:      "Organic Carbon",
		Unit:       "mg/L",
		Hard:       Range{0, 30},
		Nominal:    Range{2.0, 10.0},
		Step:       0.1,
		Help:       "Amount of organic matter",
		BandLabels: defaultLabels,
	},
	{
		Parameter:  Trihalomethanes,
		Label:      "Trihalomethanes",
		Unit:       "μg/L",
		Hard:       Range{0, 120},
		Nominal:    Range{0, 80},
		Step:       0.1,
		Help:       "Disinfection byproducts",
		BandLabels: defaultLabels,
	},
	{
		Parameter:  Turbidity,
		Label:      "Turbidity",
		Unit:       "NTU",
		Hard:       Range{0, 10},
		Nominal:    Range{0, 5},
		Step:       0.1,
		Help:       "Measure of water clarity",
		BandLabels: defaultLabels,
	},
}

// Specs returns the measurement specs in declaration order.
func Specs() []Spec {
	out := make([]Spec, Count)
	copy(out, specs[:])
	return out
}

// Lookup returns the spec for p
func Lookup(p Parameter) (Spec, bool) {
	i := p.Index()
	if i < 0 {
		return Spec{}, false
	}
	return specs[i], true
}

// BandOf classifies value for parameter p against its nominal range.
func BandOf(value float64, p Parameter) (Band, error) {
	s, ok := Lookup(p)
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownParameter, p)
	}
	return s.BandOf(value), nil
}

// InputPolicy decides what happens to a value outside its hard range.
type InputPolicy string

const (
	// PolicyClamp pins out-of-range input to the nearest bound.
	PolicyClamp InputPolicy = "clamp"
	// PolicyReject fails validation with core.ErrOutOfRange.
	PolicyReject InputPolicy = "reject"
)

// ParseInputPolicy parses "clamp" or "reject"; empty means clamp.
func ParseInputPolicy(s string) (InputPolicy, error) {
	switch InputPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyClamp:
		return PolicyClamp, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown input policy %q (want clamp or reject)", s)
}

// Adjustment records a value that validation pinned to a bound.
type Adjustment struct {
	Parameter Parameter `json:"parameter"`
	Submitted float64   `json:"submitted"`
	Applied   float64   `json:"applied"`
}

// Schema validates raw submissions under a fixed input policy.
type Schema struct {
	policy InputPolicy
}

// NewSchema creates a schema; an empty policy means clamp.
func NewSchema(policy InputPolicy) *Schema {
	if policy == "" {
		policy = PolicyClamp
	}
	return &Schema{policy: policy}
}

// Policy returns the schema's input policy
func (s *Schema) Policy() InputPolicy {
	return s.policy
}

// Validate checks raw against the hard range of p. NaN and infinities are
// rejected under either policy.
func (s *Schema) Validate(raw float64, p Parameter) (float64, error) {
	spec, ok := Lookup(p)
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownParameter, p)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, core.NewOutOfRangeError(p.String(), raw, spec.Hard.Min, spec.Hard.Max)
	}
	if spec.Hard.Contains(raw) {
		return raw, nil
	}
	if s.policy == PolicyReject {
		return 0, core.NewOutOfRangeError(p.String(), raw, spec.Hard.Min, spec.Hard.Max)
	}
	return spec.Hard.Clamp(raw), nil
}

// ValidateSet validates a named submission. Names are resolved with
// ParseParameter; every measurement must be present exactly once.
func (s *Schema) ValidateSet(raw map[string]float64) (ParameterSet, []Adjustment, error) {
	values := make(map[Parameter]float64, Count)
	for name, v := range raw {
		p, err := ParseParameter(name)
		if err != nil {
			return ParameterSet{}, nil, err
		}
		if _, dup := values[p]; dup {
			return ParameterSet{}, nil, core.NewDuplicateFieldError(p.String())
		}
		values[p] = v
	}

	var adjustments []Adjustment
	for _, p := range Parameters {
		v, ok := values[p]
		if !ok {
			return ParameterSet{}, nil, core.NewMissingFieldError(p.String())
		}
		applied, err := s.Validate(v, p)
		if err != nil {
			return ParameterSet{}, nil, err
		}
		if applied != v {
			adjustments = append(adjustments, Adjustment{Parameter: p, Submitted: v, Applied: applied})
		}
		values[p] = applied
	}

	set, err := NewParameterSet(values)
	return set, adjustments, err
}
