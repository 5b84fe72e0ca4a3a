// Package water defines the nine water-quality measurements accepted by the
// potability classifier, their valid ranges and their nominal healthy bands.
package water

import (
	"fmt"
	"math"
	"strings"

	"aquacheck/domain/core"
)

// Parameter names one of the nine accepted measurements.
type Parameter string

const (
	PH              Parameter = "ph"
	Hardness        Parameter = "hardness"
	Solids          Parameter = "solids"
	Chloramines     Parameter = "chloramines"
	Sulfate         Parameter = "sulfate"
	Conductivity    Parameter = "conductivity"
	OrganicCarbon   Parameter = "organic_carbon"
	Trihalomethanes Parameter = "trihalomethanes"
	Turbidity       Parameter = "turbidity"
)

// Count is the number of measurements in a ParameterSet.
const Count = 9

// Parameters lists the measurements in declaration order. This is also the
// feature order the classifier was trained on and must not be permuted.
var Parameters = [Count]Parameter{
	PH,
	Hardness,
	Solids,
	Chloramines,
	Sulfate,
	Conductivity,
	OrganicCarbon,
	Trihalomethanes,
	Turbidity,
}

var aliases = map[string]Parameter{
	"tds":                    Solids,
	"total_dissolved_solids": Solids,
	"toc":                    OrganicCarbon,
	"thm":                    Trihalomethanes,
	"thms":                   Trihalomethanes,
}

// String returns the parameter's wire name
func (p Parameter) String() string {
	return string(p)
}

// Index returns the feature position of p, or -1 for an unknown parameter.
func (p Parameter) Index() int {
	for i, q := range Parameters {
		if q == p {
			return i
		}
	}
	return -1
}

// ParseParameter resolves a user or spreadsheet supplied name. Matching is
// case-insensitive and tolerates spaces or hyphens in place of underscores.
func ParseParameter(name string) (Parameter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if p := Parameter(key); p.Index() >= 0 {
		return p, nil
	}
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownParameter, name)
}

// ParameterSet is one water sample. All nine fields are always present.
type ParameterSet struct {
	PH              float64 `json:"ph"`
	Hardness        float64 `json:"hardness"`
	Solids          float64 `json:"solids"`
	Chloramines     float64 `json:"chloramines"`
	Sulfate         float64 `json:"sulfate"`
	Conductivity    float64 `json:"conductivity"`
	OrganicCarbon   float64 `json:"organic_carbon"`
	Trihalomethanes float64 `json:"trihalomethanes"`
	Turbidity       float64 `json:"turbidity"`
}

// NewParameterSet builds a sample from named values. A missing measurement is
// an error, never a zero default.
func NewParameterSet(values map[Parameter]float64) (ParameterSet, error) {
	var vec [Count]float64
	for i, p := range Parameters {
		v, ok := values[p]
		if !ok {
			return ParameterSet{}, core.NewMissingFieldError(p.String())
		}
		vec[i] = v
	}
	for p := range values {
		if p.Index() < 0 {
			return ParameterSet{}, fmt.Errorf("%w: %q", core.ErrUnknownParameter, p)
		}
	}
	return FromVector(vec), nil
}

// FromVector builds a sample from values in declaration order.
func FromVector(v [Count]float64) ParameterSet {
	return ParameterSet{
		PH:              v[0],
		Hardness:        v[1],
		Solids:          v[2],
		Chloramines:     v[3],
		Sulfate:         v[4],
		Conductivity:    v[5],
		OrganicCarbon:   v[6],
		Trihalomethanes: v[7],
		Turbidity:       v[8],
	}
}

// Vector returns the measurements in classifier feature order.
func (s ParameterSet) Vector() []float64 {
	return []float64{
		s.PH,
		s.Hardness,
		s.Solids,
		s.Chloramines,
		s.Sulfate,
		s.Conductivity,
		s.OrganicCarbon,
		s.Trihalomethanes,
		s.Turbidity,
	}
}

// Get returns the value of p. Unknown parameters yield NaN.
func (s ParameterSet) Get(p Parameter) float64 {
	i := p.Index()
	if i < 0 {
		return math.NaN()
	}
	return s.Vector()[i]
}

// Finite reports whether every measurement is a finite number.
func (s ParameterSet) Finite() bool {
	for _, v := range s.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
