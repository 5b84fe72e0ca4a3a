// Package interpret turns a raw classifier prediction into a Verdict: the
// potability call, its confidence, per-parameter bands and advisory text.
package interpret

import (
	"math"

	"aquacheck/domain/core"
	"aquacheck/domain/verdict"
	"aquacheck/domain/water"
)

// probabilityTolerance bounds |p0+p1-1| for a well-formed distribution.
const probabilityTolerance = 1e-6

const (
	headlinePotable    = "Potable"
	headlineNotPotable = "Not Potable"
	messagePotable     = "The water appears to be safe for consumption."
	messageNotPotable  = "The water may not be safe for consumption without treatment."
)

// Rule is one advisory check. Rules run regardless of the model's label.
type Rule struct {
	Parameter water.Parameter
	Applies   func(v float64) bool
	Advice    string
}

// DefaultRules is the advisory table, keyed by parameter.
var DefaultRules = []Rule{
	{
		Parameter: water.PH,
		Applies:   func(v float64) bool { return v < 6.5 || v > 8.5 },
		Advice:    "Adjust pH to the 6.5 - 8.5 range",
	},
	{
		Parameter: water.Hardness,
		Applies:   func(v float64) bool { return v > 180 },
		Advice:    "Consider a water softener to reduce hardness",
	},
	{
		Parameter: water.Solids,
		Applies:   func(v float64) bool { return v > 1500 },
		Advice:    "Install a reverse osmosis system to reduce dissolved solids",
	},
	{
		Parameter: water.Chloramines,
		Applies:   func(v float64) bool { return v > 4 },
		Advice:    "Reduce chloramines via activated carbon filtration",
	},
	{
		Parameter: water.Turbidity,
		Applies:   func(v float64) bool { return v > 5 },
		Advice:    "Use a sediment filter to reduce turbidity",
	},
}

// Engine interprets predictions. It holds no mutable state.
type Engine struct {
	rules map[water.Parameter][]Rule
}

// NewEngine creates an engine over DefaultRules
func NewEngine() *Engine {
	return NewEngineWithRules(DefaultRules)
}

// NewEngineWithRules creates an engine over a custom advisory table.
func NewEngineWithRules(rules []Rule) *Engine {
	byParam := make(map[water.Parameter][]Rule)
	for _, r := range rules {
		byParam[r.Parameter] = append(byParam[r.Parameter], r)
	}
	return &Engine{rules: byParam}
}

// Interpret builds the verdict for params given the classifier's label and
// class probabilities. It either returns a complete verdict or an error
// wrapping core.ErrContractViolation; malformed model output is a caller bug.
func (e *Engine) Interpret(params water.ParameterSet, label int, probabilities []float64) (verdict.Verdict, error) {
	if err := checkPrediction(label, probabilities); err != nil {
		return verdict.Verdict{}, err
	}
	if !params.Finite() {
		return verdict.Verdict{}, core.NewContractViolation("parameter set contains non-finite values")
	}

	v := verdict.Verdict{
		Potable:         label == 1,
		Confidence:      probabilities[label],
		Bands:           make(map[water.Parameter]water.Band, water.Count),
		Recommendations: []string{},
	}

	// Specs come in declaration order, which fixes recommendation order.
	for _, spec := range water.Specs() {
		value := params.Get(spec.Parameter)
		v.Bands[spec.Parameter] = spec.BandOf(value)

		for _, rule := range e.rules[spec.Parameter] {
			if rule.Applies(value) {
				v.Recommendations = append(v.Recommendations, rule.Advice)
			}
		}
	}

	if v.Potable {
		v.Headline, v.Message = headlinePotable, messagePotable
	} else {
		v.Headline, v.Message = headlineNotPotable, messageNotPotable
	}
	v.Gauge = verdict.ZoneFor(v.Confidence)

	return v, nil
}

func checkPrediction(label int, probabilities []float64) error {
	if label != 0 && label != 1 {
		return core.NewContractViolation("label %d is not a binary class", label)
	}
	if len(probabilities) != 2 {
		return core.NewContractViolation("expected 2 class probabilities, got %d", len(probabilities))
	}
	sum := 0.0
	for i, p := range probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return core.NewContractViolation("probability[%d]=%g outside [0,1]", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return core.NewContractViolation("probabilities sum to %g", sum)
	}
	return nil
}
