package model

import (
	"aquacheck/domain/water"
)

func stump(feature int, threshold float64, left, right [2]float64) Tree {
	return Tree{Nodes: []Node{
		{Feature: feature, Threshold: threshold, Left: 1, Right: 2},
		{Feature: -2, Threshold: -2, Left: -1, Right: -1, Value: left},
		{Feature: -2, Threshold: -2, Left: -1, Right: -1, Value: right},
	}}
}

// DemoArtifact returns a small hand-built forest that favours samples inside
// the nominal pH, solids and turbidity bands. It lets the service run before
// a trained artifact has been exported and is not a substitute for one.
func DemoArtifact() *Artifact {
	names := make([]string, water.Count)
	for i, p := range water.Parameters {
		names[i] = p.String()
	}

	ph := water.PH.Index()
	phTree := Tree{Nodes: []Node{
		{Feature: ph, Threshold: 6.5, Left: 1, Right: 2},
		{Feature: -2, Threshold: -2, Left: -1, Right: -1, Value: [2]float64{9, 1}},
		{Feature: ph, Threshold: 8.5, Left: 3, Right: 4},
		{Feature: -2, Threshold: -2, Left: -1, Right: -1, Value: [2]float64{3, 7}},
		{Feature: -2, Threshold: -2, Left: -1, Right: -1, Value: [2]float64{8, 2}},
	}}

	return &Artifact{
		FormatVersion: FormatVersion,
		Kind:          KindRandomForest,
		NFeatures:     water.Count,
		Classes:       []int{0, 1},
		FeatureNames:  names,
		TrainedOn:     "demo",
		Trees: []Tree{
			phTree,
			stump(water.Solids.Index(), 1500, [2]float64{4, 6}, [2]float64{9, 1}),
			stump(water.Turbidity.Index(), 5, [2]float64{4, 6}, [2]float64{8, 2}),
		},
	}
}
