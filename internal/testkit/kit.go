// Package testkit provides fixtures shared by package tests: reference
// samples, the demonstration classifier and dataset-shaped CSV.
package testkit

import (
	"os"
	"path/filepath"
	"testing"

	"aquacheck/adapters/model"
	"aquacheck/app"
	"aquacheck/domain/water"
	"aquacheck/internal/interpret"

	"github.com/stretchr/testify/require"
)

// NominalValues is a sample with every measurement inside its healthy band.
// The demo classifier scores it potable with confidence 0.6333.
func NominalValues() map[string]float64 {
	return map[string]float64{
		"ph": 7.0, "hardness": 120, "solids": 1000, "chloramines": 2.0, "sulfate": 300,
		"conductivity": 400, "organic_carbon": 5.0, "trihalomethanes": 40, "turbidity": 3.0,
	}
}

// PollutedValues triggers the pH, hardness, solids, chloramines and
// turbidity recommendations. The demo classifier scores it not potable.
func PollutedValues() map[string]float64 {
	values := NominalValues()
	values["ph"] = 9.2
	values["hardness"] = 220
	values["solids"] = 1800
	values["chloramines"] = 5.0
	values["turbidity"] = 6.0
	return values
}

// NominalConfidence is the demo forest's potable probability for NominalValues.
const NominalConfidence = (0.7 + 0.6 + 0.6) / 3

// DatasetHeader mirrors the public water potability dataset header.
const DatasetHeader = "ph,Hardness,Solids,Chloramines,Sulfate,Conductivity,Organic_carbon,Trihalomethanes,Turbidity,Potability"

// DatasetCSV holds one nominal and one polluted row under DatasetHeader.
const DatasetCSV = DatasetHeader + "\n" +
	"7,120,1000,2,300,400,5,40,3,1\n" +
	"9.2,220,1800,5,300,400,5,40,6,0\n"

// DemoClassifier returns the demonstration forest with digest and size set,
// as if it had been loaded from a JSON file.
func DemoClassifier(t testing.TB) *model.Handle {
	t.Helper()
	data, err := model.Encode(model.DemoArtifact(), model.EncodingJSON)
	require.NoError(t, err)
	h, err := model.FromBytes(data, model.EncodingJSON)
	require.NoError(t, err)
	return h
}

// WriteDemoModel writes the demonstration forest to a temp dir and returns
// its path. The extension selects the encoding.
func WriteDemoModel(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data, err := model.Encode(model.DemoArtifact(), model.EncodingFor(path, nil))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// AnalysisService wires the demo classifier with the given input policy.
func AnalysisService(t testing.TB, policy water.InputPolicy) *app.AnalysisService {
	t.Helper()
	return app.NewAnalysisService(water.NewSchema(policy), DemoClassifier(t), interpret.NewEngine(), nil)
}
