package model

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"aquacheck/domain/core"
	"aquacheck/domain/water"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nominal = water.ParameterSet{
		PH: 7.0, Hardness: 120, Solids: 1000, Chloramines: 2.0, Sulfate: 300,
		Conductivity: 400, OrganicCarbon: 5.0, Trihalomethanes: 40, Turbidity: 3.0,
	}
	polluted = water.ParameterSet{
		PH: 9.2, Hardness: 220, Solids: 1800, Chloramines: 5.0, Sulfate: 300,
		Conductivity: 400, OrganicCarbon: 5.0, Trihalomethanes: 40, Turbidity: 6.0,
	}
)

func writeArtifact(t *testing.T, name string, a *Artifact, enc Encoding) string {
	t.Helper()
	data, err := Encode(a, enc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadDemoForestJSON(t *testing.T) {
	path := writeArtifact(t, "forest.json", DemoArtifact(), EncodingJSON)

	h, err := Load(path)
	require.NoError(t, err)

	info := h.Info()
	assert.Equal(t, KindRandomForest, info.Kind)
	assert.Equal(t, 3, info.NTrees)
	assert.Equal(t, water.Count, info.NFeatures)
	assert.Equal(t, path, info.Path)
	assert.Len(t, info.Digest.String(), 64)

	pred, err := h.Predict(nominal)
	require.NoError(t, err)
	assert.Equal(t, 1, pred.Label)
	assert.InDelta(t, (0.7+0.6+0.6)/3, pred.Probabilities[1], 1e-12)
	assert.InDelta(t, 1.0, pred.Probabilities[0]+pred.Probabilities[1], 1e-12)

	pred, err = h.Predict(polluted)
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Label)
	assert.InDelta(t, (0.8+0.9+0.8)/3, pred.Probabilities[0], 1e-12)
}

func TestLoadMsgpackMatchesJSON(t *testing.T) {
	jsonHandle, err := Load(writeArtifact(t, "forest.json", DemoArtifact(), EncodingJSON))
	require.NoError(t, err)
	mpHandle, err := Load(writeArtifact(t, "forest.msgpack", DemoArtifact(), EncodingMsgpack))
	require.NoError(t, err)

	for _, sample := range []water.ParameterSet{nominal, polluted} {
		a, err := jsonHandle.Predict(sample)
		require.NoError(t, err)
		b, err := mpHandle.Predict(sample)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
	assert.NotEqual(t, jsonHandle.Info().Digest, mpHandle.Info().Digest)
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	wrongCount := DemoArtifact()
	wrongCount.NFeatures = 8
	permuted := DemoArtifact()
	permuted.FeatureNames[0], permuted.FeatureNames[1] = permuted.FeatureNames[1], permuted.FeatureNames[0]
	badKind := DemoArtifact()
	badKind.Kind = "gradient_boosting"
	cyclic := DemoArtifact()
	cyclic.Trees[1].Nodes[0].Left = 0
	nanThreshold := DemoArtifact()
	nanThreshold.Trees[0].Nodes[0].Threshold = math.NaN()
	infLeaf := DemoArtifact()
	infLeaf.Trees[1].Nodes[2].Value = [2]float64{math.Inf(1), 1}
	infCoef := &Artifact{
		FormatVersion: FormatVersion,
		Kind:          KindLogisticRegression,
		NFeatures:     water.Count,
		Classes:       []int{0, 1},
		Coef:          []float64{0, 0, 0, math.Inf(-1), 0, 0, 0, 0, 0},
	}
	nanIntercept := &Artifact{
		FormatVersion: FormatVersion,
		Kind:          KindLogisticRegression,
		NFeatures:     water.Count,
		Classes:       []int{0, 1},
		Coef:          make([]float64, water.Count),
		Intercept:     math.NaN(),
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"format_version": 1, "kind": `), 0o644))

	tests := []struct {
		name string
		path string
		msg  string
	}{
		{"missing", filepath.Join(dir, "nope.json"), "not found"},
		{"pickle", filepath.Join(dir, "water_potability_model.pkl"), "pickled"},
		{"corrupt", corrupt, "not valid JSON"},
		{"feature count", writeArtifact(t, "count.json", wrongCount, EncodingJSON), "expects 8 features"},
		{"feature count msgpack", writeArtifact(t, "count.msgpack", wrongCount, EncodingMsgpack), "expects 8 features"},
		{"permuted features", writeArtifact(t, "perm.json", permuted, EncodingJSON), "feature 0"},
		{"unknown kind", writeArtifact(t, "kind.json", badKind, EncodingJSON), "unsupported estimator kind"},
		{"cyclic tree", writeArtifact(t, "cyclic.json", cyclic, EncodingJSON), "invalid children"},
		{"nan threshold msgpack", writeArtifact(t, "nan.msgpack", nanThreshold, EncodingMsgpack), "non-finite threshold"},
		{"infinite leaf msgpack", writeArtifact(t, "inf.msgpack", infLeaf, EncodingMsgpack), "invalid class weights"},
		{"infinite coefficient msgpack", writeArtifact(t, "coef.msgpack", infCoef, EncodingMsgpack), "non-finite parameters"},
		{"nan intercept msgpack", writeArtifact(t, "intercept.msgpack", nanIntercept, EncodingMsgpack), "non-finite parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrModelLoad)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLogisticRegression(t *testing.T) {
	a := &Artifact{
		FormatVersion: FormatVersion,
		Kind:          KindLogisticRegression,
		NFeatures:     water.Count,
		Classes:       []int{0, 1},
		Coef:          []float64{0, 0, 0, 0, 0, 0, 0, 0, -1},
		Intercept:     4,
	}
	h, err := FromArtifact(a)
	require.NoError(t, err)

	// turbidity 3 -> z = 1
	pred, err := h.Predict(nominal)
	require.NoError(t, err)
	assert.Equal(t, 1, pred.Label)
	assert.InDelta(t, 0.7310585786, pred.Probabilities[1], 1e-9)

	// turbidity 6 -> z = -2
	pred, err = h.Predict(polluted)
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Label)
	assert.InDelta(t, 1.0, pred.Probabilities[0]+pred.Probabilities[1], 1e-12)

	a.Coef = a.Coef[:5]
	_, err = FromArtifact(a)
	assert.Error(t, err)
}

func TestTieGoesToClassZero(t *testing.T) {
	a := DemoArtifact()
	a.Trees = []Tree{stump(0, 7, [2]float64{1, 1}, [2]float64{1, 1})}
	h, err := FromArtifact(a)
	require.NoError(t, err)

	pred, err := h.Predict(nominal)
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Label)
	assert.Equal(t, [2]float64{0.5, 0.5}, pred.Probabilities)
}

func TestPredictRejectsNonFinite(t *testing.T) {
	h, err := FromArtifact(DemoArtifact())
	require.NoError(t, err)

	bad := nominal
	bad.Sulfate = math.Inf(1)
	_, err = h.Predict(bad)
	assert.ErrorIs(t, err, core.ErrContractViolation)
}

func TestConcurrentPredict(t *testing.T) {
	h, err := FromArtifact(DemoArtifact())
	require.NoError(t, err)
	want, err := h.Predict(nominal)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := h.Predict(nominal)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestFromArtifactDoesNotMutateInput(t *testing.T) {
	a := DemoArtifact()
	_, err := FromArtifact(a)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{9, 1}, a.Trees[0].Nodes[1].Value)
}

func TestEncodingFor(t *testing.T) {
	assert.Equal(t, EncodingJSON, EncodingFor("m.json", nil))
	assert.Equal(t, EncodingMsgpack, EncodingFor("m.msgpack", nil))
	assert.Equal(t, EncodingJSON, EncodingFor("model", []byte("  {\"kind\":1}")))
	assert.Equal(t, EncodingMsgpack, EncodingFor("model", []byte{0x8a}))
}
