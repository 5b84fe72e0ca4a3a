package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aquacheck/adapters/model"
	"aquacheck/app"
	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/internal/interpret"
	"aquacheck/internal/testkit"
	"aquacheck/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRegistry struct {
	records map[core.Hash]*ports.ModelRecord
}

func (m *memoryRegistry) RecordLoad(ctx context.Context, info ports.ModelInfo) (*ports.ModelRecord, error) {
	rec := &ports.ModelRecord{Digest: info.Digest, Path: info.Path, Kind: info.Kind, LoadCount: 1}
	m.records[info.Digest] = rec
	return rec, nil
}

func (m *memoryRegistry) Get(ctx context.Context, digest core.Hash) (*ports.ModelRecord, error) {
	if rec, ok := m.records[digest]; ok {
		return rec, nil
	}
	return nil, core.ErrNotFound
}

func (m *memoryRegistry) List(ctx context.Context, limit int) ([]ports.ModelRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T, classifier ports.Classifier, registry ports.ModelRegistry) *httptest.Server {
	t.Helper()
	analysis := app.NewAnalysisService(water.NewSchema(water.PolicyReject), classifier, interpret.NewEngine(), nil)
	batch := app.NewBatchService(analysis, 2, nil)
	srv := httptest.NewServer(NewHandler(analysis, batch, registry, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

const nominalJSON = `{"ph":7,"hardness":120,"solids":1000,"chloramines":2,"sulfate":300,
"conductivity":400,"organic_carbon":5,"trihalomethanes":40,"turbidity":3}`

func decodeError(t *testing.T, resp *http.Response) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestPredict(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	resp, err := http.Post(srv.URL+"/v1/predict", "application/json", strings.NewReader(nominalJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result app.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Verdict.Potable)
	assert.InDelta(t, testkit.NominalConfidence, result.Verdict.Confidence, 1e-9)
	assert.Equal(t, "Potable", result.Verdict.Headline)
	assert.Empty(t, result.Verdict.Recommendations)
	assert.Equal(t, water.Normal, result.Verdict.Bands[water.PH])
}

func TestPredictErrors(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"out of range under reject policy", strings.Replace(nominalJSON, `"ph":7`, `"ph":15`, 1), http.StatusBadRequest, "OUT_OF_RANGE"},
		{"missing field", `{"ph":7}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", strings.Replace(nominalJSON, `"sulfate"`, `"lead"`, 1), http.StatusBadRequest, "INVALID_INPUT"},
		{"not json", `ph=7`, http.StatusBadRequest, "INVALID_INPUT"},
		{"string value", strings.Replace(nominalJSON, `"ph":7`, `"ph":"seven"`, 1), http.StatusBadRequest, "INVALID_INPUT"},
		{"null value", strings.Replace(nominalJSON, `"ph":7`, `"ph":null`, 1), http.StatusBadRequest, "INVALID_INPUT"},
		{"duplicate name", strings.Replace(nominalJSON, `"sulfate"`, `"PH"`, 1), http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/predict", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			detail := decodeError(t, resp)
			assert.Equal(t, tt.code, detail.Code)
			assert.NotEmpty(t, detail.Message)
		})
	}
}

func TestPredictWithoutModel(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, err := http.Post(srv.URL+"/v1/predict", "application/json", strings.NewReader(nominalJSON))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MODEL_UNAVAILABLE", decodeError(t, resp).Code)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	var h healthResponse
	require.NoError(t, json.NewDecoder(health.Body).Decode(&h))
	assert.False(t, h.ModelLoaded)
	assert.Equal(t, "degraded", h.Status)
}

func TestBatchCSV(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	csv := testkit.DatasetCSV + ",120,1000,2,300,400,5,40,3,1\n"

	resp, err := http.Post(srv.URL+"/v1/batch", "text/csv", strings.NewReader(csv))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report app.BatchReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Scored)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Potable)
	assert.Equal(t, 1, report.Summary.NotPotable)

	require.Len(t, report.Items, 3)
	assert.Equal(t, 2, report.Items[0].Line)
	assert.NotEmpty(t, report.Items[2].Error)
}

func TestBatchJSON(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	body := `{"samples":[` + nominalJSON + `,` + nominalJSON + `]}`
	resp, err := http.Post(srv.URL+"/v1/batch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report app.BatchReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 2, report.Summary.Potable)
	assert.Equal(t, 1, report.Items[0].Line)
}

func TestBatchJSONNullValueIsMissing(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	withNull := strings.Replace(nominalJSON, `"turbidity":3`, `"turbidity":null`, 1)
	body := `{"samples":[` + nominalJSON + `,` + withNull + `]}`
	resp, err := http.Post(srv.URL+"/v1/batch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report app.BatchReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.Summary.Scored)
	assert.Equal(t, 1, report.Summary.Failed)
	require.Len(t, report.Items, 2)
	assert.Nil(t, report.Items[1].Result)
	assert.Contains(t, report.Items[1].Error, "required parameter missing")
	assert.Contains(t, report.Items[1].Error, "turbidity")
}

func TestBatchEmpty(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	resp, err := http.Post(srv.URL+"/v1/batch", "application/json", bytes.NewBufferString(`{"samples":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSchema(t *testing.T) {
	srv := newTestServer(t, testkit.DemoClassifier(t), nil)

	resp, err := http.Get(srv.URL + "/v1/schema")
	require.NoError(t, err)
	defer resp.Body.Close()

	var schema schemaResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	assert.Equal(t, water.PolicyReject, schema.Policy)
	require.Len(t, schema.Parameters, water.Count)
	assert.Equal(t, water.Parameters[:], schema.Order)
	assert.Equal(t, water.PH, schema.Parameters[0].Parameter)
	assert.Equal(t, 6.5, schema.Parameters[0].Nominal.Min)
}

func TestModel(t *testing.T) {
	classifier := testkit.DemoClassifier(t)
	registry := &memoryRegistry{records: map[core.Hash]*ports.ModelRecord{}}
	_, err := registry.RecordLoad(context.Background(), classifier.Info())
	require.NoError(t, err)

	srv := newTestServer(t, classifier, registry)

	resp, err := http.Get(srv.URL + "/v1/model")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m modelResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Equal(t, model.KindRandomForest, m.Model.Kind)
	assert.Equal(t, 3, m.Model.NTrees)
	require.NotNil(t, m.Registry)
	assert.Equal(t, classifier.Info().Digest, m.Registry.Digest)
}

func TestModelWithoutRegistryEntry(t *testing.T) {
	registry := &memoryRegistry{records: map[core.Hash]*ports.ModelRecord{}}
	srv := newTestServer(t, testkit.DemoClassifier(t), registry)

	resp, err := http.Get(srv.URL + "/v1/model")
	require.NoError(t, err)
	defer resp.Body.Close()

	var m modelResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Nil(t, m.Registry)
}
