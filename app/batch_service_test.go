package app

import (
	"context"
	"fmt"
	"testing"

	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticReader struct {
	rows []ports.SampleRow
	err  error
}

func (r staticReader) ReadSamples(ctx context.Context) ([]ports.SampleRow, error) {
	return r.rows, r.err
}

func batchClassifier() *MockClassifier {
	classifier := new(MockClassifier)
	classifier.On("Predict", mock.MatchedBy(func(p water.ParameterSet) bool { return p.PH < 8.5 })).
		Return(ports.Prediction{Label: 1, Probabilities: [2]float64{0.2, 0.8}}, nil)
	classifier.On("Predict", mock.MatchedBy(func(p water.ParameterSet) bool { return p.PH >= 8.5 })).
		Return(ports.Prediction{Label: 0, Probabilities: [2]float64{0.6, 0.4}}, nil)
	return classifier
}

func TestBatchScorePreservesOrderAndSummarizes(t *testing.T) {
	alkaline := nominalValues()
	alkaline["ph"] = 9.5
	alkaline["solids"] = 2000

	rows := []ports.SampleRow{
		{Line: 2, Values: nominalValues()},
		{Line: 3, Values: alkaline},
		{Line: 4, Err: core.NewMissingFieldError("sulfate")},
		{Line: 5, Values: nominalValues()},
	}

	svc := NewBatchService(newService(batchClassifier(), water.PolicyClamp), 2, nil)
	report, err := svc.Score(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, report.Items, 4)
	for i, line := range []int{2, 3, 4, 5} {
		assert.Equal(t, line, report.Items[i].Line)
	}
	assert.True(t, report.Items[0].Result.Verdict.Potable)
	assert.False(t, report.Items[1].Result.Verdict.Potable)
	assert.Nil(t, report.Items[2].Result)
	assert.Contains(t, report.Items[2].Error, "sulfate")

	s := report.Summary
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Scored)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Potable)
	assert.Equal(t, 1, s.NotPotable)
	assert.InDelta(t, (0.8+0.6+0.8)/3, s.MeanConfidence, 1e-12)
	assert.Equal(t, 0.8, s.MedianConfidence)
	assert.Equal(t, 0.6, s.MinConfidence)
	assert.Equal(t, 0.8, s.MaxConfidence)
	assert.Equal(t, map[water.Parameter]int{water.PH: 1, water.Solids: 1}, s.OutOfBand)
}

func TestBatchScoreRowValidationErrors(t *testing.T) {
	bad := nominalValues()
	bad["lead"] = 1

	svc := NewBatchService(newService(batchClassifier(), water.PolicyClamp), 1, nil)
	report, err := svc.Score(context.Background(), []ports.SampleRow{{Line: 2, Values: bad}})
	require.NoError(t, err)
	assert.Contains(t, report.Items[0].Error, "unknown parameter")
	assert.Equal(t, 0, report.Summary.Scored)
	assert.Zero(t, report.Summary.MeanConfidence)
}

func TestBatchScoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewBatchService(newService(batchClassifier(), water.PolicyClamp), 1, nil)
	_, err := svc.Score(ctx, []ports.SampleRow{{Line: 2, Values: nominalValues()}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchScoreReader(t *testing.T) {
	svc := NewBatchService(newService(batchClassifier(), water.PolicyClamp), 4, nil)

	report, err := svc.ScoreReader(context.Background(), staticReader{rows: []ports.SampleRow{{Line: 2, Values: nominalValues()}}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Potable)

	_, err = svc.ScoreReader(context.Background(), staticReader{err: fmt.Errorf("disk on fire")})
	assert.ErrorContains(t, err, "disk on fire")
}
