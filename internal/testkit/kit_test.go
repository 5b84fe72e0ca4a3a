package testkit

import (
	"context"
	"testing"

	"aquacheck/domain/water"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixturesAgreeWithDemoClassifier(t *testing.T) {
	service := AnalysisService(t, water.PolicyReject)

	nominal, err := service.HandleSubmission(context.Background(), NominalValues())
	require.NoError(t, err)
	assert.True(t, nominal.Verdict.Potable)
	assert.InDelta(t, NominalConfidence, nominal.Verdict.Confidence, 1e-12)

	polluted, err := service.HandleSubmission(context.Background(), PollutedValues())
	require.NoError(t, err)
	assert.False(t, polluted.Verdict.Potable)
	assert.Len(t, polluted.Verdict.Recommendations, 5)
}

func TestWriteDemoModelEncodings(t *testing.T) {
	for _, name := range []string{"forest.json", "forest.msgpack"} {
		path := WriteDemoModel(t, name)
		assert.FileExists(t, path)
	}
}
