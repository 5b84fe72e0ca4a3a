package app

import (
	"context"
	"time"

	"aquacheck/domain/core"
	"aquacheck/domain/verdict"
	"aquacheck/domain/water"
	"aquacheck/internal"
	"aquacheck/internal/interpret"
	"aquacheck/ports"
)

// AnalysisService is the single entry point every presentation surface uses:
// validate, predict, interpret.
type AnalysisService struct {
	schema     *water.Schema
	classifier ports.Classifier
	engine     *interpret.Engine
	logger     *internal.Logger
}

// AnalysisResult is the outcome of one submission
type AnalysisResult struct {
	ID          core.SubmissionID  `json:"id"`
	Params      water.ParameterSet `json:"parameters"`
	Adjustments []water.Adjustment `json:"adjustments,omitempty"`
	Prediction  ports.Prediction   `json:"prediction"`
	Verdict     verdict.Verdict    `json:"verdict"`
	ModelDigest core.Hash          `json:"model_digest"`
	Duration    time.Duration      `json:"duration_ns"`
}

// NewAnalysisService creates an analysis service. The classifier is shared
// read-only; a nil classifier makes every submission fail with
// core.ErrModelNotLoaded.
func NewAnalysisService(schema *water.Schema, classifier ports.Classifier, engine *interpret.Engine, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		schema:     schema,
		classifier: classifier,
		engine:     engine,
		logger:     logger.With("Analysis"),
	}
}

// Schema returns the validation schema in use
func (s *AnalysisService) Schema() *water.Schema {
	return s.schema
}

// Model describes the loaded classifier
func (s *AnalysisService) Model() (ports.ModelInfo, bool) {
	if s.classifier == nil {
		return ports.ModelInfo{}, false
	}
	return s.classifier.Info(), true
}

// HandleSubmission validates raw named measurements and analyzes them.
func (s *AnalysisService) HandleSubmission(ctx context.Context, values map[string]float64) (*AnalysisResult, error) {
	params, adjustments, err := s.schema.ValidateSet(values)
	if err != nil {
		s.logger.Debug("rejected submission: %v", err)
		return nil, err
	}
	for _, adj := range adjustments {
		s.logger.Info("clamped %s from %g to %g", adj.Parameter, adj.Submitted, adj.Applied)
	}

	result, err := s.Analyze(ctx, params)
	if err != nil {
		return nil, err
	}
	result.Adjustments = adjustments
	return result, nil
}

// Analyze runs prediction and interpretation on an already validated sample.
func (s *AnalysisService) Analyze(ctx context.Context, params water.ParameterSet) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.classifier == nil {
		return nil, core.ErrModelNotLoaded
	}

	start := time.Now()
	id := core.NewSubmissionID()

	prediction, err := s.classifier.Predict(params)
	if err != nil {
		s.logger.Error("submission %s: prediction failed: %v", id, err)
		return nil, err
	}

	v, err := s.engine.Interpret(params, prediction.Label, prediction.Probabilities[:])
	if err != nil {
		s.logger.Error("submission %s: interpretation failed: %v", id, err)
		return nil, err
	}

	result := &AnalysisResult{
		ID:          id,
		Params:      params,
		Prediction:  prediction,
		Verdict:     v,
		ModelDigest: s.classifier.Info().Digest,
		Duration:    time.Since(start),
	}
	s.logger.Debug("submission %s: potable=%t confidence=%.3f out_of_band=%d",
		id, v.Potable, v.Confidence, len(v.OutOfBand()))
	return result, nil
}
