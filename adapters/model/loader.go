// Package model loads exported classifier artifacts and serves predictions
// from them. A loaded Handle is immutable and safe for concurrent use.
package model

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/ports"
)

// Handle is a loaded classifier
type Handle struct {
	est  estimator
	info ports.ModelInfo
}

var _ ports.Classifier = (*Handle)(nil)

// Load reads and validates the artifact at path. Every failure wraps
// core.ErrModelLoad.
func Load(path string) (*Handle, error) {
	if strings.EqualFold(filepath.Ext(path), ".pkl") || strings.EqualFold(filepath.Ext(path), ".joblib") {
		return nil, core.NewModelLoadError(path, "pickled models cannot be read; export the estimator to JSON or msgpack")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewModelLoadError(path, "artifact not found")
		}
		return nil, fmt.Errorf("%w: %s: %v", core.ErrModelLoad, path, err)
	}

	handle, err := FromBytes(data, EncodingFor(path, data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrModelLoad, path, err)
	}
	handle.info.Path = path

	log.Printf("[Model] Loaded %s artifact %s (digest %s, %d bytes)",
		handle.info.Kind, path, handle.info.Digest.Short(), handle.info.SizeBytes)
	return handle, nil
}

// FromBytes builds a handle from an encoded artifact.
func FromBytes(data []byte, enc Encoding) (*Handle, error) {
	a, err := Decode(data, enc)
	if err != nil {
		return nil, err
	}
	h, err := FromArtifact(a)
	if err != nil {
		return nil, err
	}
	h.info.Digest = core.NewHash(data)
	h.info.SizeBytes = int64(len(data))
	return h, nil
}

// FromArtifact builds a handle from a decoded artifact.
func FromArtifact(a *Artifact) (*Handle, error) {
	if err := a.Check(); err != nil {
		return nil, err
	}

	info := ports.ModelInfo{
		Kind:      a.Kind,
		NFeatures: a.NFeatures,
		Version:   a.FormatVersion,
		TrainedOn: a.TrainedOn,
	}

	var est estimator
	switch a.Kind {
	case KindRandomForest:
		est = newForest(a.Trees)
		info.NTrees = len(a.Trees)
	case KindLogisticRegression:
		coef := make([]float64, len(a.Coef))
		copy(coef, a.Coef)
		est = &logistic{coef: coef, intercept: a.Intercept}
	}

	return &Handle{est: est, info: info}, nil
}

// Predict implements ports.Classifier
func (h *Handle) Predict(params water.ParameterSet) (ports.Prediction, error) {
	if !params.Finite() {
		return ports.Prediction{}, core.NewContractViolation("non-finite measurement passed to classifier")
	}

	p := h.est.proba(params.Vector())
	if p[0] < 0 || p[1] < 0 || math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return ports.Prediction{}, core.NewContractViolation("classifier produced invalid probabilities %v", p)
	}
	return ports.Prediction{Label: argmax(p), Probabilities: p}, nil
}

// Info implements ports.Classifier
func (h *Handle) Info() ports.ModelInfo {
	return h.info
}
