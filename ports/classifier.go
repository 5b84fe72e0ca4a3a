package ports

import (
	"aquacheck/domain/core"
	"aquacheck/domain/water"
)

// Prediction is the raw classifier output for one sample
type Prediction struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

// ModelInfo describes the loaded classifier artifact
type ModelInfo struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Digest    core.Hash `json:"digest"`
	NFeatures int       `json:"n_features"`
	NTrees    int       `json:"n_trees,omitempty"`
	Version   int       `json:"format_version"`
	SizeBytes int64     `json:"size_bytes"`
	TrainedOn string    `json:"trained_on,omitempty"`
}

// Classifier is a loaded, immutable potability model. Implementations must be
// safe for concurrent use by multiple goroutines.
type Classifier interface {
	// Predict returns the label in {0,1} and the class probabilities [p0, p1].
	Predict(params water.ParameterSet) (Prediction, error)

	// Info describes the artifact the classifier was loaded from.
	Info() ModelInfo
}
