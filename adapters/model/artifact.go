package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"aquacheck/domain/water"

	"github.com/tidwall/gjson"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is the artifact layout this package reads and writes.
const FormatVersion = 1

// Supported estimator kinds
const (
	KindRandomForest       = "random_forest"
	KindLogisticRegression = "logistic_regression"
)

// Encoding is the on-disk serialization of an artifact
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingMsgpack Encoding = "msgpack"
)

// Artifact is the exported description of a fitted binary classifier.
type Artifact struct {
	FormatVersion int      `json:"format_version" msgpack:"format_version"`
	Kind          string   `json:"kind" msgpack:"kind"`
	NFeatures     int      `json:"n_features" msgpack:"n_features"`
	Classes       []int    `json:"classes" msgpack:"classes"`
	FeatureNames  []string `json:"feature_names,omitempty" msgpack:"feature_names,omitempty"`
	TrainedOn     string   `json:"trained_on,omitempty" msgpack:"trained_on,omitempty"`

	// random_forest
	Trees []Tree `json:"trees,omitempty" msgpack:"trees,omitempty"`

	// logistic_regression
	Coef      []float64 `json:"coef,omitempty" msgpack:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty" msgpack:"intercept,omitempty"`
}

// Tree is one decision tree stored as a flat node array, root first.
type Tree struct {
	Nodes []Node `json:"nodes" msgpack:"nodes"`
}

// Node follows the scikit-learn tree layout: leaves have Left == Right == -1
// and samples with x[Feature] <= Threshold go left.
type Node struct {
	Feature   int        `json:"feature" msgpack:"feature"`
	Threshold float64    `json:"threshold" msgpack:"threshold"`
	Left      int        `json:"left" msgpack:"left"`
	Right     int        `json:"right" msgpack:"right"`
	Value     [2]float64 `json:"value" msgpack:"value"`
}

// IsLeaf reports whether n has no children
func (n Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// EncodingFor picks an encoding from a file name, sniffing the payload when
// the extension is not conclusive.
func EncodingFor(path string, data []byte) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON
	case ".msgpack", ".mpk", ".bin":
		return EncodingMsgpack
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return EncodingJSON
	}
	return EncodingMsgpack
}

// Decode parses an artifact. JSON headers are inspected first so an incompatible
// artifact is reported without decoding every tree.
func Decode(data []byte, enc Encoding) (*Artifact, error) {
	var a Artifact
	switch enc {
	case EncodingJSON:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("artifact is not valid JSON")
		}
		if err := inspectHeader(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode JSON artifact: %w", err)
		}
	case EncodingMsgpack:
		if err := msgpack.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode msgpack artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact encoding %q", enc)
	}
	return &a, nil
}

// Encode serializes an artifact
func Encode(a *Artifact, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingJSON:
		return json.MarshalIndent(a, "", "  ")
	case EncodingMsgpack:
		return msgpack.Marshal(a)
	}
	return nil, fmt.Errorf("unsupported artifact encoding %q", enc)
}

func inspectHeader(data []byte) error {
	header := gjson.GetManyBytes(data, "format_version", "kind", "n_features")
	if !header[0].Exists() || !header[1].Exists() || !header[2].Exists() {
		return fmt.Errorf("artifact header must declare format_version, kind and n_features")
	}
	if v := header[0].Int(); v != FormatVersion {
		return fmt.Errorf("unsupported format_version %d (want %d)", v, FormatVersion)
	}
	if n := header[2].Int(); n != water.Count {
		return fmt.Errorf("artifact expects %d features, schema has %d", n, water.Count)
	}
	return nil
}

// Check validates the artifact against the fixed nine-feature schema and the
// structural rules of its estimator kind.
func (a *Artifact) Check() error {
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported format_version %d (want %d)", a.FormatVersion, FormatVersion)
	}
	if a.NFeatures != water.Count {
		return fmt.Errorf("artifact expects %d features, schema has %d", a.NFeatures, water.Count)
	}
	if len(a.Classes) != 2 || a.Classes[0] != 0 || a.Classes[1] != 1 {
		return fmt.Errorf("classes must be [0 1], got %v", a.Classes)
	}
	if len(a.FeatureNames) > 0 {
		if len(a.FeatureNames) != water.Count {
			return fmt.Errorf("feature_names has %d entries, want %d", len(a.FeatureNames), water.Count)
		}
		for i, name := range a.FeatureNames {
			p, err := water.ParseParameter(name)
			if err != nil || p != water.Parameters[i] {
				return fmt.Errorf("feature %d is %q, want %q", i, name, water.Parameters[i])
			}
		}
	}

	switch a.Kind {
	case KindRandomForest:
		if len(a.Trees) == 0 {
			return fmt.Errorf("random forest has no trees")
		}
		for i, t := range a.Trees {
			if err := t.check(); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
	case KindLogisticRegression:
		if len(a.Coef) != water.Count {
			return fmt.Errorf("logistic regression has %d coefficients, want %d", len(a.Coef), water.Count)
		}
		if !finite(a.Coef...) || !finite(a.Intercept) {
			return fmt.Errorf("logistic regression has non-finite parameters")
		}
	default:
		return fmt.Errorf("unsupported estimator kind %q", a.Kind)
	}
	return nil
}

// check enforces that children come after their parent, which also rules out
// cycles, and that every leaf carries a usable class distribution.
func (t Tree) check() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			if !finite(n.Value[:]...) || n.Value[0] < 0 || n.Value[1] < 0 || n.Value[0]+n.Value[1] <= 0 {
				return fmt.Errorf("leaf %d has invalid class weights %v", i, n.Value)
			}
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
		if n.Feature < 0 || n.Feature >= water.Count {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		if !finite(n.Threshold) {
			return fmt.Errorf("node %d has non-finite threshold %v", i, n.Threshold)
		}
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
