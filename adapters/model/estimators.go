package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// estimator returns [p0, p1] for a feature vector in declaration order.
type estimator interface {
	proba(x []float64) [2]float64
}

type forest struct {
	trees []Tree
}

func newForest(trees []Tree) *forest {
	// Leaves are normalized once so inference only averages.
	normalized := make([]Tree, len(trees))
	for i, t := range trees {
		nodes := make([]Node, len(t.Nodes))
		copy(nodes, t.Nodes)
		for j := range nodes {
			if nodes[j].IsLeaf() {
				v := nodes[j].Value[:]
				floats.Scale(1/floats.Sum(v), v)
			}
		}
		normalized[i] = Tree{Nodes: nodes}
	}
	return &forest{trees: normalized}
}

func (f *forest) proba(x []float64) [2]float64 {
	sum := make([]float64, 2)
	for _, t := range f.trees {
		leaf := t.leaf(x)
		floats.Add(sum, leaf.Value[:])
	}
	floats.Scale(1/float64(len(f.trees)), sum)
	return [2]float64{sum[0], sum[1]}
}

func (t Tree) leaf(x []float64) Node {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type logistic struct {
	coef      []float64
	intercept float64
}

func (l *logistic) proba(x []float64) [2]float64 {
	z := floats.Dot(l.coef, x) + l.intercept
	p1 := 1 / (1 + math.Exp(-z))
	return [2]float64{1 - p1, p1}
}

// argmax picks the first class on ties, matching numpy.
func argmax(p [2]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}
