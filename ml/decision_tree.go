package ml

import "fmt"

type DecisionTree struct {
	nodes     []TreeNode
	nFeatures int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree checks the node layout once so Predict never has to guard
// against cycles or dangling children.
func NewDecisionTree(nodes []TreeNode, nFeatures int) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: tree has no nodes", ErrCorruptArtifact)
	}
	if nFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive", ErrCorruptArtifact)
	}
	for idx, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= nFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d of %d", ErrCorruptArtifact, idx, node.FeatureIdx, nFeatures)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= idx || child >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d has invalid child %d", ErrCorruptArtifact, idx, child)
			}
		}
	}
	return &DecisionTree{nodes: nodes, nFeatures: nFeatures}, nil
}

func (dt *DecisionTree) Predict(rows [][]float64) ([]int, error) {
	if len(dt.nodes) == 0 {
		return nil, ErrNotLoaded
	}
	labels := make([]int, 0, len(rows))
	for i, row := range rows {
		if len(row) != dt.nFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, i, len(row), dt.nFeatures)
		}
		labels = append(labels, dt.classify(row))
	}
	return labels, nil
}

// NFeatures reports the row width the tree was exported with.
func (dt *DecisionTree) NFeatures() int {
	return dt.nFeatures
}

// classify relies on NewDecisionTree: children always point forward and
// inside the slice, so the walk ends at a leaf.
func (dt *DecisionTree) classify(features []float64) int {
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}
