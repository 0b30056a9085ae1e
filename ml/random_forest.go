package ml

import "fmt"

// RandomForest predicts by majority vote over its trees. Ties go to the lowest
// class index so the result does not depend on tree order.
type RandomForest struct {
	trees     []*DecisionTree
	nFeatures int
}

func NewRandomForest(trees [][]TreeNode, nFeatures int) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrCorruptArtifact)
	}
	forest := &RandomForest{trees: make([]*DecisionTree, 0, len(trees)), nFeatures: nFeatures}
	for i, nodes := range trees {
		tree, err := NewDecisionTree(nodes, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		forest.trees = append(forest.trees, tree)
	}
	return forest, nil
}

func (rf *RandomForest) Predict(rows [][]float64) ([]int, error) {
	if len(rf.trees) == 0 {
		return nil, ErrNotLoaded
	}
	votes := make([]map[int]int, len(rows))
	for i := range votes {
		votes[i] = make(map[int]int)
	}
	for _, tree := range rf.trees {
		labels, err := tree.Predict(rows)
		if err != nil {
			return nil, err
		}
		for i, label := range labels {
			votes[i][label]++
		}
	}

	result := make([]int, len(rows))
	for i, counts := range votes {
		result[i] = majorityVote(counts)
	}
	return result, nil
}

func (rf *RandomForest) NFeatures() int {
	return rf.nFeatures
}

func majorityVote(counts map[int]int) int {
	bestLabel := 0
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < bestLabel) {
			bestLabel = label
			bestCount = count
		}
	}
	return bestLabel
}
