package ml

import (
	"errors"
	"testing"
)

func twoLeafTree() []TreeNode {
	return []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 2, IsLeaf: true},
	}
}

func TestDecisionTreePredict(t *testing.T) {
	model, err := NewDecisionTree(twoLeafTree(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := model.Predict([][]float64{{0.15, 0.15}, {0.9, 0.8}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 || labels[0] != 0 || labels[1] != 2 {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestDecisionTreeShapeMismatch(t *testing.T) {
	model, err := NewDecisionTree(twoLeafTree(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = model.Predict([][]float64{{0.1, 0.2, 0.3}})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestNewDecisionTreeRejectsBackEdges(t *testing.T) {
	nodes := twoLeafTree()
	nodes[0].RightChild = 0
	if _, err := NewDecisionTree(nodes, 2); !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("expected corrupt artifact, got %v", err)
	}
}

func TestNewDecisionTreeRejectsChildPastEnd(t *testing.T) {
	nodes := twoLeafTree()
	nodes[0].LeftChild = len(nodes)
	if _, err := NewDecisionTree(nodes, 2); !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("expected corrupt artifact, got %v", err)
	}
}

func TestNewDecisionTreeRejectsUnknownFeature(t *testing.T) {
	nodes := twoLeafTree()
	nodes[0].FeatureIdx = 5
	if _, err := NewDecisionTree(nodes, 2); !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("expected corrupt artifact, got %v", err)
	}
}

func TestRandomForestMajorityVote(t *testing.T) {
	alwaysOne := []TreeNode{{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true}}
	forest, err := NewRandomForest([][]TreeNode{twoLeafTree(), alwaysOne, alwaysOne}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := forest.Predict([][]float64{{0.9, 0.9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 1 {
		t.Fatalf("expected label 1, got %d", labels[0])
	}
}

func TestRandomForestTieGoesToLowestLabel(t *testing.T) {
	forest, err := NewRandomForest([][]TreeNode{twoLeafTree(), twoLeafTree()}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := majorityVote(map[int]int{4: 2, 3: 2, 9: 1}); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	labels, err := forest.Predict([][]float64{{0.1, 0.1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != 0 {
		t.Fatalf("expected label 0, got %d", labels[0])
	}
}
