package ml

import (
	"encoding/json"
	"fmt"
)

// ArtifactVersion is the only envelope version this build understands.
const ArtifactVersion = 1

const (
	FormatDecisionTree = "decision_tree"
	FormatRandomForest = "random_forest"
)

// Artifact is the persisted form of a classifier exported by the training
// pipeline. Trees are stored in pre-order: every child index is greater than
// its parent's.
type Artifact struct {
	Format    string       `json:"format"`
	Version   int          `json:"version"`
	NFeatures int          `json:"n_features"`
	Nodes     []TreeNode   `json:"nodes,omitempty"`
	Trees     [][]TreeNode `json:"trees,omitempty"`
}

func DecodeArtifact(payload []byte) (*Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	if artifact.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrArtifactVersion, artifact.Version, ArtifactVersion)
	}
	if artifact.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive", ErrCorruptArtifact)
	}
	return &artifact, nil
}

func EncodeArtifact(artifact Artifact) ([]byte, error) {
	if artifact.Version == 0 {
		artifact.Version = ArtifactVersion
	}
	return json.Marshal(artifact)
}
