package ml

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrArtifactVersion  = errors.New("unsupported artifact version")
	ErrCorruptArtifact  = errors.New("corrupt model artifact")
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrShapeMismatch    = errors.New("feature shape mismatch")
	ErrNotLoaded        = errors.New("model not loaded")
)

// Predictor classifies rows of features. Implementations are read-only after
// load and safe for concurrent use.
type Predictor interface {
	Predict(rows [][]float64) ([]int, error)
}

// Models holds the two predictors for the lifetime of the process.
type Models struct {
	crop       Predictor
	fertilizer Predictor
}

// NewModels builds the model set. Both predictors are required.
func NewModels(crop, fertilizer Predictor) (*Models, error) {
	if crop == nil {
		return nil, fmt.Errorf("crop: %w", ErrNotLoaded)
	}
	if fertilizer == nil {
		return nil, fmt.Errorf("fertilizer: %w", ErrNotLoaded)
	}
	return &Models{crop: crop, fertilizer: fertilizer}, nil
}

func (m *Models) Crop() Predictor {
	return m.crop
}

func (m *Models) Fertilizer() Predictor {
	return m.fertilizer
}
