package ml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Source returns the raw bytes of a named artifact.
type Source interface {
	ReadArtifact(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads artifacts from disk. Relative names resolve against Dir.
type FileSource struct {
	Dir string
}

func (s FileSource) ReadArtifact(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := name
	if !filepath.IsAbs(path) && s.Dir != "" {
		path = filepath.Join(s.Dir, path)
	}
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	return payload, err
}

// ModelSpec names one artifact and the format it is expected to hold.
type ModelSpec struct {
	Type string
	Path string
}

// LoadModel decodes payload into a predictor of the given type.
func LoadModel(modelType string, payload []byte) (Predictor, error) {
	artifact, err := DecodeArtifact(payload)
	if err != nil {
		return nil, err
	}
	if artifact.Format != modelType {
		return nil, fmt.Errorf("%w: artifact holds %q, configured as %q", ErrUnsupportedModel, artifact.Format, modelType)
	}
	switch modelType {
	case FormatDecisionTree:
		return NewDecisionTree(artifact.Nodes, artifact.NFeatures)
	case FormatRandomForest:
		return NewRandomForest(artifact.Trees, artifact.NFeatures)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, modelType)
	}
}

// LoadModels reads both artifacts. Either failure fails the whole set.
func LoadModels(ctx context.Context, src Source, crop, fertilizer ModelSpec) (*Models, error) {
	var cropModel, fertilizerModel Predictor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := loadSpec(gctx, src, crop)
		if err != nil {
			return fmt.Errorf("crop model %s: %w", crop.Path, err)
		}
		cropModel = p
		return nil
	})
	g.Go(func() error {
		p, err := loadSpec(gctx, src, fertilizer)
		if err != nil {
			return fmt.Errorf("fertilizer model %s: %w", fertilizer.Path, err)
		}
		fertilizerModel = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewModels(cropModel, fertilizerModel)
}

func loadSpec(ctx context.Context, src Source, spec ModelSpec) (Predictor, error) {
	payload, err := src.ReadArtifact(ctx, spec.Path)
	if err != nil {
		return nil, err
	}
	return LoadModel(spec.Type, payload)
}
