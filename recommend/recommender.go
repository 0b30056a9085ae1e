// Package recommend turns form values into crop and fertilizer recommendations.
package recommend

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"smartfarm/ml"
)

// Observer receives the outcome of every invocation.
type Observer interface {
	Observe(flow string, ok bool, elapsed time.Duration)
}

// Recommender runs both flows against a fixed model set.
type Recommender struct {
	models   *ml.Models
	logger   *zap.Logger
	observer Observer
}

type Option func(*Recommender)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Recommender) {
		r.logger = logger
	}
}

func WithObserver(o Observer) Option {
	return func(r *Recommender) {
		r.observer = o
	}
}

func New(models *ml.Models, opts ...Option) *Recommender {
	r := &Recommender{models: models, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recommender) Crop(in CropInputs) Result {
	return r.run(FlowCrop, r.models.Crop(), in.Vector(), CropLabels)
}

func (r *Recommender) Fertilizer(in FertilizerInputs) Result {
	return r.run(FlowFertilizer, r.models.Fertilizer(), in.Vector(), FertilizerLabels)
}

// Run resolves values against the flow's fields and runs it. Missing keys
// take the field default; out-of-range values yield FieldErrors and no
// prediction.
func (r *Recommender) Run(flow Flow, values map[string]float64) (Result, error) {
	switch flow {
	case FlowCrop:
		vector, err := Resolve(CropFields, values)
		if err != nil {
			return nil, err
		}
		return r.Crop(cropInputsFromVector(vector)), nil
	case FlowFertilizer:
		vector, err := Resolve(FertilizerFields, values)
		if err != nil {
			return nil, err
		}
		return r.Fertilizer(fertilizerInputsFromVector(vector)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, flow)
	}
}

func (r *Recommender) run(flow Flow, p ml.Predictor, vector []float64, table LabelTable) Result {
	start := time.Now()
	res := compute(flow, p, vector, table)
	elapsed := time.Since(start)

	switch v := res.(type) {
	case Recommended:
		r.logger.Debug("recommendation",
			zap.String("flow", string(flow)),
			zap.Float64s("features", vector),
			zap.Int("class", v.Index),
			zap.String("label", table.Display(v.Label)),
			zap.Duration("elapsed", elapsed))
		if _, unknown := v.Label.(UnknownLabel); unknown {
			r.logger.Warn("predictor returned unmapped class", zap.String("flow", string(flow)), zap.Int("class", v.Index))
		}
	case Failed:
		r.logger.Warn("prediction failed", zap.String("flow", string(flow)), zap.Error(v.Err))
	}
	if r.observer != nil {
		_, ok := res.(Recommended)
		r.observer.Observe(string(flow), ok, elapsed)
	}
	return res
}

// compute never panics: a predictor that panics is reported as Failed.
func compute(flow Flow, p ml.Predictor, vector []float64, table LabelTable) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Failed{Flow: flow, Err: fmt.Errorf("predictor panic: %v", rec)}
		}
	}()
	if p == nil {
		return Failed{Flow: flow, Err: ml.ErrNotLoaded}
	}
	indices, err := p.Predict([][]float64{vector})
	if err != nil {
		return Failed{Flow: flow, Err: err}
	}
	if len(indices) == 0 {
		return Failed{Flow: flow, Err: ErrNoPrediction}
	}
	return Recommended{Flow: flow, Index: indices[0], Label: table.Lookup(indices[0])}
}
