package recommend

import (
	"errors"
	"fmt"
)

// Flow identifies one of the two recommendation forms.
type Flow string

const (
	FlowCrop       Flow = "crop"
	FlowFertilizer Flow = "fertilizer"
)

var (
	ErrUnknownFlow  = errors.New("unknown flow")
	ErrNoPrediction = errors.New("predictor returned no classes")
)

func ParseFlow(s string) (Flow, error) {
	switch Flow(s) {
	case FlowCrop, FlowFertilizer:
		return Flow(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFlow, s)
	}
}

// Result is either Recommended or Failed.
type Result interface {
	result()
}

type Recommended struct {
	Flow  Flow
	Index int
	Label Label
}

// Failed carries the reason a single invocation could not produce a label.
type Failed struct {
	Flow Flow
	Err  error
}

func (Recommended) result() {}
func (Failed) result()      {}

// Message renders a result as the plain-text line shown to the user.
func Message(r Result) string {
	switch v := r.(type) {
	case Recommended:
		return fmt.Sprintf("Recommended %s: %s", noun(v.Flow), tableFor(v.Flow).Display(v.Label))
	case Failed:
		return fmt.Sprintf("%s: %v", errorPrefix(v.Flow), v.Err)
	default:
		return ""
	}
}

// LabelName is the display name of a successful result.
func LabelName(r Recommended) string {
	return tableFor(r.Flow).Display(r.Label)
}

func noun(f Flow) string {
	if f == FlowFertilizer {
		return "Fertilizer"
	}
	return "Crop"
}

func errorPrefix(f Flow) string {
	if f == FlowFertilizer {
		return "Error in fertilizer recommendation"
	}
	return "Error in crop prediction"
}

func tableFor(f Flow) LabelTable {
	if f == FlowFertilizer {
		return FertilizerLabels
	}
	return CropLabels
}

// FieldsFor returns the form fields of a flow in vector order.
func FieldsFor(f Flow) []Field {
	if f == FlowFertilizer {
		return FertilizerFields
	}
	return CropFields
}
