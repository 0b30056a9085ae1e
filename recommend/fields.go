package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Widget is the input control a field is rendered with.
type Widget string

const (
	WidgetNumber Widget = "number"
	WidgetSlider Widget = "slider"
)

// Field describes one form input. The order of a flow's fields is the order
// of its feature vector.
type Field struct {
	Key     string
	Label   string
	Widget  Widget
	Bounded bool
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// Range returns the accepted interval. Declared bounds are widened to contain
// the default so the initial form can always be submitted.
func (f Field) Range() (lo, hi float64) {
	lo, hi = f.Min, f.Max
	if f.Default < lo {
		lo = f.Default
	}
	if f.Default > hi {
		hi = f.Default
	}
	return lo, hi
}

// DefaultOutsideBounds reports fields whose shipped default lies outside the
// declared bounds.
func (f Field) DefaultOutsideBounds() bool {
	return f.Bounded && (f.Default < f.Min || f.Default > f.Max)
}

// ErrNotFinite is reported for NaN and infinite values on every field.
var ErrNotFinite = errors.New("must be a number")

func (f Field) Check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if !f.Bounded {
		return nil
	}
	lo, hi := f.Range()
	if !(v >= lo && v <= hi) {
		return fmt.Errorf("must be between %g and %g", lo, hi)
	}
	return nil
}

var CropFields = []Field{
	{Key: "crop_n", Label: "Nitrogen (N)", Widget: WidgetNumber, Bounded: true, Min: 10, Max: 100, Default: 50, Step: 1},
	{Key: "crop_p", Label: "Phosphorus (P)", Widget: WidgetNumber, Bounded: true, Min: 10, Max: 100, Default: 50, Step: 1},
	{Key: "crop_k", Label: "Potassium (K)", Widget: WidgetNumber, Bounded: true, Min: 10, Max: 100, Default: 50, Step: 1},
	{Key: "crop_temp", Label: "Temperature (°C)", Widget: WidgetSlider, Bounded: true, Min: 0, Max: 50, Default: 25, Step: 0.01},
	{Key: "crop_humidity", Label: "Humidity (%)", Widget: WidgetSlider, Bounded: true, Min: 10, Max: 100, Default: 50, Step: 0.01},
	// pH bounds are kept as shipped (10-14) pending product review; see Range.
	{Key: "crop_ph", Label: "Soil pH", Widget: WidgetSlider, Bounded: true, Min: 10, Max: 14, Default: 7, Step: 0.01},
	{Key: "crop_rainfall", Label: "Rainfall (mm)", Widget: WidgetSlider, Bounded: true, Min: 10, Max: 500, Default: 100, Step: 0.01},
}

var FertilizerFields = []Field{
	{Key: "fert_n", Label: "Nitrogen", Widget: WidgetNumber},
	{Key: "fert_p", Label: "Phosphorus", Widget: WidgetNumber},
	{Key: "fert_k", Label: "Potassium", Widget: WidgetNumber},
	{Key: "fert_temp", Label: "Temperature", Widget: WidgetNumber},
	{Key: "fert_humidity", Label: "Humidity", Widget: WidgetNumber},
	{Key: "fert_ph", Label: "pH", Widget: WidgetNumber},
	{Key: "fert_rainfall", Label: "Rainfall", Widget: WidgetNumber},
	{Key: "fert_soil", Label: "Soil Type (Categorical or Numeric)", Widget: WidgetNumber},
}

// FieldErrors maps field keys to a widget-level message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Resolve fills missing values with defaults and range checks the rest. The
// returned vector follows the order of fields.
func Resolve(fields []Field, values map[string]float64) ([]float64, error) {
	vector := make([]float64, len(fields))
	errs := FieldErrors{}
	for i, f := range fields {
		v, ok := values[f.Key]
		if !ok {
			v = f.Default
		}
		if err := f.Check(v); err != nil {
			errs[f.Key] = err.Error()
			continue
		}
		vector[i] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return vector, nil
}
