package recommend

// CropInputs are the crop form values.
type CropInputs struct {
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	Temperature float64
	Humidity    float64
	PH          float64
	Rainfall    float64
}

func DefaultCropInputs() CropInputs {
	return CropInputs{
		Nitrogen:    50,
		Phosphorus:  50,
		Potassium:   50,
		Temperature: 25,
		Humidity:    50,
		PH:          7,
		Rainfall:    100,
	}
}

// Vector returns the inputs in the column order the crop model was trained on.
func (c CropInputs) Vector() []float64 {
	return []float64{c.Nitrogen, c.Phosphorus, c.Potassium, c.Temperature, c.Humidity, c.PH, c.Rainfall}
}

func cropInputsFromVector(v []float64) CropInputs {
	return CropInputs{
		Nitrogen:    v[0],
		Phosphorus:  v[1],
		Potassium:   v[2],
		Temperature: v[3],
		Humidity:    v[4],
		PH:          v[5],
		Rainfall:    v[6],
	}
}

// FertilizerInputs are the fertilizer form values. The zero value is the
// form's default.
type FertilizerInputs struct {
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	Temperature float64
	Humidity    float64
	PH          float64
	Rainfall    float64
	SoilType    float64
}

// Vector returns the inputs in the column order the fertilizer model was
// trained on.
func (f FertilizerInputs) Vector() []float64 {
	return []float64{f.Nitrogen, f.Phosphorus, f.Potassium, f.Temperature, f.Humidity, f.PH, f.Rainfall, f.SoilType}
}

func fertilizerInputsFromVector(v []float64) FertilizerInputs {
	return FertilizerInputs{
		Nitrogen:    v[0],
		Phosphorus:  v[1],
		Potassium:   v[2],
		Temperature: v[3],
		Humidity:    v[4],
		PH:          v[5],
		Rainfall:    v[6],
		SoilType:    v[7],
	}
}
