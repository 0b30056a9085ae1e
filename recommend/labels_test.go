package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCropLabelsAreTotal(t *testing.T) {
	want := []string{
		"Rice", "Wheat", "Maize", "Chickpea", "Kidney Beans", "Pigeon Peas", "Moth Beans",
		"Mung Beans", "Black Gram", "Lentil", "Pomegranate", "Banana", "Mango", "Grapes",
		"Watermelon", "Muskmelon", "Apple", "Orange", "Papaya", "Coconut", "Cotton", "Jute", "Coffee",
	}
	assert.Equal(t, 23, CropLabels.Len())
	for i, name := range want {
		assert.Equal(t, KnownLabel{Name: name}, CropLabels.Lookup(i), "index %d", i)
		assert.Equal(t, name, CropLabels.Display(CropLabels.Lookup(i)))
	}
	for _, i := range []int{-1, 23, 24, 1000} {
		assert.Equal(t, UnknownLabel{Index: i}, CropLabels.Lookup(i))
		assert.Equal(t, "Unknown Crop", CropLabels.Display(CropLabels.Lookup(i)))
	}
}

func TestFertilizerLabelsAreTotal(t *testing.T) {
	want := []string{
		"Urea",
		"DAP (Diammonium Phosphate)",
		"MOP (Muriate of Potash)",
		"Super Phosphate",
		"Ammonium Sulphate",
		"Organic Manure",
		"NPK (Nitrogen, Phosphorus, Potassium)",
	}
	assert.Equal(t, 7, FertilizerLabels.Len())
	for i, name := range want {
		assert.Equal(t, name, FertilizerLabels.Display(FertilizerLabels.Lookup(i)))
	}
	for _, i := range []int{-7, 7, 22} {
		assert.Equal(t, UnknownLabel{Index: i}, FertilizerLabels.Lookup(i))
		assert.Equal(t, "Unknown Fertilizer", FertilizerLabels.Display(FertilizerLabels.Lookup(i)))
	}
}
