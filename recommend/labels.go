package recommend

// Label is the outcome of a class index lookup: KnownLabel or UnknownLabel.
type Label interface {
	label()
}

type KnownLabel struct {
	Name string
}

// UnknownLabel is returned for indices outside the table.
type UnknownLabel struct {
	Index int
}

func (KnownLabel) label()   {}
func (UnknownLabel) label() {}

// LabelTable maps class indices 0..n-1 to display names.
type LabelTable struct {
	names   []string
	unknown string
}

func (t LabelTable) Lookup(index int) Label {
	if index < 0 || index >= len(t.names) {
		return UnknownLabel{Index: index}
	}
	return KnownLabel{Name: t.names[index]}
}

// Display renders a label as shown to the user.
func (t LabelTable) Display(l Label) string {
	switch v := l.(type) {
	case KnownLabel:
		return v.Name
	default:
		return t.unknown
	}
}

func (t LabelTable) Len() int {
	return len(t.names)
}

var CropLabels = LabelTable{
	names: []string{
		"Rice",
		"Wheat",
		"Maize",
		"Chickpea",
		"Kidney Beans",
		"Pigeon Peas",
		"Moth Beans",
		"Mung Beans",
		"Black Gram",
		"Lentil",
		"Pomegranate",
		"Banana",
		"Mango",
		"Grapes",
		"Watermelon",
		"Muskmelon",
		"Apple",
		"Orange",
		"Papaya",
		"Coconut",
		"Cotton",
		"Jute",
		"Coffee",
	},
	unknown: "Unknown Crop",
}

var FertilizerLabels = LabelTable{
	names: []string{
		"Urea",
		"DAP (Diammonium Phosphate)",
		"MOP (Muriate of Potash)",
		"Super Phosphate",
		"Ammonium Sulphate",
		"Organic Manure",
		"NPK (Nitrogen, Phosphorus, Potassium)",
	},
	unknown: "Unknown Fertilizer",
}
