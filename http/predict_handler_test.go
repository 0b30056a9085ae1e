package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeModel struct {
	labels []int
	err    error
	rows   [][]float64
}

func (f *fakeModel) Predict(rows [][]float64) ([]int, error) {
	f.rows = rows
	return f.labels, f.err
}

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) (*httptest.ResponseRecorder, PredictionResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var payload PredictionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return w, payload
}

func TestHandlePredictCrop(t *testing.T) {
	crop := &fakeModel{labels: []int{0}}
	mux := newTestMux(t, crop, &fakeModel{})

	w, payload := postJSON(t, mux, "/api/predict/crop",
		`{"crop_n":50,"crop_p":50,"crop_k":50,"crop_temp":25,"crop_humidity":50,"crop_ph":7,"crop_rainfall":100}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if payload.Message != "Recommended Crop: Rice" || payload.Label != "Rice" || !payload.OK || !payload.Known {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Index == nil || *payload.Index != 0 {
		t.Fatalf("unexpected index: %v", payload.Index)
	}
	if diff := cmp.Diff([][]float64{{50, 50, 50, 25, 50, 7, 100}}, crop.rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestHandlePredictFertilizerDefaults(t *testing.T) {
	fertilizer := &fakeModel{labels: []int{6}}
	mux := newTestMux(t, &fakeModel{}, fertilizer)

	w, payload := postJSON(t, mux, "/api/predict/fertilizer", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if payload.Message != "Recommended Fertilizer: NPK (Nitrogen, Phosphorus, Potassium)" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
	if diff := cmp.Diff([][]float64{{0, 0, 0, 0, 0, 0, 0, 0}}, fertilizer.rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestHandlePredictModelError(t *testing.T) {
	mux := newTestMux(t, &fakeModel{err: errors.New("model exploded")}, &fakeModel{})

	w, payload := postJSON(t, mux, "/api/predict/crop", `{}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if payload.OK || payload.Error != "model exploded" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Message != "Error in crop prediction: model exploded" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestHandlePredictUnknownLabel(t *testing.T) {
	mux := newTestMux(t, &fakeModel{labels: []int{99}}, &fakeModel{})

	_, payload := postJSON(t, mux, "/api/predict/crop", `{}`)

	if !payload.OK || payload.Known || payload.Label != "Unknown Crop" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestHandlePredictOutOfRange(t *testing.T) {
	crop := &fakeModel{labels: []int{0}}
	mux := newTestMux(t, crop, &fakeModel{})

	w, payload := postJSON(t, mux, "/api/predict/crop", `{"crop_temp":60}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if _, ok := payload.FieldErrors["crop_temp"]; !ok {
		t.Fatalf("missing field error: %+v", payload)
	}
	if crop.rows != nil {
		t.Fatalf("predictor must not be called")
	}
}

func TestHandlePredictBadRequests(t *testing.T) {
	mux := newTestMux(t, &fakeModel{}, &fakeModel{})

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed", "/api/predict/crop", `{"crop_n":`, http.StatusBadRequest},
		{"unknown field", "/api/predict/crop", `{"fert_n":1}`, http.StatusBadRequest},
		{"string value", "/api/predict/fertilizer", `{"fert_n":"ten"}`, http.StatusBadRequest},
		{"unknown flow", "/api/predict/irrigation", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
