package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"smartfarm/monitoring"
	"smartfarm/recommend"
	"smartfarm/ui"
)

// Handlers serves the form page, the JSON API and the websocket endpoint.
type Handlers struct {
	recommender *recommend.Recommender
	renderer    *ui.Renderer
	metrics     *monitoring.MetricsCollector
	logger      *zap.Logger
	openapi     []byte
	socket      *PredictionSocket
}

func NewHandlers(rec *recommend.Recommender, metrics *monitoring.MetricsCollector, logger *zap.Logger, uiOpts ...ui.Option) (*Handlers, error) {
	renderer, err := ui.NewRenderer(uiOpts...)
	if err != nil {
		return nil, err
	}
	doc, err := BuildOpenAPI()
	if err != nil {
		return nil, err
	}
	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = monitoring.NewMetricsCollector()
	}
	return &Handlers{
		recommender: rec,
		renderer:    renderer,
		metrics:     metrics,
		logger:      logger,
		openapi:     spec,
		socket:      NewPredictionSocket(rec, logger),
	}, nil
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
	mux.HandleFunc("GET /api/openapi.json", h.handleOpenAPI)
	mux.HandleFunc("POST /api/predict/{flow}", h.handlePredict)

	mux.HandleFunc("GET /{$}", h.handlePage)
	mux.HandleFunc("POST /crop", h.handleFormSubmit(recommend.FlowCrop))
	mux.HandleFunc("POST /fertilizer", h.handleFormSubmit(recommend.FlowFertilizer))
}

// Socket is served outside the timeout middleware, which cannot hijack.
func (h *Handlers) Socket() *PredictionSocket {
	return h.socket
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flows":  h.metrics.Snapshot(),
		"system": h.metrics.GetSystemStats(),
	})
}

func (h *Handlers) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	io.WriteString(w, h.metrics.ExportPrometheus())
}

func (h *Handlers) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.openapi)
}

// PredictionResponse is the JSON shape of one flow invocation.
type PredictionResponse struct {
	Flow        string            `json:"flow"`
	OK          bool              `json:"ok"`
	Message     string            `json:"message,omitempty"`
	Label       string            `json:"label,omitempty"`
	Index       *int              `json:"index,omitempty"`
	Known       bool              `json:"known"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func NewPredictionResponse(res recommend.Result) PredictionResponse {
	switch v := res.(type) {
	case recommend.Recommended:
		index := v.Index
		_, known := v.Label.(recommend.KnownLabel)
		return PredictionResponse{
			Flow:    string(v.Flow),
			OK:      true,
			Message: recommend.Message(v),
			Label:   recommend.LabelName(v),
			Index:   &index,
			Known:   known,
		}
	case recommend.Failed:
		return PredictionResponse{
			Flow:    string(v.Flow),
			Message: recommend.Message(v),
			Error:   v.Err.Error(),
		}
	default:
		return PredictionResponse{Error: "no result"}
	}
}

func fieldErrorResponse(flow recommend.Flow, errs recommend.FieldErrors) PredictionResponse {
	return PredictionResponse{
		Flow:        string(flow),
		Error:       errs.Error(),
		FieldErrors: errs,
	}
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	flow, err := recommend.ParseFlow(r.PathValue("flow"))
	if err != nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	var values map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if unknown := unknownKeys(flow, values); len(unknown) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown fields: " + strings.Join(unknown, ", ")})
		return
	}

	res, err := h.recommender.Run(flow, values)
	var fieldErrs recommend.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse(flow, fieldErrs))
	case err != nil:
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		// A failed prediction is still a successful request: the surface stays usable.
		respondJSON(w, http.StatusOK, NewPredictionResponse(res))
	}
}

func (h *Handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	flow := recommend.Flow(r.URL.Query().Get("tab"))
	page := h.renderer.NewPage(r.Header.Get("Accept-Language"), flow)
	h.renderPage(w, page, http.StatusOK)
}

func (h *Handlers) handleFormSubmit(flow recommend.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		raw := make(map[string]string)
		values := make(map[string]float64)
		errs := recommend.FieldErrors{}
		for _, f := range recommend.FieldsFor(flow) {
			s := strings.TrimSpace(r.PostForm.Get(f.Key))
			if s == "" {
				continue
			}
			raw[f.Key] = s
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				errs[f.Key] = recommend.ErrNotFinite.Error()
				continue
			}
			values[f.Key] = v
		}

		page := h.renderer.NewPage(r.Header.Get("Accept-Language"), flow)
		tab := page.Tab(flow)
		tab.SetValues(raw)

		if len(errs) == 0 {
			res, err := h.recommender.Run(flow, values)
			var fieldErrs recommend.FieldErrors
			switch {
			case errors.As(err, &fieldErrs):
				errs = fieldErrs
			case err != nil:
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			default:
				h.renderer.SetResult(tab, res)
			}
		}

		status := http.StatusOK
		if len(errs) > 0 {
			tab.SetFieldErrors(errs)
			status = http.StatusUnprocessableEntity
		}
		h.renderPage(w, page, status)
	}
}

func (h *Handlers) renderPage(w http.ResponseWriter, page *ui.Page, status int) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func unknownKeys(flow recommend.Flow, values map[string]float64) []string {
	known := make(map[string]bool)
	for _, f := range recommend.FieldsFor(flow) {
		known[f.Key] = true
	}
	var unknown []string
	for k := range values {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
