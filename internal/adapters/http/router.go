package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
	"github.com/haiminh-dev/visadossier/internal/core/ports"
	"github.com/haiminh-dev/visadossier/internal/observability/metrics"
)

type Router struct {
	pipeline ports.PipelineRunner
	absorber ports.FileAbsorber
	reader   ports.PipelineReader
	planner  ports.ItineraryPlanner
	bookings ports.BookingService
	renderer ports.BookingRenderer
	queue    ports.JobQueue
	metrics  *metrics.HTTPServerMetrics

	service     string
	rateRPS     float64
	rateBurst   int
	maxInFlight int
}

type RouterOptions struct {
	Pipeline ports.PipelineRunner
	Absorber ports.FileAbsorber
	Reader   ports.PipelineReader
	Planner  ports.ItineraryPlanner
	Bookings ports.BookingService
	Renderer ports.BookingRenderer

	// Queue may be nil; run-async then reports the capability as missing.
	Queue   ports.JobQueue
	Metrics *metrics.HTTPServerMetrics

	Service     string
	RateRPS     float64
	RateBurst   int
	MaxInFlight int
}

func NewRouter(options RouterOptions) *Router {
	service := options.Service
	if service == "" {
		service = "api"
	}
	return &Router{
		pipeline:    options.Pipeline,
		absorber:    options.Absorber,
		reader:      options.Reader,
		planner:     options.Planner,
		bookings:    options.Bookings,
		renderer:    options.Renderer,
		queue:       options.Queue,
		metrics:     options.Metrics,
		service:     service,
		rateRPS:     options.RateRPS,
		rateBurst:   options.RateBurst,
		maxInFlight: options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/openapi.yaml", rt.openAPIDocument)
	mux.HandleFunc("/v1/files", rt.listFiles)
	mux.HandleFunc("/v1/steps", rt.listSteps)
	mux.HandleFunc("/v1/summary", rt.getSummary)
	mux.HandleFunc("/v1/writer-context", rt.writerContext)
	mux.HandleFunc("/v1/pipeline/step", rt.runStep)
	mux.HandleFunc("/v1/pipeline/run", rt.runAll)
	mux.HandleFunc("/v1/pipeline/run-async", rt.runAsync)
	mux.HandleFunc("/v1/pipeline/files", rt.addFile)
	mux.HandleFunc("/v1/artifacts/", rt.getArtifact)
	mux.HandleFunc("/v1/itinerary/run", rt.runItinerary)
	mux.HandleFunc("/v1/itinerary/latest", rt.latestItinerary)
	mux.HandleFunc("/v1/itinerary/context", rt.saveItineraryContext)
	mux.HandleFunc("/v1/itinerary/context/latest", rt.latestItineraryContext)
	mux.HandleFunc("/v1/bookings/trip/extract", rt.extractTripInfo)
	mux.HandleFunc("/v1/bookings/trip", rt.tripInfo)
	mux.HandleFunc("/v1/bookings/generate", rt.generateBookings)
	mux.HandleFunc("/v1/bookings/latest", rt.latestBookings)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.rateRPS, rt.rateBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type fileEntry struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Domain   string `json:"domain"`
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	state, err := rt.reader.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	files := make([]fileEntry, 0, len(state.Files))
	for _, f := range state.Files {
		files = append(files, fileEntry{Path: f.Path, FileName: f.FileName, Domain: string(f.Domain)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (rt *Router) listSteps(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	status, err := rt.reader.StepStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	steps := make(map[string]bool, len(status))
	for step, done := range status {
		steps[string(step)] = done
	}
	writeJSON(w, http.StatusOK, map[string]any{"steps": steps})
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	state, err := rt.reader.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary_profile": state.SummaryProfile,
		"visa_relevance":  state.VisaRelevance,
	})
}

func (rt *Router) writerContext(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state, err := rt.reader.State(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"writer_context": state.WriterContext})
	case http.MethodPost, http.MethodPut:
		var req struct {
			WriterContext string `json:"writer_context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if err := rt.pipeline.SetWriterContext(r.Context(), strings.TrimSpace(req.WriterContext)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	default:
		methodNotAllowed(w)
	}
}

type runRequest struct {
	Step          string `json:"step"`
	Force         bool   `json:"force"`
	WriterContext string `json:"writer_context"`
}

func (rt *Router) runStep(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Step) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "step is required"})
		return
	}
	if !rt.applyWriterContext(w, r, req.WriterContext) {
		return
	}

	step := domain.Step(req.Step)
	start := time.Now()
	state, err := rt.pipeline.RunStep(r.Context(), step, req.Force)
	if rt.metrics != nil {
		rt.metrics.RecordStepRun(rt.service, req.Step, time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil && step == domain.StepIngest {
		rt.metrics.RecordFilesIngested(rt.service, len(state.Files))
	}
	writeJSON(w, http.StatusOK, stateResponse(state))
}

func (rt *Router) runAll(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !rt.applyWriterContext(w, r, req.WriterContext) {
		return
	}

	start := time.Now()
	state, err := rt.pipeline.RunAll(r.Context(), req.Force)
	if rt.metrics != nil {
		rt.metrics.RecordStepRun(rt.service, "all", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(state))
}

func (rt *Router) runAsync(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "async runs are not configured"})
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Step != "" {
		if _, ok := domain.StepIndex(domain.Step(req.Step)); !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown step: " + req.Step})
			return
		}
	}
	if !rt.applyWriterContext(w, r, req.WriterContext) {
		return
	}

	job := domain.PipelineJob{
		ID:    uuid.NewString(),
		Step:  domain.Step(req.Step),
		Force: req.Force,
	}
	if err := rt.queue.PublishPipelineRun(r.Context(), job); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID, "status": "queued"})
}

func (rt *Router) addFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	state, err := rt.absorber.AddFile(r.Context(), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse(state))
}

func (rt *Router) getArtifact(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	step := strings.TrimPrefix(r.URL.Path, "/v1/artifacts/")
	if step == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "step is required"})
		return
	}

	data, err := rt.reader.Artifact(r.Context(), domain.Step(step))
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if json.Valid(data) {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) runItinerary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Force bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	itinerary, err := rt.planner.BuildItinerary(r.Context(), req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"itinerary": itinerary})
}

func (rt *Router) latestItinerary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	itinerary, err := rt.planner.LatestItinerary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(itinerary))
}

func (rt *Router) saveItineraryContext(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		FormData map[string]string `json:"form_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	summary, err := rt.planner.SaveItineraryContext(r.Context(), req.FormData)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "done",
		"summary_profile": summary,
		"form_data":       req.FormData,
	})
}

func (rt *Router) latestItineraryContext(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := rt.planner.ItineraryContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary_profile": summary})
}

func (rt *Router) extractTripInfo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Force bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	trip, err := rt.bookings.TripInfo(r.Context(), req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trip_info": trip})
}

func (rt *Router) tripInfo(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		trip, err := rt.bookings.TripInfo(r.Context(), false)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trip_info": trip})
	case http.MethodPost, http.MethodPut:
		var trip domain.TripInfo
		if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		saved, err := rt.bookings.UpdateTripInfo(r.Context(), trip)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trip_info": saved})
	default:
		methodNotAllowed(w)
	}
}

func (rt *Router) generateBookings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Force bool `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	selection, err := rt.bookings.ProposeBookings(r.Context(), req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": selection})
}

func (rt *Router) latestBookings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	selection, err := rt.bookings.LatestBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" && rt.renderer != nil {
		trip, err := rt.bookings.TripInfo(r.Context(), false)
		if err != nil {
			writeError(w, err)
			return
		}
		page, err := rt.renderer.RenderBookingDossier(trip, selection)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booking": selection})
}

func (rt *Router) applyWriterContext(w http.ResponseWriter, r *http.Request, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	if err := rt.pipeline.SetWriterContext(r.Context(), text); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func stateResponse(state domain.PipelineState) map[string]any {
	files := make([]fileEntry, 0, len(state.Files))
	for _, f := range state.Files {
		files = append(files, fileEntry{Path: f.Path, FileName: f.FileName, Domain: string(f.Domain)})
	}
	return map[string]any{
		"files":           files,
		"summary_profile": state.SummaryProfile,
		"visa_relevance":  state.VisaRelevance,
		"risk_points":     state.RiskPoints,
		"letter":          state.Letter,
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		methodNotAllowed(w)
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
