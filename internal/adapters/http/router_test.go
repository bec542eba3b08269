package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haiminh-dev/visadossier/internal/core/domain"
)

type stubPipeline struct {
	state         domain.PipelineState
	runErr        error
	writerContext string
	ranSteps      []domain.Step
}

func (s *stubPipeline) RunStep(_ context.Context, step domain.Step, _ bool) (domain.PipelineState, error) {
	if s.runErr != nil {
		return domain.PipelineState{}, s.runErr
	}
	s.ranSteps = append(s.ranSteps, step)
	return s.state, nil
}

func (s *stubPipeline) RunAll(_ context.Context, _ bool) (domain.PipelineState, error) {
	if s.runErr != nil {
		return domain.PipelineState{}, s.runErr
	}
	s.ranSteps = append(s.ranSteps, domain.Steps()...)
	return s.state, nil
}

func (s *stubPipeline) SetWriterContext(_ context.Context, text string) error {
	s.writerContext = text
	return nil
}

type stubAbsorber struct {
	state domain.PipelineState
	err   error
	path  string
}

func (s *stubAbsorber) AddFile(_ context.Context, path string) (domain.PipelineState, error) {
	s.path = path
	if s.err != nil {
		return domain.PipelineState{}, s.err
	}
	return s.state, nil
}

type stubReader struct {
	state     domain.PipelineState
	status    map[domain.Step]bool
	artifacts map[domain.Step][]byte
}

func (s *stubReader) State(context.Context) (domain.PipelineState, error) {
	return s.state, nil
}

func (s *stubReader) StepStatus(context.Context) (map[domain.Step]bool, error) {
	return s.status, nil
}

func (s *stubReader) Artifact(_ context.Context, step domain.Step) ([]byte, error) {
	data, ok := s.artifacts[step]
	if !ok {
		return nil, domain.WrapError(domain.ErrFileNotFound, "read artifact", errors.New("missing"))
	}
	return data, nil
}

type stubPlanner struct {
	itinerary string
	context   string
}

func (s *stubPlanner) BuildItinerary(context.Context, bool) (string, error) {
	return s.itinerary, nil
}

func (s *stubPlanner) LatestItinerary(context.Context) (string, error) {
	if s.itinerary == "" {
		return "", domain.WrapError(domain.ErrFileNotFound, "latest itinerary", errors.New("none"))
	}
	return s.itinerary, nil
}

func (s *stubPlanner) SaveItineraryContext(_ context.Context, fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "save itinerary context", errors.New("empty"))
	}
	s.context = "Core itinerary inputs:"
	return s.context, nil
}

func (s *stubPlanner) ItineraryContext(context.Context) (string, error) {
	return s.context, nil
}

type stubBookings struct {
	trip      domain.TripInfo
	selection *domain.BookingSelection
}

func (s *stubBookings) TripInfo(context.Context, bool) (domain.TripInfo, error) {
	return s.trip, nil
}

func (s *stubBookings) UpdateTripInfo(_ context.Context, trip domain.TripInfo) (domain.TripInfo, error) {
	s.trip = trip
	return trip, nil
}

func (s *stubBookings) ProposeBookings(context.Context, bool) (domain.BookingSelection, error) {
	if s.selection == nil {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrExternalCall, "propose bookings", errors.New("model down"))
	}
	return *s.selection, nil
}

func (s *stubBookings) LatestBookings(context.Context) (domain.BookingSelection, error) {
	if s.selection == nil {
		return domain.BookingSelection{}, domain.WrapError(domain.ErrFileNotFound, "latest bookings", errors.New("none"))
	}
	return *s.selection, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderBookingDossier(domain.TripInfo, domain.BookingSelection) ([]byte, error) {
	return []byte("<!DOCTYPE html><html><body>dossier</body></html>"), nil
}

type stubQueue struct {
	published []domain.PipelineJob
	err       error
}

func (s *stubQueue) PublishPipelineRun(_ context.Context, job domain.PipelineJob) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, job)
	return nil
}

func (s *stubQueue) SubscribePipelineRun(context.Context, func(context.Context, domain.PipelineJob) error) error {
	return nil
}

type testDeps struct {
	pipeline *stubPipeline
	absorber *stubAbsorber
	reader   *stubReader
	planner  *stubPlanner
	bookings *stubBookings
	queue    *stubQueue
}

func newTestRouter(deps testDeps) http.Handler {
	if deps.pipeline == nil {
		deps.pipeline = &stubPipeline{}
	}
	if deps.absorber == nil {
		deps.absorber = &stubAbsorber{}
	}
	if deps.reader == nil {
		deps.reader = &stubReader{}
	}
	if deps.planner == nil {
		deps.planner = &stubPlanner{}
	}
	if deps.bookings == nil {
		deps.bookings = &stubBookings{}
	}

	options := RouterOptions{
		Pipeline: deps.pipeline,
		Absorber: deps.absorber,
		Reader:   deps.reader,
		Planner:  deps.planner,
		Bookings: deps.bookings,
		Renderer: stubRenderer{},
	}
	if deps.queue != nil {
		options.Queue = deps.queue
	}
	return NewRouter(options).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(testDeps{})
	res := doJSON(t, handler, http.MethodGet, "/healthz", "")
	if res.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatal("request id header not set")
	}
}

func TestRunStepReturnsState(t *testing.T) {
	pipeline := &stubPipeline{state: domain.PipelineState{Letter: "Kính gửi Lãnh sự quán"}}
	handler := newTestRouter(testDeps{pipeline: pipeline})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/step", `{"step":"writer","force":true}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", res.Code, res.Body.String())
	}

	var payload struct {
		Letter string `json:"letter"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Letter != "Kính gửi Lãnh sự quán" {
		t.Fatalf("letter = %q", payload.Letter)
	}
	if len(pipeline.ranSteps) != 1 || pipeline.ranSteps[0] != domain.StepWriter {
		t.Fatalf("ran steps = %v", pipeline.ranSteps)
	}
}

func TestRunStepRequiresStepName(t *testing.T) {
	handler := newTestRouter(testDeps{})
	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/step", `{"force":true}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRunStepMapsPrerequisiteTo409(t *testing.T) {
	pipeline := &stubPipeline{runErr: &domain.PrerequisiteError{Missing: domain.StepExtract}}
	handler := newTestRouter(testDeps{pipeline: pipeline})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/step", `{"step":"risk"}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("status = %d", res.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["missing_step"] != "extract" {
		t.Fatalf("missing_step = %q", payload["missing_step"])
	}
}

func TestRunStepMapsUnknownStepTo400(t *testing.T) {
	pipeline := &stubPipeline{runErr: domain.WrapError(domain.ErrUnknownStep, "run step", errors.New(`step "wat"`))}
	handler := newTestRouter(testDeps{pipeline: pipeline})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/step", `{"step":"wat"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRunStepMapsModelFailureTo502(t *testing.T) {
	pipeline := &stubPipeline{runErr: domain.WrapError(domain.ErrExternalCall, "extract", errors.New("model down"))}
	handler := newTestRouter(testDeps{pipeline: pipeline})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/step", `{"step":"extract"}`)
	if res.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRunAppliesWriterContext(t *testing.T) {
	pipeline := &stubPipeline{}
	handler := newTestRouter(testDeps{pipeline: pipeline})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/run", `{"force":false,"writer_context":"gia đình có con nhỏ"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
	if pipeline.writerContext != "gia đình có con nhỏ" {
		t.Fatalf("writer context = %q", pipeline.writerContext)
	}
	if len(pipeline.ranSteps) != len(domain.Steps()) {
		t.Fatalf("ran steps = %v", pipeline.ranSteps)
	}
}

func TestWriterContextRoundTrip(t *testing.T) {
	pipeline := &stubPipeline{}
	reader := &stubReader{state: domain.PipelineState{WriterContext: "saved earlier"}}
	handler := newTestRouter(testDeps{pipeline: pipeline, reader: reader})

	res := doJSON(t, handler, http.MethodPost, "/v1/writer-context", `{"writer_context":"chuyến đi có bảo lãnh"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("save status = %d", res.Code)
	}
	if pipeline.writerContext != "chuyến đi có bảo lãnh" {
		t.Fatalf("writer context = %q", pipeline.writerContext)
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/writer-context", "")
	if res.Code != http.StatusOK {
		t.Fatalf("get status = %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "saved earlier") {
		t.Fatalf("body = %s", res.Body.String())
	}
}

func TestAddFileMapsErrors(t *testing.T) {
	absorber := &stubAbsorber{err: domain.WrapError(domain.ErrInvalidInput, "resolve input path", errors.New("escapes input dir"))}
	handler := newTestRouter(testDeps{absorber: absorber})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/files", `{"path":"../secrets.txt"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("traversal status = %d", res.Code)
	}

	absorber.err = domain.WrapError(domain.ErrFileNotFound, "resolve input path", errors.New("no such file"))
	res = doJSON(t, handler, http.MethodPost, "/v1/pipeline/files", `{"path":"missing.pdf"}`)
	if res.Code != http.StatusNotFound {
		t.Fatalf("missing file status = %d", res.Code)
	}
}

func TestGetArtifactContentTypes(t *testing.T) {
	reader := &stubReader{artifacts: map[domain.Step][]byte{
		domain.StepIngest:  []byte(`[{"path":"a.txt"}]`),
		domain.StepSummary: []byte("Thông tin định danh:"),
	}}
	handler := newTestRouter(testDeps{reader: reader})

	res := doJSON(t, handler, http.MethodGet, "/v1/artifacts/ingest", "")
	if res.Code != http.StatusOK || res.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("ingest artifact: status %d type %s", res.Code, res.Header().Get("Content-Type"))
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/artifacts/summary", "")
	if res.Code != http.StatusOK || !strings.HasPrefix(res.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("summary artifact: status %d type %s", res.Code, res.Header().Get("Content-Type"))
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/artifacts/risk", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("missing artifact status = %d", res.Code)
	}
}

func TestRunAsyncPublishesJob(t *testing.T) {
	queue := &stubQueue{}
	handler := newTestRouter(testDeps{queue: queue})

	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/run-async", `{"step":"risk","force":true}`)
	if res.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", res.Code, res.Body.String())
	}
	if len(queue.published) != 1 {
		t.Fatalf("published jobs = %d", len(queue.published))
	}
	job := queue.published[0]
	if job.Step != domain.StepRisk || !job.Force || job.ID == "" {
		t.Fatalf("job = %+v", job)
	}
}

func TestRunAsyncWithoutQueue(t *testing.T) {
	handler := newTestRouter(testDeps{})
	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/run-async", `{}`)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestRunAsyncRejectsUnknownStep(t *testing.T) {
	handler := newTestRouter(testDeps{queue: &stubQueue{}})
	res := doJSON(t, handler, http.MethodPost, "/v1/pipeline/run-async", `{"step":"wat"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestLatestBookingsRendersHTML(t *testing.T) {
	bookings := &stubBookings{selection: &domain.BookingSelection{Reasoning: "cheapest direct"}}
	handler := newTestRouter(testDeps{bookings: bookings})

	res := doJSON(t, handler, http.MethodGet, "/v1/bookings/latest", "")
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "cheapest direct") {
		t.Fatalf("json bookings: status %d body %s", res.Code, res.Body.String())
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/bookings/latest?format=html", "")
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "dossier") {
		t.Fatalf("html bookings: status %d", res.Code)
	}
	if !strings.HasPrefix(res.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("content type = %s", res.Header().Get("Content-Type"))
	}

	bookings.selection = nil
	res = doJSON(t, handler, http.MethodGet, "/v1/bookings/latest", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("missing bookings status = %d", res.Code)
	}
}

func TestItineraryEndpoints(t *testing.T) {
	planner := &stubPlanner{}
	handler := newTestRouter(testDeps{planner: planner})

	res := doJSON(t, handler, http.MethodGet, "/v1/itinerary/latest", "")
	if res.Code != http.StatusNotFound {
		t.Fatalf("empty latest status = %d", res.Code)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/itinerary/context", `{"form_data":{"participants":"NGUYEN VAN A"}}`)
	if res.Code != http.StatusOK {
		t.Fatalf("save context status = %d", res.Code)
	}

	planner.itinerary = "<html>plan</html>"
	res = doJSON(t, handler, http.MethodGet, "/v1/itinerary/latest", "")
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "plan") {
		t.Fatalf("latest status = %d body = %s", res.Code, res.Body.String())
	}
}

func TestMethodGuards(t *testing.T) {
	handler := newTestRouter(testDeps{})
	res := doJSON(t, handler, http.MethodDelete, "/v1/pipeline/run", "")
	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", res.Code)
	}
}
