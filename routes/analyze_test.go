package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dynamocards-backend/internal/ai"
	"dynamocards-backend/internal/concepts"
	"dynamocards-backend/internal/transcript"
	"dynamocards-backend/models"
	"dynamocards-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalysis struct {
	analyzeErr error
	submitErr  error
	stored     map[string]*models.Analysis
	lastReq    models.AnalyzeRequest
	lastLimit  int
}

func (f *fakeAnalysis) Analyze(_ context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	f.lastReq = req
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return &models.Analysis{KeyConcepts: []concepts.Record{
		{Term: "A", Definition: "x"},
		{Term: "B", Definition: "y"},
		{Term: "A", Definition: "z"},
	}}, nil
}

func (f *fakeAnalysis) Submit(_ context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.Analysis{ID: "job-1", Status: models.AnalysisPending}, nil
}

func (f *fakeAnalysis) Summarize(_ context.Context, _ models.SummarizeRequest) (string, error) {
	return "a summary", nil
}

func (f *fakeAnalysis) Get(_ context.Context, id string) (*models.Analysis, error) {
	if a, ok := f.stored[id]; ok {
		return a, nil
	}
	return nil, services.ErrNotFound
}

func (f *fakeAnalysis) Recent(_ context.Context, limit int) ([]models.Analysis, error) {
	f.lastLimit = limit
	return []models.Analysis{}, nil
}

func newRouter(api AnalysisAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupHealthRoutes(r)
	SetupAnalysisRoutes(r, api, services.NewExportService())
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootReportsOK(t *testing.T) {
	w := do(newRouter(&fakeAnalysis{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
}

func TestAnalyzeVideoReturnsKeyConceptsInOrder(t *testing.T) {
	fake := &fakeAnalysis{}
	w := do(newRouter(fake), http.MethodPost, "/analyze_video",
		`{"youtube_link":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","sample_size":3}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key_concepts":[
		{"term":"A","definition":"x"},
		{"term":"B","definition":"y"},
		{"term":"A","definition":"z"}]}`, w.Body.String())
	require.NotNil(t, fake.lastReq.SampleSize)
	assert.Equal(t, 3, *fake.lastReq.SampleSize)
}

func TestAnalyzeVideoRejectsMissingLink(t *testing.T) {
	w := do(newRouter(&fakeAnalysis{}), http.MethodPost, "/analyze_video", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeVideoErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: not youtube", transcript.ErrInvalidURL), http.StatusBadRequest},
		{fmt.Errorf("%w: sample size 0", concepts.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%w: captions off", transcript.ErrNoTranscript), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: timeout", transcript.ErrFetchFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: breaker open", ai.ErrModelUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("group 2 of 3: %w", concepts.ErrMalformedOutput), http.StatusInternalServerError},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := do(newRouter(&fakeAnalysis{analyzeErr: tc.err}), http.MethodPost, "/analyze_video",
				`{"youtube_link":"https://youtu.be/dQw4w9WgXcQ"}`)
			assert.Equal(t, tc.code, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error_code"])
			assert.NotContains(t, body, "key_concepts")
		})
	}
}

func TestAsyncAnalyzeAccepted(t *testing.T) {
	w := do(newRouter(&fakeAnalysis{}), http.MethodPost, "/analyze_video/async",
		`{"youtube_link":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"analysis_id":"job-1","status":"pending"}`, w.Body.String())
}

func TestAsyncAnalyzeWithoutBackends(t *testing.T) {
	w := do(newRouter(&fakeAnalysis{submitErr: services.ErrStoreDisabled}), http.MethodPost, "/analyze_video/async",
		`{"youtube_link":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSummarizeVideo(t *testing.T) {
	w := do(newRouter(&fakeAnalysis{}), http.MethodPost, "/summarize_video",
		`{"youtube_link":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"summary":"a summary"}`, w.Body.String())
}

func TestGetAnalysisAndExport(t *testing.T) {
	fake := &fakeAnalysis{stored: map[string]*models.Analysis{
		"a-1": {
			ID:          "a-1",
			VideoID:     "dQw4w9WgXcQ",
			Status:      models.AnalysisCompleted,
			KeyConcepts: []concepts.Record{{Term: "A", Definition: "x"}},
		},
	}}
	r := newRouter(fake)

	w := do(r, http.MethodGet, "/analyses/a-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/analyses/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/analyses/a-1/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term,definition\nA,x\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "flashcards_dQw4w9WgXcQ.csv")

	w = do(r, http.MethodGet, "/analyses/a-1/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAnalysesLimit(t *testing.T) {
	fake := &fakeAnalysis{}
	r := newRouter(fake)

	w := do(r, http.MethodGet, "/analyses?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, fake.lastLimit)

	w = do(r, http.MethodGet, "/analyses?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
