package correlation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(sessionID string) (string, error) {
	if sessionID == "" {
		return "generated-session", nil
	}
	return sessionID, nil
}

func newTestRouter(t *testing.T, provider DataProvider) *chi.Mux {
	t.Helper()

	svc := newTestService(t, provider, nil)
	handler := NewHandler(svc, fakeResolver{}, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r
}

func TestAnalyzeEndpoint(t *testing.T) {
	provider := &fakeProvider{values: map[string]*float64{pairKey("A", "B"): f(0.5)}}
	router := newTestRouter(t, provider)

	body, _ := json.Marshal(AnalysisRequest{Tickers: []string{"A", "B"}})
	req := httptest.NewRequest(http.MethodPost, "/api/correlation/analyze", bytes.NewReader(body))
	req.Header.Set("X-Session-ID", "s1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", rec.Header().Get("X-Session-ID"))

	var result AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, []string{"A", "B"}, result.Tickers)
}

func TestAnalyzeEndpointValidationError(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	body, _ := json.Marshal(AnalysisRequest{Tickers: []string{"A"}})
	req := httptest.NewRequest(http.MethodPost, "/api/correlation/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "invalid request")
}

func TestAnalyzeEndpointAssignsSession(t *testing.T) {
	provider := &fakeProvider{values: map[string]*float64{}}
	router := newTestRouter(t, provider)

	body, _ := json.Marshal(AnalysisRequest{Tickers: []string{"A", "B"}})
	req := httptest.NewRequest(http.MethodPost, "/api/correlation/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "generated-session", rec.Header().Get("X-Session-ID"))
}

func TestHeatmapEndpointNoData(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/correlation/heatmap", nil)
	req.Header.Set("X-Session-ID", "empty")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsEndpointEmptySession(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/correlation/results", nil)
	req.Header.Set("X-Session-ID", "empty")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "an unanalyzed session returns an empty result")
}

func TestHighCorrelationsEndpointBadThreshold(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/correlation/high-correlations?threshold=2.0", nil)
	req.Header.Set("X-Session-ID", "s1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	provider := &fakeProvider{values: map[string]*float64{}}
	router := newTestRouter(t, provider)

	body, _ := json.Marshal(AnalysisRequest{Tickers: []string{"A", "B"}})
	analyze := httptest.NewRequest(http.MethodPost, "/api/correlation/analyze", bytes.NewReader(body))
	analyze.Header.Set("X-Session-ID", "s1")
	router.ServeHTTP(httptest.NewRecorder(), analyze)

	del := httptest.NewRequest(http.MethodDelete, "/api/correlation/results", nil)
	del.Header.Set("X-Session-ID", "s1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, del)

	assert.Equal(t, http.StatusOK, rec.Code)
}
