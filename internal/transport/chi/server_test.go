package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	askuc "github.com/kailas-cloud/askdex/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/askdex/internal/usecase/health"
)

type stubClassifier struct {
	result domain.Classification
}

func (s *stubClassifier) Classify(context.Context, string) domain.Classification {
	return s.result
}

type stubRetriever struct {
	candidates []domain.Candidate
	err        error
}

func (s *stubRetriever) Retrieve(context.Context, string, string, int) ([]domain.Candidate, error) {
	return s.candidates, s.err
}

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.answer, s.err
}

type stubAgent struct {
	answer domain.AgentAnswer
	err    error
}

func (s *stubAgent) Run(context.Context, string, []domain.TableInfo) (domain.AgentAnswer, error) {
	return s.answer, s.err
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

func ragClassification() domain.Classification {
	return domain.Classification{Type: domain.QueryTypeRAG, Confidence: 0.9}
}

func newTestRouter(ask *askuc.Service, pinger *stubPinger) http.Handler {
	server := NewServer(ask, healthuc.New(pinger, nil), zap.NewNop())
	r := chirouter.NewRouter()
	server.Routes(r)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestQuery_RAGPath(t *testing.T) {
	ask := askuc.New(
		&stubClassifier{result: ragClassification()},
		&stubRetriever{candidates: []domain.Candidate{
			{ID: "c1", Content: "Drama A rated highest.", Similarity: 0.91},
		}},
		&stubGenerator{answer: "Drama A rated highest."},
		&stubAgent{},
		zap.NewNop(),
	)
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/query", `{"scope": "kb-1", "query": "which drama rated highest?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp QueryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "Drama A rated highest." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Method != "rag" {
		t.Errorf("unexpected method: %q", resp.Method)
	}
	if resp.Classification.Type != "rag" {
		t.Errorf("unexpected classification: %+v", resp.Classification)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].ID != "c1" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestQuery_EmptyQuery_400(t *testing.T) {
	ask := askuc.New(&stubClassifier{result: ragClassification()},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop())
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/query", `{"scope": "kb-1", "query": "  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeValidationFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeValidationFailed)
	}
}

func TestQuery_InvalidBody_400(t *testing.T) {
	ask := askuc.New(&stubClassifier{result: ragClassification()},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop())
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/query", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestQuery_EmbeddingProviderDown_502(t *testing.T) {
	ask := askuc.New(
		&stubClassifier{result: ragClassification()},
		&stubRetriever{err: domain.ErrEmbeddingProviderError},
		&stubGenerator{},
		&stubAgent{},
		zap.NewNop(),
	)
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/query", `{"scope": "kb-1", "query": "anything"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadGateway)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeEmbeddingProvider {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeEmbeddingProvider)
	}
}

func TestQuery_AgentFailure_502WithUserMessage(t *testing.T) {
	failure := domain.NewAgentFailure(
		domain.ErrAgentExhausted, "Database query error", nil)

	ask := askuc.New(
		&stubClassifier{result: domain.Classification{Type: domain.QueryTypeSQL, Confidence: 0.9}},
		&stubRetriever{},
		&stubGenerator{},
		&stubAgent{err: failure},
		zap.NewNop(),
	)
	router := newTestRouter(ask, &stubPinger{})

	body := `{"scope": "kb-1", "query": "average grp", "tables": [{"name": "tv_shows"}]}`
	rr := doJSON(t, router, "POST", "/query", body)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want %d: %s", rr.Code, http.StatusBadGateway, rr.Body.String())
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeAgentFailed {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeAgentFailed)
	}
	if errResp.Message != "Database query error" {
		t.Errorf("error message: got %q", errResp.Message)
	}
}

func TestClassify(t *testing.T) {
	ask := askuc.New(
		&stubClassifier{result: domain.Classification{
			Type:       domain.QueryTypeSQL,
			Confidence: 0.8,
			Scores:     map[domain.QueryType]float64{domain.QueryTypeSQL: 0.8},
		}},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop(),
	)
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/classify", `{"query": "average rating by channel"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp ClassificationDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "sql" || resp.Confidence != 0.8 {
		t.Errorf("unexpected classification: %+v", resp)
	}
	if resp.Scores["sql"] != 0.8 {
		t.Errorf("unexpected scores: %+v", resp.Scores)
	}
}

func TestRetrieve(t *testing.T) {
	ask := askuc.New(
		&stubClassifier{result: ragClassification()},
		&stubRetriever{candidates: []domain.Candidate{
			{ID: "c1", Content: "chunk one", Similarity: 0.9},
			{ID: "c2", Content: "chunk two", Similarity: 0.7},
		}},
		&stubGenerator{}, &stubAgent{}, zap.NewNop(),
	)
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/retrieve", `{"scope": "kb-1", "query": "chunks", "top_k": 2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp RetrieveResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Sources) != 2 || resp.Sources[1].ID != "c2" {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestRetrieve_TopKOutOfRange_400(t *testing.T) {
	ask := askuc.New(&stubClassifier{result: ragClassification()},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop())
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "POST", "/retrieve", `{"scope": "kb-1", "query": "q", "top_k": 500}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	ask := askuc.New(&stubClassifier{result: ragClassification()},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop())
	router := newTestRouter(ask, &stubPinger{})

	rr := doJSON(t, router, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestHealthCheck_DatabaseDown_503(t *testing.T) {
	ask := askuc.New(&stubClassifier{result: ragClassification()},
		&stubRetriever{}, &stubGenerator{}, &stubAgent{}, zap.NewNop())
	router := newTestRouter(ask, &stubPinger{err: context.DeadlineExceeded})

	rr := doJSON(t, router, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
