package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codecollab/swarm/internal/history"
	"github.com/codecollab/swarm/pkg/models"
)

// stubProcessor returns a canned result or error.
type stubProcessor struct {
	result *models.RunResult
	err    error
	tasks  []string
}

func (p *stubProcessor) Process(_ context.Context, task string) (*models.RunResult, error) {
	p.tasks = append(p.tasks, task)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func okResult() *models.RunResult {
	return &models.RunResult{
		ID:            "run-1",
		Success:       true,
		FinalDecision: models.DecisionComplete,
		QualityScore:  90,
		Complexity:    models.ComplexitySimple,
		Payment:       &models.Payment{Amount: 0.04, Currency: "USD"},
	}
}

func newTestServer(t *testing.T, processor Processor) *Server {
	t.Helper()
	s, err := NewServer(processor, history.NewRing(10), nil, nil, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresProcessor(t *testing.T) {
	if _, err := NewServer(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for nil processor")
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	rec := doRequest(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	rec := doRequest(s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp RootResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Agents) != len(models.AllRoles()) {
		t.Errorf("agents = %v", resp.Agents)
	}
}

func TestAgentsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	rec := doRequest(s, http.MethodGet, "/api/agents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp AgentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Agents) != 5 {
		t.Fatalf("agents = %d, want 5", len(resp.Agents))
	}
	if resp.Agents[0].Name != string(models.InitialRole) || !resp.Agents[0].Initial {
		t.Errorf("first agent = %+v", resp.Agents[0])
	}
	last := resp.Agents[len(resp.Agents)-1]
	if !last.Terminal {
		t.Errorf("last agent = %+v", last)
	}
}

func TestProcessEndpoint(t *testing.T) {
	processor := &stubProcessor{result: okResult()}
	s := newTestServer(t, processor)

	rec := doRequest(s, http.MethodPost, "/api/process", `{"task_description": "sort a list"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp models.RunResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "run-1" || !resp.Success {
		t.Errorf("result = %+v", resp)
	}
	if len(processor.tasks) != 1 || processor.tasks[0] != "sort a list" {
		t.Errorf("tasks = %v", processor.tasks)
	}

	// The run shows up in history afterwards.
	rec = doRequest(s, http.MethodGet, "/api/history", "")
	var hist HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Runs) != 1 || hist.Runs[0].ID != "run-1" {
		t.Errorf("history = %+v", hist.Runs)
	}
}

func TestProcessEndpointValidation(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank task", `{"task_description": ""}`},
		{"malformed json", `{"task_description": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/process", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestProcessEndpointFailure(t *testing.T) {
	s := newTestServer(t, &stubProcessor{err: errors.New("boom")})

	rec := doRequest(s, http.MethodPost, "/api/process", `{"task_description": "x"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHistoryByID(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	doRequest(s, http.MethodPost, "/api/process", `{"task_description": "x"}`)

	rec := doRequest(s, http.MethodGet, "/api/history/run-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/history/absent", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStatsFromRing(t *testing.T) {
	s := newTestServer(t, &stubProcessor{result: okResult()})

	doRequest(s, http.MethodPost, "/api/process", `{"task_description": "x"}`)
	doRequest(s, http.MethodPost, "/api/process", `{"task_description": "y"}`)

	rec := doRequest(s, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats history.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalRuns != 2 || stats.SuccessfulRuns != 2 {
		t.Errorf("stats = %+v", stats)
	}
}
