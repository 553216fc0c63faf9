package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "github.com/iliebabcenco/big-collector/internal/platform/net/http"
	"github.com/iliebabcenco/big-collector/internal/services/pipeline/domain"
)

// fakeRunner serves a canned run result
type fakeRunner struct {
	result  domain.Result
	running bool
}

func (f *fakeRunner) Process(context.Context) domain.Result { return f.result }
func (f *fakeRunner) Running() bool                         { return f.running }

func mount(f *fakeRunner) stdhttp.Handler {
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), f)
	return m
}

func do(t *testing.T, h stdhttp.Handler, method, path string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v\n%s", err, rr.Body.String())
	}
	return rr, env
}

func TestProcess_ReturnsRunCounters(t *testing.T) {
	t.Parallel()

	h := mount(&fakeRunner{result: domain.Result{
		Status:            domain.StatusCompleted,
		TotalSignals:      4,
		Processed:         4,
		ProblemsExtracted: 2,
		NoProblem:         2,
		DurationMs:        120,
	}})

	rr, env := do(t, h, stdhttp.MethodPost, "/process")
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d want 200", rr.Code)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", env.Data)
	}
	if data["status"] != "COMPLETED" || data["totalSignals"] != float64(4) || data["problemsExtracted"] != float64(2) {
		t.Fatalf("data = %v", data)
	}
}

func TestProcess_SkippedRunIsBadRequest(t *testing.T) {
	t.Parallel()

	h := mount(&fakeRunner{result: domain.Result{
		Status: domain.StatusSkipped,
		Err:    "OpenAI API key not configured",
	}})

	rr, env := do(t, h, stdhttp.MethodPost, "/process")
	if rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d want 400", rr.Code)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", env.Data)
	}
	if data["error"] != "OpenAI API key not configured" || data["status"] != "SKIPPED" {
		t.Fatalf("data = %v", data)
	}
}

func TestProcess_BusyRunIsBadRequest(t *testing.T) {
	t.Parallel()

	h := mount(&fakeRunner{result: domain.Result{
		Status: domain.StatusAlreadyRunning,
		Err:    "Pipeline already running",
	}})

	rr, _ := do(t, h, stdhttp.MethodPost, "/process")
	if rr.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d want 400", rr.Code)
	}
}

func TestStatus_ReportsRunningFlag(t *testing.T) {
	t.Parallel()

	for _, running := range []bool{true, false} {
		h := mount(&fakeRunner{running: running})
		rr, env := do(t, h, stdhttp.MethodGet, "/status")
		if rr.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d want 200", rr.Code)
		}
		data, ok := env.Data.(map[string]any)
		if !ok {
			t.Fatalf("data = %T", env.Data)
		}
		if data["running"] != running {
			t.Fatalf("running = %v want %v", data["running"], running)
		}
	}
}
