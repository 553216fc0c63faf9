package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "github.com/iliebabcenco/big-collector/internal/platform/net/http"
)

type okPinger struct{}

func (okPinger) Ping(stdctx.Context) error { return nil }

type failPinger struct{}

func (failPinger) Ping(stdctx.Context) error { return errors.New("connection refused") }

func mount(d Deps) stdhttp.Handler {
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	return m
}

func do(t *testing.T, h stdhttp.Handler, path string, out any) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v\n%s", err, rr.Body.String())
	}
	raw, _ := json.Marshal(env.Data)
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("data does not match shape: %v", err)
	}
	return rr.Code
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := mount(Deps{ServiceName: "big-collector-api", StartedAt: time.Now()})
	var resp HealthResponse
	if code := do(t, h, "/health", &resp); code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !resp.OK || resp.Service != "big-collector-api" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestReady_AllBackendsUp(t *testing.T) {
	t.Parallel()

	h := mount(Deps{PG: okPinger{}, CH: okPinger{}})
	var resp ReadyResponse
	do(t, h, "/ready", &resp)
	if resp.Status != "ok" || len(resp.Checks) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestReady_MissingBackendDegrades(t *testing.T) {
	t.Parallel()

	h := mount(Deps{PG: okPinger{}, CH: nil})
	var resp ReadyResponse
	do(t, h, "/ready", &resp)
	if resp.Status != "degraded" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Checks[1].Name != "ch" || resp.Checks[1].Status != "skipped" {
		t.Fatalf("checks = %+v", resp.Checks)
	}
}

func TestReady_FailedPingFails(t *testing.T) {
	t.Parallel()

	h := mount(Deps{PG: failPinger{}, CH: okPinger{}})
	var resp ReadyResponse
	do(t, h, "/ready", &resp)
	if resp.Status != "fail" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Checks[0].Error == "" {
		t.Fatalf("failed check should carry the error")
	}
}

func TestService_ReportsUptime(t *testing.T) {
	t.Parallel()

	h := mount(Deps{ServiceName: "big-collector-api", StartedAt: time.Now().Add(-90 * time.Second)})
	var resp ServiceResponse
	do(t, h, "/service", &resp)
	if resp.Name != "big-collector-api" || resp.Uptime < 90 {
		t.Fatalf("resp = %+v", resp)
	}
}
