// Package http provides http transport for the collector service
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	svc "github.com/iliebabcenco/big-collector/internal/services/collector/service"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Register mounts collector endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/collect/{sourceType}", h.start)
	httpkit.Post(r, "/stop/{sourceType}", h.stop)
	httpkit.Get(r, "/status", h.statuses)
	httpkit.Get(r, "/status/{sourceType}", h.status)
	httpkit.Get(r, "/runs", h.runs)
}

type handlers struct{ svc svc.Service }

func sourceTypeParam(r *stdhttp.Request) (sigdomain.SourceType, error) {
	src, err := sigdomain.ParseSourceType(chi.URLParam(r, "sourceType"))
	if err != nil {
		return "", perr.NotFoundf("unknown collector %q", chi.URLParam(r, "sourceType"))
	}
	return src, nil
}

func (h *handlers) start(r *stdhttp.Request) (any, error) {
	src, err := sourceTypeParam(r)
	if err != nil {
		return nil, err
	}

	found, started, err := h.svc.Start(r.Context(), src)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, perr.NotFoundf("no collector configured for %s", src)
	}
	if !started {
		return httpkit.Response{Status: stdhttp.StatusBadRequest, Body: map[string]any{
			"error":      "Collection already running for " + src.String(),
			"sourceType": src.String(),
		}}, nil
	}
	return httpkit.Response{Status: stdhttp.StatusAccepted, Body: map[string]any{
		"message":    "Collection started for " + src.String(),
		"sourceType": src.String(),
		"status":     string(domain.StatusRunning),
	}}, nil
}

func (h *handlers) stop(r *stdhttp.Request) (any, error) {
	src, err := sourceTypeParam(r)
	if err != nil {
		return nil, err
	}

	running, err := h.svc.Stop(r.Context(), src)
	if err != nil {
		return nil, err
	}
	if !running {
		return httpkit.Response{Status: stdhttp.StatusBadRequest, Body: map[string]any{
			"error":      "No running collection for " + src.String(),
			"sourceType": src.String(),
		}}, nil
	}
	return map[string]any{
		"message":    "Stop signal sent for " + src.String(),
		"sourceType": src.String(),
	}, nil
}

func (h *handlers) statuses(r *stdhttp.Request) (any, error) {
	return h.svc.Statuses(r.Context())
}

func (h *handlers) status(r *stdhttp.Request) (any, error) {
	src, err := sourceTypeParam(r)
	if err != nil {
		return nil, err
	}
	view, ok, err := h.svc.StatusOf(r.Context(), src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("no collector configured for %s", src)
	}
	return view, nil
}

func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	return h.svc.RecentRuns(r.Context())
}
