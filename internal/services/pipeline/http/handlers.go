// Package http provides http transport for the pipeline service
package http

import (
	stdhttp "net/http"

	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	svc "github.com/iliebabcenco/big-collector/internal/services/pipeline/service"
)

// Register mounts pipeline endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/process", h.process)
	httpkit.Get(r, "/status", h.status)
}

type handlers struct{ svc svc.Service }

func (h *handlers) process(r *stdhttp.Request) (any, error) {
	res := h.svc.Process(r.Context())
	if res.Err != "" {
		return httpkit.Response{
			Status: stdhttp.StatusBadRequest,
			Body:   map[string]any{"error": res.Err, "status": res.Status},
		}, nil
	}
	return res, nil
}

func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return map[string]any{"running": h.svc.Running()}, nil
}
