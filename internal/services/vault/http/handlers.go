// Package http provides http transport for the problem vault
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
	"github.com/iliebabcenco/big-collector/internal/services/vault/domain"
	svc "github.com/iliebabcenco/big-collector/internal/services/vault/service"
)

// Register mounts vault endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct{ svc svc.Service }

// EntryWithEvidence is the detail payload for one vault entry
type EntryWithEvidence struct {
	domain.Entry
	Evidence []domain.Evidence `json:"evidence"`
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	f := domain.Filter{
		Industry:    q.Get("industry"),
		ProblemType: q.Get("problem_type"),
	}
	if v := q.Get("min_score"); v != "" {
		ms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, perr.InvalidArgf("min_score must be a number")
		}
		f.MinScore = &ms
	}
	if v := q.Get("min_sources"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, perr.InvalidArgf("min_sources must be an integer")
		}
		f.MinSources = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, perr.InvalidArgf("limit must be an integer")
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, perr.InvalidArgf("offset must be an integer")
		}
		f.Offset = n
	}
	return h.svc.List(r.Context(), f)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, perr.InvalidArgf("id must be an integer")
	}
	e, ev, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return EntryWithEvidence{Entry: e, Evidence: ev}, nil
}
