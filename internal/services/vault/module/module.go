// Package module wires the problem vault into the API using modkit
package module

import (
	"net/http"

	"github.com/iliebabcenco/big-collector/internal/modkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	str "github.com/iliebabcenco/big-collector/internal/platform/strings"
	"github.com/iliebabcenco/big-collector/internal/services/vault/domain"
	vaulthttp "github.com/iliebabcenco/big-collector/internal/services/vault/http"
	"github.com/iliebabcenco/big-collector/internal/services/vault/repo"
	"github.com/iliebabcenco/big-collector/internal/services/vault/service"
)

// Ports exposed by the vault module
type Ports struct {
	Similarity domain.SimilarityPort
	Writer     domain.WriterPort
	Query      domain.QueryPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)

	svc service.Service
}

// New constructs a vault module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("vault"), modkit.WithPrefix("/vault")}, opts...)...)

	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Similarity: svc, Writer: svc, Query: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		vaulthttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module port set
func (m *Module) Ports() any { return m.ports }
