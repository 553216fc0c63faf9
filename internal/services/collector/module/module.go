// Package module wires the collector service into the API using modkit
package module

import (
	"context"
	"net/http"

	"github.com/iliebabcenco/big-collector/internal/adapters/httpc"
	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/modkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	str "github.com/iliebabcenco/big-collector/internal/platform/strings"
	"github.com/iliebabcenco/big-collector/internal/services/collector/domain"
	collectorhttp "github.com/iliebabcenco/big-collector/internal/services/collector/http"
	"github.com/iliebabcenco/big-collector/internal/services/collector/repo"
	"github.com/iliebabcenco/big-collector/internal/services/collector/service"
	"github.com/iliebabcenco/big-collector/internal/services/collector/sources"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Inject carries cross module dependencies the collector consumes
type Inject struct {
	// Signals accepts the raw items every source produces
	Signals sigdomain.IngestPort
	// AI powers the brainstorm source; nil disables it gracefully
	AI *llm.Client
}

// Ports exposed by the collector module
type Ports struct {
	Admin   domain.AdminPort
	Targets domain.TargetPort
	RunLog  domain.RunLogPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    any
	register func(httpkit.Router)

	svc *service.Svc
}

// New constructs a collector module with the provided dependencies and options
func New(deps modkit.Deps, inj Inject, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("collector"), modkit.WithPrefix("/collector")}, opts...)...)

	settings := SettingsFromConfig(deps.Cfg)
	client := httpc.New("collector", httpc.Options{
		Timeout:   settings.HTTPTimeout,
		UserAgent: settings.HTTPUserAgent,
	})

	// targets are read through a direct binding so sources don't need the
	// admin service they themselves feed
	binder := repo.NewPG()
	srcDeps := sources.Deps{
		HTTP:    client,
		Signals: inj.Signals,
		Targets: targetLister{st: binder.Bind(deps.PG)},
	}
	srcs := sources.All(srcDeps, settings.Sources, inj.AI)

	runlog := repo.NewRunLog(deps.CH)
	svc := service.New(deps.PG, binder, runlog, srcs)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Admin: svc, Targets: svc, RunLog: runlog}

	external := b.Register
	m.register = func(r httpkit.Router) {
		collectorhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Service exposes the admin service for startup hooks
func (m *Module) Service() *service.Svc { return m.svc }

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

// targetLister adapts the bound storage to the target port
type targetLister struct{ st repo.Storage }

func (t targetLister) EnabledTargets(ctx context.Context, src sigdomain.SourceType) ([]domain.Target, error) {
	return t.st.EnabledTargets(ctx, src)
}
