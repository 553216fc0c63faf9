// Package module implements the signals service module
package module

import (
	"github.com/iliebabcenco/big-collector/internal/modkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/repokit"
	"github.com/iliebabcenco/big-collector/internal/services/signals/domain"
	"github.com/iliebabcenco/big-collector/internal/services/signals/repo"
	"github.com/iliebabcenco/big-collector/internal/services/signals/service"
)

// Ports exposed by the signals module
type Ports struct {
	Ingest  domain.IngestPort
	Queue   domain.QueuePort
	Prompts domain.PromptPort
}

// Module implements the signals service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new signals module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{
		Ingest:  svc,
		Queue:   svc,
		Prompts: svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "signals" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
