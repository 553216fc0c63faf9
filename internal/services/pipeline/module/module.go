// Package module wires the pipeline into the API using modkit
package module

import (
	"net/http"

	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/modkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	str "github.com/iliebabcenco/big-collector/internal/platform/strings"
	"github.com/iliebabcenco/big-collector/internal/services/pipeline/domain"
	pipelinehttp "github.com/iliebabcenco/big-collector/internal/services/pipeline/http"
	"github.com/iliebabcenco/big-collector/internal/services/pipeline/service"
	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
	vaultdomain "github.com/iliebabcenco/big-collector/internal/services/vault/domain"
)

// Inject carries cross module dependencies the pipeline consumes
type Inject struct {
	Queue      sigdomain.QueuePort
	Prompts    sigdomain.PromptPort
	Similarity vaultdomain.SimilarityPort
	Writer     vaultdomain.WriterPort
	// AI is nil when no API key is configured; runs then report SKIPPED
	AI *llm.Client
}

// Ports exposed by the pipeline module
type Ports struct {
	Runner domain.RunnerPort
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

// New constructs a pipeline module with the provided dependencies and options
func New(deps modkit.Deps, inj Inject, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("pipeline"), modkit.WithPrefix("/pipeline")}, opts...)...)

	var (
		verify  service.Verifier
		extract service.Extractor
		embed   service.Embedder
		score   service.Scorer
	)
	if inj.AI != nil {
		verify = inj.AI
		extract = inj.AI
		embed = inj.AI
		score = inj.AI
	}
	dedup := service.NewDeduper(inj.Similarity, inj.Writer, verify)
	svc := service.New(inj.Queue, inj.Prompts, inj.Writer, dedup, extract, embed, score)

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}
	m.ports = Ports{Runner: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		pipelinehttp.Register(r, m.svc)
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
