// Package api provides the HTTP API for the application
package api

import (
	"context"

	"github.com/iliebabcenco/big-collector/internal/adapters/llm"
	"github.com/iliebabcenco/big-collector/internal/platform/config"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
	phttp "github.com/iliebabcenco/big-collector/internal/platform/net/http"
	"github.com/iliebabcenco/big-collector/internal/platform/store"

	"github.com/iliebabcenco/big-collector/internal/modkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/httpkit"
	"github.com/iliebabcenco/big-collector/internal/modkit/module"

	collectormod "github.com/iliebabcenco/big-collector/internal/services/collector/module"
	metamod "github.com/iliebabcenco/big-collector/internal/services/meta/module"
	pipelinemod "github.com/iliebabcenco/big-collector/internal/services/pipeline/module"
	signalsmod "github.com/iliebabcenco/big-collector/internal/services/signals/module"
	vaultmod "github.com/iliebabcenco/big-collector/internal/services/vault/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// AI backend, nil when no key is configured so collectors and the
	// pipeline degrade gracefully
	var ai *llm.Client
	if llmCfg := llm.ConfigFromConf(deps.Cfg); llmCfg.Configured() {
		client, err := llm.New(llmCfg)
		if err != nil {
			opt.Logger.Panic().Err(err).Msg("llm client construction failed")
		}
		ai = client
	} else {
		opt.Logger.Warn().Msg("LLM not configured, brainstorm and pipeline disabled")
	}

	// Construct the signals and vault modules first and extract their ports
	signals := signalsmod.New(deps)
	sigPorts := module.MustPortsOf[signalsmod.Ports](signals)

	vault := vaultmod.New(deps)
	vaultPorts := module.MustPortsOf[vaultmod.Ports](vault)

	// Inject those ports into the collector and pipeline modules
	collector := collectormod.New(deps, collectormod.Inject{
		Signals: sigPorts.Ingest,
		AI:      ai,
	})
	pipeline := pipelinemod.New(deps, pipelinemod.Inject{
		Queue:      sigPorts.Queue,
		Prompts:    sigPorts.Prompts,
		Similarity: vaultPorts.Similarity,
		Writer:     vaultPorts.Writer,
		AI:         ai,
	})

	// runs stuck in RUNNING from a previous process are lies, clear them
	if err := collector.Service().ResetStale(context.Background()); err != nil {
		opt.Logger.Error().Err(err).Msg("failed to reset stale collector runs")
	}

	mods := []module.Module{
		metamod.New(deps),
		signals,
		vault,
		collector,
		pipeline,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
