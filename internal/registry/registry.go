// Package registry wires the optional external capabilities (language
// model, remote quantum service, local simulator) into one explicit context
// object constructed from configuration.
package registry

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/backend"
	"dev.helix.quantum/internal/config"
	"dev.helix.quantum/internal/llm/openai"
	"dev.helix.quantum/internal/sim"
)

// Registry holds at most one of each capability handle. LLM and IBM may be
// nil when their credentials are absent or construction failed; Simulator
// is always present on a successfully initialized registry.
type Registry struct {
	LLM       *openai.Provider
	IBM       *backend.IBMClient
	Simulator *sim.Simulator

	logger *logrus.Logger

	mu          sync.Mutex
	initialized bool
}

// New creates an uninitialized registry.
func New(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{logger: logger}
}

// Init constructs the capability handles from configuration. It is
// idempotent: repeated calls after a successful init are cheap no-ops.
// Failure to construct the language-model or remote handles is non-fatal;
// failure to construct the simulator is.
func (r *Registry) Init(cfg *config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"openai_key": config.RedactedKey(cfg.OpenAI.APIKey),
		"ibm_token":  config.RedactedKey(cfg.IBM.Token),
	}).Info("Initializing quantum services")

	opts := []sim.Option{}
	if cfg.Sim.MaxQubits > 0 {
		opts = append(opts, sim.WithMaxQubits(cfg.Sim.MaxQubits))
	}
	if cfg.Sim.Seed != 0 {
		opts = append(opts, sim.WithSeed(cfg.Sim.Seed))
	}
	r.Simulator = sim.New(opts...)
	if r.Simulator == nil {
		return fmt.Errorf("failed to initialize local simulator")
	}
	r.logger.Info("Local simulator initialized")

	if cfg.OpenAI.APIKey != "" {
		r.LLM = openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		r.logger.Info("OpenAI provider initialized")
	} else {
		r.logger.Info("OpenAI key missing, classification uses local processing only")
	}

	if cfg.IBM.Token != "" {
		client, err := backend.NewIBMClient(backend.IBMConfig{
			Token:        cfg.IBM.Token,
			BaseURL:      cfg.IBM.BaseURL,
			JobTimeout:   cfg.IBM.JobTimeout,
			PollInterval: cfg.IBM.PollInterval,
		}, r.logger)
		if err != nil {
			r.logger.WithError(err).Warn("IBM Quantum initialization failed")
		} else {
			r.IBM = client
			r.logger.Info("IBM Quantum client initialized")
		}
	} else {
		r.logger.Info("IBM token missing, using local simulator only")
	}

	r.initialized = true
	return nil
}

// Dispatcher builds the tiered execution dispatcher: remote hardware first
// when available, local simulation as the floor.
func (r *Registry) Dispatcher() *backend.Dispatcher {
	tiers := []backend.Backend{}
	if r.IBM != nil {
		tiers = append(tiers, backend.NewHardwareBackend(r.IBM))
	}
	tiers = append(tiers, backend.NewLocalBackend(r.Simulator))
	return backend.NewDispatcher(r.logger, tiers...)
}
