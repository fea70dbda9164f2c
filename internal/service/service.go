// Package service implements the computation pipeline shared by every
// transport surface: classify the query, build the circuit, execute it on
// the best available tier, and render a human-readable report. Every method
// returns renderable text so callers never have to translate errors.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/circuit"
	"dev.helix.quantum/internal/classify"
	"dev.helix.quantum/internal/config"
	"dev.helix.quantum/internal/format"
	"dev.helix.quantum/internal/observability/metrics"
	"dev.helix.quantum/internal/registry"
)

// DefaultShots is used when a caller does not specify a shot count.
const DefaultShots = 1024

// Service orchestrates the query-to-report pipeline.
type Service struct {
	cfg        *config.Config
	registry   *registry.Registry
	classifier *classify.Classifier
	metrics    *metrics.Collector
	logger     *logrus.Logger
}

// New creates a service around an uninitialized registry. Capability
// handles are constructed lazily on the first computation so that a
// misconfigured remote never blocks startup.
func New(cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		cfg:      cfg,
		registry: registry.New(logger),
		metrics:  metrics.NewCollector(),
		logger:   logger,
	}
}

// Metrics exposes the service's Prometheus collectors.
func (s *Service) Metrics() *metrics.Collector { return s.metrics }

// Registry exposes the capability registry, mainly for tests.
func (s *Service) Registry() *registry.Registry { return s.registry }

func (s *Service) ensureInit() error {
	if err := s.registry.Init(s.cfg); err != nil {
		return err
	}
	if s.classifier == nil {
		var completer classify.Completer
		if s.registry.LLM != nil {
			completer = s.registry.LLM
		}
		s.classifier = classify.New(completer, s.logger)
		s.classifier.OnFallback = s.metrics.ClassifierFallbacks.Inc
	}
	return nil
}

// QuantumCompute runs the full pipeline for a natural-language query and
// returns the formatted report. Errors are rendered into the returned text.
func (s *Service) QuantumCompute(ctx context.Context, query string, shots int) string {
	if strings.TrimSpace(query) == "" {
		return "Missing required parameter: query"
	}
	if shots <= 0 {
		shots = s.defaultShots()
	}

	if err := s.ensureInit(); err != nil {
		s.logger.WithError(err).Error("Service initialization failed")
		return "Failed to initialize quantum services"
	}

	req := s.classifier.Classify(ctx, query)
	req.Shots = shots

	c, err := circuit.Build(req)
	if err != nil {
		s.logger.WithError(err).WithField("operation", req.Operation).Error("Circuit construction failed")
		return fmt.Sprintf("Error: %v", err)
	}

	dispatcher := s.registry.Dispatcher()
	dispatcher.OnTierFailure = func(tier string) {
		s.metrics.TierFailures.WithLabelValues(tier).Inc()
	}

	start := time.Now()
	result, err := dispatcher.Execute(ctx, c, shots)
	if err != nil {
		s.logger.WithError(err).Error("Circuit execution failed")
		return fmt.Sprintf("Error: %v", err)
	}

	kind := string(result.BackendKind)
	s.metrics.Computations.WithLabelValues(string(req.Operation), kind).Inc()
	s.metrics.ExecutionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	return format.Format(req, c, result)
}

// ListBackends reports the remote backends visible to the account, or an
// explanation of how to enable remote execution when no token is set.
func (s *Service) ListBackends(ctx context.Context) string {
	if err := s.ensureInit(); err != nil {
		s.logger.WithError(err).Error("Service initialization failed")
		return "Failed to initialize services"
	}

	if s.registry.IBM == nil {
		return "IBM Quantum not available. Using local simulator only.\n\n" +
			"To enable IBM Quantum:\n" +
			"1. Set IBM_QUANTUM_TOKEN in environment\n" +
			"2. Get token from: https://quantum.ibm.com/account"
	}

	backends, err := s.registry.IBM.ListBackends(ctx)
	if err != nil {
		return fmt.Sprintf("Error listing backends: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "IBM Quantum Backends (%d found):\n\n", len(backends))
	for _, bk := range backends {
		status := "✅ Up"
		if !bk.Operational {
			status = "❌ Down"
		}
		simulator := "No"
		if bk.Simulator {
			simulator = "Yes"
		}
		fmt.Fprintf(&b, "• **%s**\n", bk.Name)
		fmt.Fprintf(&b, "  - Qubits: %d\n", bk.NumQubits)
		fmt.Fprintf(&b, "  - Status: %s\n", status)
		fmt.Fprintf(&b, "  - Simulator: %s\n\n", simulator)
	}
	return b.String()
}

var operationInfo = map[string]string{
	"bell_state":         "Bell states are maximally entangled quantum states of two qubits. They demonstrate quantum superposition and entanglement.",
	"qft":                "Quantum Fourier Transform is a quantum algorithm that applies the discrete Fourier transform to quantum amplitudes.",
	"grover":             "Grover's algorithm provides quadratic speedup for searching unsorted databases using quantum amplitude amplification.",
	"teleportation":      "Quantum teleportation transfers quantum information from one location to another using entanglement and classical communication.",
	"vqe":                "Variational Quantum Eigensolver finds the ground state energy of molecules using a hybrid quantum-classical approach.",
	"qaoa":               "Quantum Approximate Optimization Algorithm solves combinatorial optimization problems on near-term quantum devices.",
	"random":             "Quantum random number generation uses superposition and measurement to produce true randomness, one uniformly random bit per qubit.",
	"deutsch_jozsa":      "The Deutsch-Jozsa algorithm determines whether a function is constant or balanced with a single oracle query.",
	"bernstein_vazirani": "The Bernstein-Vazirani algorithm recovers a hidden bitstring from a single query to a dot-product oracle.",
	"custom":             "Custom circuits are built from an explicit gate list supplied in the request parameters.",
}

// CircuitInfo describes one operation kind. Unknown operations get a
// message listing the known ones.
func (s *Service) CircuitInfo(operation string) string {
	operation = strings.ToLower(strings.TrimSpace(operation))
	if operation == "" {
		return "Missing required parameter: operation"
	}
	if info, ok := operationInfo[operation]; ok {
		return info
	}
	names := make([]string, 0, len(operationInfo))
	for name := range operationInfo {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Information about '%s' is not available. Available operations: %s",
		operation, strings.Join(names, ", "))
}

func (s *Service) defaultShots() int {
	if s.cfg != nil && s.cfg.DefaultShots > 0 {
		return s.cfg.DefaultShots
	}
	return DefaultShots
}
