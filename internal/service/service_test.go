package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.quantum/internal/classify"
	"dev.helix.quantum/internal/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{DefaultShots: 1024}
	cfg.Sim.Seed = 42
	return New(cfg, logger)
}

func TestQuantumComputeMissingQuery(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, "Missing required parameter: query", svc.QuantumCompute(context.Background(), "", 1024))
	assert.Equal(t, "Missing required parameter: query", svc.QuantumCompute(context.Background(), "   ", 1024))
}

func TestQuantumComputeBellState(t *testing.T) {
	svc := newTestService(t)
	report := svc.QuantumCompute(context.Background(), "create a bell state", 1024)

	assert.Contains(t, report, "bell_state")
	assert.Contains(t, report, `"create a bell state"`)
	assert.Contains(t, report, "aer_simulator")
	assert.Contains(t, report, "Shots: 1024")
	assert.NotContains(t, report, "Error:")

	// Only the correlated outcomes appear.
	assert.Contains(t, report, "|00⟩")
	assert.Contains(t, report, "|11⟩")
	assert.NotContains(t, report, "|01⟩")
	assert.NotContains(t, report, "|10⟩")
}

func TestQuantumComputeDefaultShots(t *testing.T) {
	svc := newTestService(t)
	report := svc.QuantumCompute(context.Background(), "create a bell state", 0)
	assert.Contains(t, report, "Shots: 1024")
}

func TestQuantumComputeRandomEntropy(t *testing.T) {
	svc := newTestService(t)
	report := svc.QuantumCompute(context.Background(), "generate a random number with 3 qubits", 4096)

	assert.Contains(t, report, "random")
	assert.Contains(t, report, "Entropy:")
	assert.Contains(t, report, "Maximum possible entropy: 3 bits")
}

type fakeCompleter struct{ reply string }

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return f.reply, nil
}

func TestQuantumComputeQFT(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.ensureInit())
	svc.classifier = classify.New(&fakeCompleter{
		reply: `{"operation_type": "qft", "num_qubits": 2, "parameters": {}}`,
	}, svc.logger)

	report := svc.QuantumCompute(context.Background(), "apply a QFT to |00> + |10>", 1024)
	assert.Contains(t, report, "Quantum Fourier Transform Results")
	assert.Contains(t, report, "eigenstate of the QFT operator")
}

func TestQuantumComputeRecordsMetrics(t *testing.T) {
	svc := newTestService(t)
	svc.QuantumCompute(context.Background(), "create a bell state", 128)

	count := testutil.ToFloat64(svc.Metrics().Computations.WithLabelValues("bell_state", "local_simulator"))
	assert.Equal(t, 1.0, count)
	// No language model configured, so classification fell back.
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Metrics().ClassifierFallbacks))
}

func TestListBackendsWithoutToken(t *testing.T) {
	svc := newTestService(t)
	msg := svc.ListBackends(context.Background())

	assert.Contains(t, msg, "IBM Quantum not available")
	assert.Contains(t, msg, "IBM_QUANTUM_TOKEN")
	assert.Contains(t, msg, "https://quantum.ibm.com/account")
}

func TestCircuitInfo(t *testing.T) {
	svc := newTestService(t)

	assert.Contains(t, svc.CircuitInfo("bell_state"), "maximally entangled")
	assert.Contains(t, svc.CircuitInfo("GROVER"), "quadratic speedup")
	assert.Contains(t, svc.CircuitInfo("qaoa"), "combinatorial optimization")

	unknown := svc.CircuitInfo("shor")
	assert.Contains(t, unknown, "'shor' is not available")
	assert.Contains(t, unknown, "bell_state")

	assert.Equal(t, "Missing required parameter: operation", svc.CircuitInfo(""))
}

func TestCircuitInfoCoversAllOperations(t *testing.T) {
	svc := newTestService(t)
	for op := range operationInfo {
		info := svc.CircuitInfo(op)
		assert.False(t, strings.Contains(info, "not available"), op)
	}
}
