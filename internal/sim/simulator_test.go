package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.quantum/internal/circuit"
)

func TestRunBellState(t *testing.T) {
	s := New(WithSeed(42))

	c := circuit.New(2, 2)
	c.H(0)
	c.CX(0, 1)
	c.MeasureAll()

	counts, err := s.Run(c, 1024)
	require.NoError(t, err)

	total := 0
	for state, n := range counts {
		assert.Contains(t, []string{"00", "11"}, state, "Bell state must only produce correlated outcomes")
		assert.Greater(t, n, 0)
		total += n
	}
	assert.Equal(t, 1024, total)
	assert.Len(t, counts, 2)
}

func TestRunPreparedBasisState(t *testing.T) {
	s := New(WithSeed(1))

	// X on qubit 0 of three qubits: the outcome is |001⟩ MSB-first.
	c := circuit.New(3, 3)
	c.X(0)
	c.MeasureAll()

	counts, err := s.Run(c, 100)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"001": 100}, counts)
}

func TestRunUniformEntropy(t *testing.T) {
	s := New(WithSeed(7))

	c := circuit.New(3, 3)
	c.H(0)
	c.H(1)
	c.H(2)
	c.MeasureAll()

	counts, err := s.Run(c, 4096)
	require.NoError(t, err)

	total := 0
	entropy := 0.0
	for _, n := range counts {
		total += n
	}
	require.Equal(t, 4096, total)
	for _, n := range counts {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	// A uniform 3-qubit distribution sits near the 3-bit maximum.
	assert.InDelta(t, 3.0, entropy, 0.1)
}

func TestRunDeterministicWithSeed(t *testing.T) {
	build := func() *circuit.Circuit {
		c := circuit.New(2, 2)
		c.H(0)
		c.CX(0, 1)
		c.MeasureAll()
		return c
	}

	a, err := New(WithSeed(99)).Run(build(), 512)
	require.NoError(t, err)
	b, err := New(WithSeed(99)).Run(build(), 512)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunGateCoverage(t *testing.T) {
	s := New(WithSeed(3))

	c := circuit.New(3, 3)
	c.H(0)
	c.S(0)
	c.T(0)
	c.Z(0)
	c.Y(1)
	c.RX(math.Pi/3, 1)
	c.RY(math.Pi/5, 2)
	c.RZ(math.Pi/7, 2)
	c.CZ(0, 1)
	c.CP(math.Pi/2, 1, 2)
	c.Swap(0, 2)
	c.CCX(0, 1, 2)
	c.Barrier()
	c.MeasureAll()

	counts, err := s.Run(c, 256)
	require.NoError(t, err)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 256, total)
}

func TestRunRejectsOversizedCircuit(t *testing.T) {
	s := New(WithMaxQubits(4))
	c := circuit.New(5, 5)
	c.H(0)
	c.MeasureAll()

	_, err := s.Run(c, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at most 4")
}

func TestRunRejectsBadArguments(t *testing.T) {
	s := New(WithSeed(1))

	_, err := s.Run(circuit.New(0, 0), 10)
	assert.Error(t, err)

	c := circuit.New(1, 1)
	c.H(0)
	_, err = s.Run(c, 0)
	assert.Error(t, err)
}

func TestRunRejectsUnknownGate(t *testing.T) {
	s := New(WithSeed(1))
	c := circuit.New(1, 1)
	c.Gates = append(c.Gates, circuit.Gate{Name: "frobnicate", Qubits: []int{0}})

	_, err := s.Run(c, 10)
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "aer_simulator", New().Name())
}
