// Package sim implements an in-process statevector simulator. It is the
// unconditional execution floor: every computation can run here when no
// remote backend is reachable.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"time"

	"dev.helix.quantum/internal/circuit"
)

// BackendName is the identity reported for locally simulated executions.
const BackendName = "aer_simulator"

// DefaultMaxQubits bounds statevector memory (2^25 amplitudes ≈ 512 MB).
const DefaultMaxQubits = 25

// Simulator holds the configuration for local circuit execution.
type Simulator struct {
	maxQubits int
	rng       *rand.Rand
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed fixes the sampling seed for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithMaxQubits overrides the qubit cap.
func WithMaxQubits(n int) Option {
	return func(s *Simulator) { s.maxQubits = n }
}

// New constructs a simulator with a time-based seed unless overridden.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		maxQubits: DefaultMaxQubits,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the simulator's backend identity.
func (s *Simulator) Name() string { return BackendName }

// Run executes the circuit and samples shot outcomes from the final
// statevector, returning a bitstring histogram. Bitstrings are rendered
// MSB-first (qubit N-1 leftmost).
func (s *Simulator) Run(c *circuit.Circuit, shots int) (map[string]int, error) {
	if c.NumQubits < 1 {
		return nil, fmt.Errorf("circuit has no qubits")
	}
	if c.NumQubits > s.maxQubits {
		return nil, fmt.Errorf("circuit requires %d qubits, simulator supports at most %d", c.NumQubits, s.maxQubits)
	}
	if shots < 1 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}

	state := newState(c.NumQubits)
	for _, g := range c.Gates {
		if err := state.apply(g); err != nil {
			return nil, err
		}
	}
	return state.sample(s.rng, shots), nil
}

// state is a full statevector over 2^n amplitudes, indexed little-endian:
// bit i of the index is the value of qubit i.
type state struct {
	n   int
	amp []complex128
}

func newState(n int) *state {
	amp := make([]complex128, 1<<uint(n))
	amp[0] = 1
	return &state{n: n, amp: amp}
}

var (
	invSqrt2 = complex(1/math.Sqrt2, 0)

	gateH = [2][2]complex128{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}
	gateX = [2][2]complex128{{0, 1}, {1, 0}}
	gateY = [2][2]complex128{{0, complex(0, -1)}, {complex(0, 1), 0}}
	gateZ = [2][2]complex128{{1, 0}, {0, -1}}
	gateS = [2][2]complex128{{1, 0}, {0, complex(0, 1)}}
	gateT = [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}
)

func rotation(name string, theta float64) ([2][2]complex128, bool) {
	half := theta / 2
	switch name {
	case "rx":
		return [2][2]complex128{
			{complex(math.Cos(half), 0), complex(0, -math.Sin(half))},
			{complex(0, -math.Sin(half)), complex(math.Cos(half), 0)},
		}, true
	case "ry":
		return [2][2]complex128{
			{complex(math.Cos(half), 0), complex(-math.Sin(half), 0)},
			{complex(math.Sin(half), 0), complex(math.Cos(half), 0)},
		}, true
	case "rz":
		return [2][2]complex128{
			{cmplx.Exp(complex(0, -half)), 0},
			{0, cmplx.Exp(complex(0, half))},
		}, true
	}
	return [2][2]complex128{}, false
}

func (st *state) apply(g circuit.Gate) error {
	switch g.Name {
	case "barrier":
		return nil
	case "h":
		st.applySingle(gateH, g.Qubits[0])
	case "x":
		st.applySingle(gateX, g.Qubits[0])
	case "y":
		st.applySingle(gateY, g.Qubits[0])
	case "z":
		st.applySingle(gateZ, g.Qubits[0])
	case "s":
		st.applySingle(gateS, g.Qubits[0])
	case "sdg":
		st.applySingle([2][2]complex128{{1, 0}, {0, complex(0, -1)}}, g.Qubits[0])
	case "t":
		st.applySingle(gateT, g.Qubits[0])
	case "tdg":
		st.applySingle([2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, -math.Pi/4))}}, g.Qubits[0])
	case "rx", "ry", "rz":
		if len(g.Params) != 1 {
			return fmt.Errorf("gate %s requires one angle parameter", g.Name)
		}
		m, _ := rotation(g.Name, g.Params[0])
		st.applySingle(m, g.Qubits[0])
	case "cx":
		st.applyControlled(gateX, g.Qubits[0], g.Qubits[1])
	case "cz":
		st.applyControlled(gateZ, g.Qubits[0], g.Qubits[1])
	case "cp":
		if len(g.Params) != 1 {
			return fmt.Errorf("gate cp requires one angle parameter")
		}
		phase := [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, g.Params[0]))}}
		st.applyControlled(phase, g.Qubits[0], g.Qubits[1])
	case "swap":
		st.applySwap(g.Qubits[0], g.Qubits[1])
	case "ccx":
		st.applyToffoli(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	default:
		return fmt.Errorf("unsupported gate: %s", g.Name)
	}
	return nil
}

func (st *state) applySingle(m [2][2]complex128, q int) {
	mask := 1 << uint(q)
	for i := range st.amp {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := st.amp[i], st.amp[j]
		st.amp[i] = m[0][0]*a0 + m[0][1]*a1
		st.amp[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (st *state) applyControlled(m [2][2]complex128, control, target int) {
	cmask := 1 << uint(control)
	tmask := 1 << uint(target)
	for i := range st.amp {
		if i&cmask == 0 || i&tmask != 0 {
			continue
		}
		j := i | tmask
		a0, a1 := st.amp[i], st.amp[j]
		st.amp[i] = m[0][0]*a0 + m[0][1]*a1
		st.amp[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (st *state) applySwap(a, b int) {
	amask := 1 << uint(a)
	bmask := 1 << uint(b)
	for i := range st.amp {
		if i&amask != 0 && i&bmask == 0 {
			j := (i &^ amask) | bmask
			st.amp[i], st.amp[j] = st.amp[j], st.amp[i]
		}
	}
}

func (st *state) applyToffoli(c1, c2, target int) {
	m1 := 1 << uint(c1)
	m2 := 1 << uint(c2)
	tmask := 1 << uint(target)
	for i := range st.amp {
		if i&m1 != 0 && i&m2 != 0 && i&tmask == 0 {
			j := i | tmask
			st.amp[i], st.amp[j] = st.amp[j], st.amp[i]
		}
	}
}

// sample draws shots outcomes from |amplitude|².
func (st *state) sample(rng *rand.Rand, shots int) map[string]int {
	probs := make([]float64, len(st.amp))
	total := 0.0
	for i, a := range st.amp {
		p := real(a)*real(a) + imag(a)*imag(a)
		probs[i] = p
		total += p
	}

	counts := make(map[string]int)
	for s := 0; s < shots; s++ {
		r := rng.Float64() * total
		acc := 0.0
		idx := len(probs) - 1
		for i, p := range probs {
			acc += p
			if r < acc {
				idx = i
				break
			}
		}
		counts[st.bitstring(idx)]++
	}
	return counts
}

func (st *state) bitstring(idx int) string {
	b := make([]byte, st.n)
	for q := 0; q < st.n; q++ {
		if idx&(1<<uint(q)) != 0 {
			b[st.n-1-q] = '1'
		} else {
			b[st.n-1-q] = '0'
		}
	}
	return string(b)
}
