package circuit

import (
	"fmt"
	"math"
	"strings"

	"dev.helix.quantum/internal/models"
)

// Input-state tags recognized by the QFT builder.
const (
	StateSuperposition02    = "superposition_0_2"
	StateSuperposition13    = "superposition_1_3"
	StateSuperposition01    = "superposition_0_1"
	StateEqualSuperposition = "equal_superposition"
)

// InputStateDescription returns the human-readable form of a QFT input
// state tag.
func InputStateDescription(state string) string {
	switch state {
	case StateSuperposition02:
		return "|ψ⟩ = (1/√2)(|00⟩ + |10⟩) - States 0 and 2"
	case StateSuperposition13:
		return "|ψ⟩ = (1/√2)(|01⟩ + |11⟩) - States 1 and 3"
	case StateSuperposition01:
		return "|ψ⟩ = (1/√2)(|0⟩ + |1⟩) - Single qubit superposition"
	case StateEqualSuperposition:
		return "|ψ⟩ = (1/2)(|00⟩ + |01⟩ + |10⟩ + |11⟩) - All states"
	}
	return "Custom superposition state"
}

// ExtractInputState scans a query for one of the four canonical 2-qubit
// input states. Unrecognized queries default to the 0&2 superposition.
func ExtractInputState(query string) string {
	switch {
	case strings.Contains(query, "|00⟩ + |10⟩") || strings.Contains(query, "|00> + |10>"),
		strings.Contains(query, "|0⟩ + |2⟩") || strings.Contains(query, "|0> + |2>"):
		return StateSuperposition02
	case strings.Contains(query, "|01⟩ + |11⟩") || strings.Contains(query, "|01> + |11>"):
		return StateSuperposition13
	case strings.Contains(query, "|0⟩ + |1⟩") || strings.Contains(query, "|0> + |1>"):
		return StateSuperposition01
	case strings.Contains(strings.ToLower(query), "equal superposition"):
		return StateEqualSuperposition
	}
	return StateSuperposition02
}

// Build constructs the circuit for a classified request. Fixed-size
// operations silently override an inconsistent qubit count instead of
// rejecting the request.
func Build(req *models.ComputationRequest) (*Circuit, error) {
	switch req.Operation {
	case models.OperationBellState:
		return buildBellState(), nil
	case models.OperationRandom:
		return buildRandom(clampQubits(req.NumQubits, 1, 5)), nil
	case models.OperationQFT:
		return buildQFT(req), nil
	case models.OperationGrover:
		return buildGrover(req), nil
	case models.OperationTeleportation:
		return buildTeleportation(req), nil
	case models.OperationVQE:
		return buildVQE(req), nil
	case models.OperationQAOA:
		return buildQAOA(req), nil
	case models.OperationDeutschJozsa:
		return buildDeutschJozsa(req), nil
	case models.OperationBernsteinVazirani:
		return buildBernsteinVazirani(req), nil
	case models.OperationCustom:
		return buildCustom(req)
	}
	return nil, fmt.Errorf("unsupported operation type: %s", req.Operation)
}

func clampQubits(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func buildBellState() *Circuit {
	c := New(2, 2)
	c.H(0)
	c.CX(0, 1)
	c.MeasureAll()
	return c
}

func buildRandom(qubits int) *Circuit {
	c := New(qubits, qubits)
	for i := 0; i < qubits; i++ {
		c.H(i)
	}
	c.MeasureAll()
	return c
}

// buildQFT prepares the requested 2-qubit input state, then applies the
// fixed 2-qubit QFT gate sequence.
func buildQFT(req *models.ComputationRequest) *Circuit {
	state := StateSuperposition02
	if s, ok := req.Parameters["input_state"].(string); ok && s != "" {
		state = s
	} else if req.Query != "" {
		state = ExtractInputState(req.Query)
	}

	c := New(2, 2)
	switch state {
	case StateSuperposition13:
		// (|01⟩ + |11⟩)/√2: set qubit 0, superpose qubit 1.
		c.X(0)
		c.H(1)
	case StateSuperposition01:
		c.H(0)
	case StateEqualSuperposition:
		c.H(0)
		c.H(1)
	default:
		// (|00⟩ + |10⟩)/√2
		c.H(1)
	}
	c.Barrier()

	// 2-qubit QFT: H on the high qubit, controlled phase, H on the low
	// qubit, then swap to restore bit order.
	c.H(1)
	c.CP(math.Pi/2, 0, 1)
	c.H(0)
	c.Swap(0, 1)

	c.MeasureAll()
	return c
}

// buildGrover runs a single Grover iteration marking a target bitstring
// (default the all-ones state).
func buildGrover(req *models.ComputationRequest) *Circuit {
	qubits := clampQubits(req.NumQubits, 2, 3)
	target := strings.Repeat("1", qubits)
	if t, ok := req.Parameters["target"].(string); ok && len(t) == qubits {
		target = t
	}

	c := New(qubits, qubits)
	for i := 0; i < qubits; i++ {
		c.H(i)
	}
	c.Barrier()

	// Oracle: phase-flip the target state.
	flipZeros := func() {
		for i := 0; i < qubits; i++ {
			// target is written MSB-first: bit for qubit i sits at the
			// (qubits-1-i)th character.
			if target[qubits-1-i] == '0' {
				c.X(i)
			}
		}
	}
	flipZeros()
	controlledZ(c, qubits)
	flipZeros()
	c.Barrier()

	// Diffusion operator.
	for i := 0; i < qubits; i++ {
		c.H(i)
		c.X(i)
	}
	controlledZ(c, qubits)
	for i := 0; i < qubits; i++ {
		c.X(i)
		c.H(i)
	}

	c.MeasureAll()
	return c
}

// controlledZ applies a phase flip on the all-ones state of the first n
// qubits (CZ for n=2, CCZ via H-CCX-H for n=3).
func controlledZ(c *Circuit, n int) {
	if n == 2 {
		c.CZ(0, 1)
		return
	}
	c.H(n - 1)
	c.CCX(0, 1, n-1)
	c.H(n - 1)
}

// buildTeleportation uses the deferred-measurement form: the classically
// controlled corrections become CX/CZ before a single terminal measurement.
func buildTeleportation(req *models.ComputationRequest) *Circuit {
	theta := math.Pi / 4
	if v, ok := req.Parameters["theta"].(float64); ok {
		theta = v
	}

	c := New(3, 3)
	// State to teleport on qubit 0.
	c.RY(theta, 0)
	c.Barrier()
	// Bell pair between qubits 1 and 2.
	c.H(1)
	c.CX(1, 2)
	c.Barrier()
	// Bell measurement basis change on qubits 0 and 1.
	c.CX(0, 1)
	c.H(0)
	c.Barrier()
	// Deferred corrections.
	c.CX(1, 2)
	c.CZ(0, 2)
	c.MeasureAll()
	return c
}

// buildVQE emits one layer of a hardware-efficient RY ansatz with a linear
// entangling chain.
func buildVQE(req *models.ComputationRequest) *Circuit {
	qubits := clampQubits(req.NumQubits, 2, 4)
	theta := math.Pi / 3
	if v, ok := req.Parameters["theta"].(float64); ok {
		theta = v
	}

	c := New(qubits, qubits)
	for i := 0; i < qubits; i++ {
		c.RY(theta, i)
	}
	for i := 0; i < qubits-1; i++ {
		c.CX(i, i+1)
	}
	for i := 0; i < qubits; i++ {
		c.RY(theta/2, i)
	}
	c.MeasureAll()
	return c
}

// buildQAOA emits one QAOA round: uniform superposition, ZZ cost layer on a
// ring, RX mixer.
func buildQAOA(req *models.ComputationRequest) *Circuit {
	qubits := clampQubits(req.NumQubits, 2, 4)
	gamma := math.Pi / 4
	beta := math.Pi / 8
	if v, ok := req.Parameters["gamma"].(float64); ok {
		gamma = v
	}
	if v, ok := req.Parameters["beta"].(float64); ok {
		beta = v
	}

	c := New(qubits, qubits)
	for i := 0; i < qubits; i++ {
		c.H(i)
	}
	c.Barrier()
	for i := 0; i < qubits; i++ {
		j := (i + 1) % qubits
		if qubits == 2 && i == 1 {
			break // avoid doubling the single edge
		}
		c.CX(i, j)
		c.RZ(2*gamma, j)
		c.CX(i, j)
	}
	c.Barrier()
	for i := 0; i < qubits; i++ {
		c.RX(2*beta, i)
	}
	c.MeasureAll()
	return c
}

// buildDeutschJozsa builds the n-input oracle circuit. The oracle is
// balanced unless parameters request a constant function.
func buildDeutschJozsa(req *models.ComputationRequest) *Circuit {
	inputs := clampQubits(req.NumQubits, 1, 4)
	oracle := "balanced"
	if v, ok := req.Parameters["oracle"].(string); ok && v != "" {
		oracle = v
	}

	c := New(inputs+1, inputs)
	ancilla := inputs
	c.X(ancilla)
	for i := 0; i <= inputs; i++ {
		c.H(i)
	}
	c.Barrier()
	if oracle == "balanced" {
		for i := 0; i < inputs; i++ {
			c.CX(i, ancilla)
		}
	}
	// Constant oracle: identity.
	c.Barrier()
	for i := 0; i < inputs; i++ {
		c.H(i)
	}
	c.MeasureAll()
	return c
}

// buildBernsteinVazirani encodes a hidden bitstring (default "101",
// truncated or padded to the input width).
func buildBernsteinVazirani(req *models.ComputationRequest) *Circuit {
	inputs := clampQubits(req.NumQubits, 1, 5)
	secret := "101"
	if v, ok := req.Parameters["secret"].(string); ok && v != "" {
		secret = v
	}
	for len(secret) < inputs {
		secret = "0" + secret
	}
	secret = secret[len(secret)-inputs:]

	c := New(inputs+1, inputs)
	ancilla := inputs
	c.X(ancilla)
	for i := 0; i <= inputs; i++ {
		c.H(i)
	}
	c.Barrier()
	for i := 0; i < inputs; i++ {
		if secret[inputs-1-i] == '1' {
			c.CX(i, ancilla)
		}
	}
	c.Barrier()
	for i := 0; i < inputs; i++ {
		c.H(i)
	}
	c.MeasureAll()
	return c
}

// buildCustom assembles a circuit from an explicit gate list in the request
// parameters, falling back to a uniform superposition when none is given.
// Each entry has the form "h 0", "cx 0 1", or "ry(0.5) 2".
func buildCustom(req *models.ComputationRequest) (*Circuit, error) {
	qubits := clampQubits(req.NumQubits, 1, 5)
	c := New(qubits, qubits)

	raw, ok := req.Parameters["gates"].([]any)
	if !ok || len(raw) == 0 {
		for i := 0; i < qubits; i++ {
			c.H(i)
		}
		c.MeasureAll()
		return c, nil
	}

	for _, entry := range raw {
		spec, ok := entry.(string)
		if !ok {
			return nil, fmt.Errorf("custom gate entry is not a string: %v", entry)
		}
		if err := applyGateSpec(c, spec); err != nil {
			return nil, err
		}
	}
	c.MeasureAll()
	return c, nil
}

func applyGateSpec(c *Circuit, spec string) error {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(spec)))
	if len(fields) < 2 {
		return fmt.Errorf("malformed gate spec %q", spec)
	}

	name := fields[0]
	var params []float64
	if open := strings.Index(name, "("); open >= 0 {
		end := strings.Index(name, ")")
		if end < open {
			return fmt.Errorf("malformed gate spec %q", spec)
		}
		var theta float64
		if _, err := fmt.Sscanf(name[open+1:end], "%g", &theta); err != nil {
			return fmt.Errorf("bad parameter in gate spec %q", spec)
		}
		params = append(params, theta)
		name = name[:open]
	}

	qubits := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		var q int
		if _, err := fmt.Sscanf(f, "%d", &q); err != nil {
			return fmt.Errorf("bad qubit index in gate spec %q", spec)
		}
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("qubit index %d out of range in gate spec %q", q, spec)
		}
		qubits = append(qubits, q)
	}
	c.add(name, qubits, params...)
	return nil
}
