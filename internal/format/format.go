// Package format renders execution results as human-readable reports. It
// is pure: no mutation, no side effects beyond composing a string.
package format

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dev.helix.quantum/internal/circuit"
	"dev.helix.quantum/internal/models"
)

// Format renders the report for a completed computation, dispatching on the
// operation type.
func Format(req *models.ComputationRequest, c *circuit.Circuit, result *models.ExecutionResult) string {
	if req.Operation == models.OperationQFT {
		return formatQFT(req, c, result)
	}
	return formatGeneral(req, c, result)
}

// sortedCounts returns bitstrings ordered by descending count, ties broken
// by bitstring for stable output.
func sortedCounts(counts map[string]int) []string {
	states := make([]string, 0, len(counts))
	for s := range counts {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})
	return states
}

func totalShots(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// Entropy computes the Shannon entropy of the measured distribution in
// bits.
func Entropy(counts map[string]int) float64 {
	total := float64(totalShots(counts))
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func formatGeneral(req *models.ComputationRequest, c *circuit.Circuit, result *models.ExecutionResult) string {
	var b strings.Builder

	b.WriteString("\n🚀 Quantum Computation Results\n")
	b.WriteString("================================\n\n")
	fmt.Fprintf(&b, "📝 Original Query: %q\n\n", req.Query)
	fmt.Fprintf(&b, "🔬 Operation: %s\n", req.Operation)
	fmt.Fprintf(&b, "🔢 Qubits Used: %d\n", c.NumQubits)
	fmt.Fprintf(&b, "💻 Backend: %s (%s)\n", result.Backend, result.BackendKind.Label())
	fmt.Fprintf(&b, "🎯 Shots: %d\n\n", result.Shots)

	b.WriteString("📊 Measurement Results:\n")
	total := totalShots(result.Counts)
	for _, state := range sortedCounts(result.Counts) {
		count := result.Counts[state]
		percentage := 100 * float64(count) / float64(total)
		fmt.Fprintf(&b, "  |%s⟩: %d (%.1f%%)\n", state, count, percentage)
	}

	b.WriteString("\n🔧 Circuit Properties:\n")
	fmt.Fprintf(&b, "  • Depth: %d\n", result.CircuitDepth)
	fmt.Fprintf(&b, "  • Width: %d\n", result.CircuitWidth)

	b.WriteString("\n📈 Analysis:\n")
	switch req.Operation {
	case models.OperationBellState:
		b.WriteString("  • Bell state created successfully\n")
		b.WriteString("  • Shows quantum entanglement between qubits\n")
		b.WriteString("  • Expect roughly equal probabilities for |00⟩ and |11⟩\n")
	case models.OperationRandom:
		if total > 0 {
			b.WriteString("  • Quantum randomness generated\n")
			fmt.Fprintf(&b, "  • Entropy: %.3f bits\n", Entropy(result.Counts))
			fmt.Fprintf(&b, "  • Maximum possible entropy: %d bits\n", c.NumQubits)
		}
	case models.OperationGrover:
		b.WriteString("  • Grover's algorithm executed\n")
		b.WriteString("  • Amplifies probability of marked states\n")
		b.WriteString("  • Look for states with higher probabilities\n")
	}

	if result.BackendKind == models.BackendHardware {
		b.WriteString("\n⭐ **SPECIAL**: These results came from real quantum hardware!\n")
		b.WriteString("   • Each measurement is a genuine quantum event\n")
		b.WriteString("   • Results may show quantum noise and decoherence\n")
	}

	b.WriteString("\n🎨 Circuit Visualization:\n")
	b.WriteString(c.Draw())
	b.WriteString("\n✅ Quantum computation completed successfully!\n")

	return b.String()
}

func formatQFT(req *models.ComputationRequest, c *circuit.Circuit, result *models.ExecutionResult) string {
	inputState := circuit.StateSuperposition02
	if s, ok := req.Parameters["input_state"].(string); ok && s != "" {
		inputState = s
	} else if req.Query != "" {
		inputState = circuit.ExtractInputState(req.Query)
	}

	var b strings.Builder
	b.WriteString("\n🚀 Quantum Fourier Transform Results\n")
	b.WriteString("=====================================\n\n")
	fmt.Fprintf(&b, "📝 Original Query: %q\n\n", req.Query)
	b.WriteString("🔬 Operation: 2-Qubit Quantum Fourier Transform (QFT)\n")
	fmt.Fprintf(&b, "📊 Input State: %s\n", circuit.InputStateDescription(inputState))
	fmt.Fprintf(&b, "💻 Backend: %s (%s)\n", result.Backend, result.BackendKind.Label())
	fmt.Fprintf(&b, "🎯 Shots: %d\n\n", result.Shots)

	b.WriteString("📊 QFT Output Measurements:\n")
	total := totalShots(result.Counts)
	for _, state := range sortedCounts(result.Counts) {
		count := result.Counts[state]
		percentage := 100 * float64(count) / float64(total)
		fmt.Fprintf(&b, "  |%s⟩: %4d (%5.1f%%)\n", state, count, percentage)
	}

	b.WriteString("\n🔧 Circuit Properties:\n")
	fmt.Fprintf(&b, "  • Total Depth: %d\n", result.CircuitDepth)
	fmt.Fprintf(&b, "  • Width: %d\n", result.CircuitWidth)
	b.WriteString("  • QFT Depth: ~3 (theoretical)\n")

	b.WriteString("\n🧮 Frequency Analysis:\n")
	b.WriteString(frequencyAnalysis(inputState))

	if result.BackendKind == models.BackendHardware {
		b.WriteString("\n⭐ **SPECIAL**: These results came from real quantum hardware!\n")
	}

	b.WriteString("\n🎨 QFT Circuit Structure:\n")
	b.WriteString(c.Draw())
	b.WriteString("\n✅ Quantum Fourier Transform completed successfully!\n")

	return b.String()
}

// frequencyAnalysis returns the canned theoretical narrative for a
// recognized input state. The text is static lookup content keyed by the
// input-state tag, not computed from the measured counts.
func frequencyAnalysis(inputState string) string {
	switch inputState {
	case circuit.StateSuperposition02:
		return `
🎯 **Expected QFT Result for |ψ⟩ = (1/√2)(|00⟩ + |10⟩)**:

📊 **Theoretical Prediction**:
  • |00⟩: 50% (k=0, DC component)
  • |01⟩: 0%  (k=1, forbidden by symmetry)
  • |10⟩: 50% (k=2, Nyquist frequency)
  • |11⟩: 0%  (k=3, forbidden by symmetry)

🔍 **Frequency Interpretation**:
  • **k=0 (|00⟩)**: DC/constant component
  • **k=2 (|10⟩)**: Maximum frequency (period-2 oscillation)
  • **k=1,3**: Absent due to even-parity symmetry

⚡ **Key Insight**: This state has perfect frequency filtering!
   Only DC and Nyquist frequency components are present.

🌟 **Remarkable Property**: QFT(|ψ⟩) = |ψ⟩
   This input state is an eigenstate of the QFT operator!
`
	case circuit.StateSuperposition13:
		return `
🎯 **Expected QFT Result for |ψ⟩ = (1/√2)(|01⟩ + |11⟩)**:

📊 **Theoretical Prediction**:
  • |00⟩: 0%  (k=0, forbidden)
  • |01⟩: 50% (k=1, fundamental frequency)
  • |10⟩: 0%  (k=2, forbidden)
  • |11⟩: 50% (k=3, high frequency)

🔍 **Frequency Interpretation**:
  • Shows odd-parity frequency components only
  • Complementary to the even-parity case
`
	case circuit.StateSuperposition01:
		return `
🎯 **Expected QFT Result for |ψ⟩ = (1/√2)(|0⟩ + |1⟩)**:

📊 **Theoretical Prediction**:
  • |00⟩: 50% (k=0, DC component)
  • |01⟩: 50% (k=1, fundamental frequency)
  • |10⟩, |11⟩: suppressed

🔍 **Frequency Interpretation**:
  • Single-qubit superposition spreads over the low frequencies
`
	case circuit.StateEqualSuperposition:
		return `
🎯 **Expected QFT Result for Equal Superposition**:

📊 **Theoretical Prediction**:
  • |00⟩: 100% (only k=0 survives)
  • All other states: 0%

🔍 **Frequency Interpretation**:
  • Pure DC component only
  • All frequency information washed out by averaging
`
	}
	return "Custom state frequency analysis not available.\n"
}
