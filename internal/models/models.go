// Package models defines the shared data model for the quantum computation
// pipeline: operation types, classified requests, and normalized execution
// results.
package models

// OperationType identifies a supported quantum operation template.
type OperationType string

const (
	OperationBellState         OperationType = "bell_state"
	OperationQFT               OperationType = "qft"
	OperationGrover            OperationType = "grover"
	OperationTeleportation     OperationType = "teleportation"
	OperationVQE               OperationType = "vqe"
	OperationQAOA              OperationType = "qaoa"
	OperationCustom            OperationType = "custom"
	OperationRandom            OperationType = "random"
	OperationDeutschJozsa      OperationType = "deutsch_jozsa"
	OperationBernsteinVazirani OperationType = "bernstein_vazirani"
)

// AllOperations lists every supported operation type.
var AllOperations = []OperationType{
	OperationBellState,
	OperationQFT,
	OperationGrover,
	OperationTeleportation,
	OperationVQE,
	OperationQAOA,
	OperationCustom,
	OperationRandom,
	OperationDeutschJozsa,
	OperationBernsteinVazirani,
}

// ParseOperationType validates a raw operation string against the closed set.
func ParseOperationType(s string) (OperationType, bool) {
	op := OperationType(s)
	for _, known := range AllOperations {
		if op == known {
			return op, true
		}
	}
	return "", false
}

// ComputationRequest is the classified form of a natural-language query.
// It is created once by the classifier and never mutated afterward.
type ComputationRequest struct {
	Query      string         `json:"query"`
	Operation  OperationType  `json:"operation_type"`
	Parameters map[string]any `json:"parameters"`
	NumQubits  int            `json:"num_qubits"`
	Shots      int            `json:"shots"`
}

// BackendKind categorizes where a circuit was executed.
type BackendKind string

const (
	BackendHardware       BackendKind = "hardware"
	BackendCloudSimulator BackendKind = "cloud_simulator"
	BackendLocalSimulator BackendKind = "local_simulator"
)

// Label returns the human-readable backend tag used in reports.
func (k BackendKind) Label() string {
	switch k {
	case BackendHardware:
		return "IBM Quantum Hardware"
	case BackendCloudSimulator:
		return "Cloud Simulator"
	default:
		return "Local Simulator"
	}
}

// ExecutionResult holds the normalized outcome of one circuit execution.
// Counts maps observed bitstrings to occurrence counts; the values sum to
// Shots for a well-behaved backend.
type ExecutionResult struct {
	Backend      string         `json:"backend"`
	BackendKind  BackendKind    `json:"backend_kind"`
	Shots        int            `json:"shots"`
	Counts       map[string]int `json:"counts"`
	CircuitDepth int            `json:"circuit_depth"`
	CircuitWidth int            `json:"circuit_width"`
}
