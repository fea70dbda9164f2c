// Package backend provides execution targets for quantum circuits and the
// tiered dispatcher that selects among them.
package backend

import (
	"context"

	"dev.helix.quantum/internal/circuit"
	"dev.helix.quantum/internal/models"
	"dev.helix.quantum/internal/sim"
)

// Backend is a single execution target for a circuit.
type Backend interface {
	Name() string
	Kind() models.BackendKind
	Run(ctx context.Context, c *circuit.Circuit, shots int) (*models.ExecutionResult, error)
}

// LocalBackend adapts the statevector simulator to the Backend interface.
type LocalBackend struct {
	sim *sim.Simulator
}

// NewLocalBackend wraps a simulator.
func NewLocalBackend(s *sim.Simulator) *LocalBackend {
	return &LocalBackend{sim: s}
}

// Name returns the simulator identity.
func (b *LocalBackend) Name() string { return b.sim.Name() }

// Kind reports the local-simulator tier.
func (b *LocalBackend) Kind() models.BackendKind { return models.BackendLocalSimulator }

// Run simulates the circuit and normalizes the result.
func (b *LocalBackend) Run(ctx context.Context, c *circuit.Circuit, shots int) (*models.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts, err := b.sim.Run(c, shots)
	if err != nil {
		return nil, err
	}
	return &models.ExecutionResult{
		Backend:      b.sim.Name(),
		BackendKind:  models.BackendLocalSimulator,
		Shots:        shots,
		Counts:       counts,
		CircuitDepth: c.Depth(),
		CircuitWidth: c.Width(),
	}, nil
}
