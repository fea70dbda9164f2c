package backend

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dev.helix.quantum/internal/circuit"
	"dev.helix.quantum/internal/models"
)

// Dispatcher tries an ordered list of backends until one succeeds. Tier
// failures are swallowed and logged; only exhaustion of every tier is an
// error.
type Dispatcher struct {
	tiers  []Backend
	logger *logrus.Logger

	// OnTierFailure, when set, is invoked with the tier name each time a
	// tier fails and execution falls through.
	OnTierFailure func(tier string)
}

// NewDispatcher builds a dispatcher over the given tiers, attempted in
// order. The final tier should be the local simulator so execution always
// has a floor.
func NewDispatcher(logger *logrus.Logger, tiers ...Backend) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Dispatcher{tiers: tiers, logger: logger}
}

// Tiers exposes the fallback order, first tier first.
func (d *Dispatcher) Tiers() []Backend {
	out := make([]Backend, len(d.tiers))
	copy(out, d.tiers)
	return out
}

// Execute runs the circuit on the first tier that succeeds.
func (d *Dispatcher) Execute(ctx context.Context, c *circuit.Circuit, shots int) (*models.ExecutionResult, error) {
	if len(d.tiers) == 0 {
		return nil, fmt.Errorf("no execution backends configured")
	}

	var lastErr error
	for _, tier := range d.tiers {
		result, err := tier.Run(ctx, c, shots)
		if err == nil {
			d.logger.WithFields(logrus.Fields{
				"backend": result.Backend,
				"kind":    result.BackendKind,
				"shots":   shots,
			}).Info("Circuit executed")
			return result, nil
		}
		lastErr = err
		d.logger.WithError(err).WithField("tier", tier.Name()).Warn("Execution tier failed, falling through")
		if d.OnTierFailure != nil {
			d.OnTierFailure(tier.Name())
		}
	}
	return nil, fmt.Errorf("all execution tiers failed: %w", lastErr)
}
