package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// PhaseLoader produces the single-phase profiles a run composes, either by
// simulating structure cards or by reading previously saved profile files.
type PhaseLoader struct {
	simulator *ProfileSimulator
	store     ports.ProfileStore
	logger    *slog.Logger
}

// NewPhaseLoader creates a new phase loader.
func NewPhaseLoader(simulator *ProfileSimulator, store ports.ProfileStore, logger *slog.Logger) *PhaseLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhaseLoader{
		simulator: simulator,
		store:     store,
		logger:    logger,
	}
}

// FromCards simulates every card on the settings grid, in order.
func (l *PhaseLoader) FromCards(ctx context.Context, cards []string, settings SimulationSettings) ([]entities.Profile, error) {
	profiles := make([]entities.Profile, 0, len(cards))
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := l.simulator.Simulate(ctx, card, settings)
		if err != nil {
			return nil, err
		}
		l.logger.Info("phase simulated", "structure", card, "label", p.Label())
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// FromFiles loads saved collections. A standard-mode file contributes its
// individual profiles; a mix-mode file contributes its mixture as one phase.
// All phases must share one grid.
func (l *PhaseLoader) FromFiles(ctx context.Context, paths []string) ([]entities.Profile, error) {
	var profiles []entities.Profile
	for _, path := range paths {
		format, err := l.store.ResolveFormat(path, "")
		if err != nil {
			return nil, err
		}
		coll, err := l.store.Load(ctx, path, format)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		if coll.Mode() == values.ModeMix || len(coll.Profiles()) == 0 {
			profiles = append(profiles, coll.Mixture())
		} else {
			profiles = append(profiles, coll.Profiles()...)
		}
		l.logger.Info("profiles loaded", "path", path, "mode", coll.Mode(), "phases", len(profiles))
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles found in %v", paths)
	}
	grid := profiles[0].Grid()
	for _, p := range profiles[1:] {
		if !p.Grid().Equal(grid) {
			return nil, values.NewGridMismatchError(p.Label(), grid, p.Grid())
		}
	}
	return profiles, nil
}
