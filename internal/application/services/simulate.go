package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/services"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// SimulateUseCase computes the individual profiles of a set of structure
// cards and saves them, with an even-fraction mixture, as one standard-mode
// collection.
type SimulateUseCase struct {
	phases    *PhaseLoader
	simulator *ProfileSimulator
	store     ports.ProfileStore
	logger    *slog.Logger
}

// NewSimulateUseCase creates a new simulate use case.
func NewSimulateUseCase(
	phases *PhaseLoader,
	simulator *ProfileSimulator,
	store ports.ProfileStore,
	logger *slog.Logger,
) *SimulateUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &SimulateUseCase{
		phases:    phases,
		simulator: simulator,
		store:     store,
		logger:    logger,
	}
}

// Execute runs the simulate workflow.
func (uc *SimulateUseCase) Execute(ctx context.Context, req dto.SimulateRequest) (*dto.RunResponse, error) {
	startTime := time.Now()
	runID := values.NewRunID()
	logger := uc.logger.With("run_id", runID.String())

	if len(req.Cards) == 0 {
		return nil, apperrors.NewValidationError("input", "at least one structure card is required")
	}
	if err := checkOutputFormats(uc.store, req.Output); err != nil {
		return nil, err
	}

	settings, err := NewSimulationSettings(req.Simulation)
	if err != nil {
		return nil, err
	}
	logger.Info("simulating profiles",
		"structures", len(req.Cards),
		"wavelength", settings.Wavelength,
		"points", settings.Grid.Len(),
		"fwhm", settings.Width.FWHM,
		"eta", settings.Width.Eta)

	profiles, err := uc.phases.FromCards(ctx, req.Cards, settings)
	if err != nil {
		return nil, err
	}

	composition, err := values.EvenComposition(profileLabels(profiles))
	if err != nil {
		return nil, err
	}
	base := req.MixtureLabel
	if base == "" {
		base = DefaultMixtureLabel
	}
	coll, err := services.Mix(values.ModeStandard, profiles, composition, composition.MixtureLabel(base))
	if err != nil {
		return nil, err
	}

	outputs, err := saveAll(ctx, uc.store, coll, req.Output, composition.String(), logger)
	if err != nil {
		return nil, err
	}

	return buildResponse(req.Metadata, runID, startTime, outputs, uc.simulator, 0), nil
}
