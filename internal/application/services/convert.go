package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/services"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// ConvertUseCase re-exports a saved profile file, or freshly computed cards
// with even fractions, to one or more formats.
type ConvertUseCase struct {
	phases    *PhaseLoader
	simulator *ProfileSimulator
	store     ports.ProfileStore
	logger    *slog.Logger
}

// NewConvertUseCase creates a new convert use case.
func NewConvertUseCase(
	phases *PhaseLoader,
	simulator *ProfileSimulator,
	store ports.ProfileStore,
	logger *slog.Logger,
) *ConvertUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConvertUseCase{
		phases:    phases,
		simulator: simulator,
		store:     store,
		logger:    logger,
	}
}

// source is the collection content before overrides are applied.
type source struct {
	mode     values.Mode
	label    string
	profiles []entities.Profile
	mixture  entities.Profile
}

// Execute runs the convert workflow.
func (uc *ConvertUseCase) Execute(ctx context.Context, req dto.ConvertRequest) (*dto.RunResponse, error) {
	startTime := time.Now()
	runID := values.NewRunID()
	logger := uc.logger.With("run_id", runID.String())

	if err := uc.validate(req); err != nil {
		return nil, err
	}
	if err := checkOutputFormats(uc.store, req.Output); err != nil {
		return nil, err
	}

	var src source
	var err error
	if len(req.InputProfiles) > 0 {
		src, err = uc.fromFile(ctx, req.InputProfiles[0])
	} else {
		src, err = uc.fromCards(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if req.Mode != "" {
		mode, err := values.ParseMode(req.Mode)
		if err != nil {
			return nil, apperrors.NewValidationError("mode", err.Error())
		}
		src.mode = mode
	}
	if req.MixtureLabel != "" {
		src.label = req.MixtureLabel
	}

	// A lone profile is written as the mixture itself.
	if len(src.profiles) == 1 {
		src.mode = values.ModeMix
		src.mixture = src.profiles[0]
		src.label = src.profiles[0].Label()
		src.profiles = nil
	}
	// Without individual profiles there is nothing for standard mode to keep.
	if len(src.profiles) == 0 && src.mode == values.ModeStandard {
		logger.Info("no individual profiles, writing mix mode", "requested_mode", req.Mode)
		src.mode = values.ModeMix
	}

	mixture, err := entities.NewProfile(src.label, src.mixture.Grid(), services.Normalize(src.mixture.Intensities()))
	if err != nil {
		return nil, err
	}
	coll, err := services.BuildCollection(src.mode, src.profiles, mixture)
	if err != nil {
		return nil, err
	}
	logger.Info("converting profiles", "mode", coll.Mode(), "phases", len(coll.Profiles()), "points", coll.Grid().Len())

	outputs, err := saveAll(ctx, uc.store, coll, req.Output, "", logger)
	if err != nil {
		return nil, err
	}
	return buildResponse(req.Metadata, runID, startTime, outputs, uc.simulator, 0), nil
}

func (uc *ConvertUseCase) validate(req dto.ConvertRequest) error {
	switch {
	case len(req.Cards) == 0 && len(req.InputProfiles) == 0:
		return apperrors.NewValidationError("input", "give structure cards or --input-profiles")
	case len(req.Cards) > 0 && len(req.InputProfiles) > 0:
		return apperrors.NewValidationError("input", "structure cards and --input-profiles are mutually exclusive")
	case len(req.InputProfiles) > 1:
		return apperrors.NewValidationError("input-profiles", "convert takes a single profile file")
	}
	return nil
}

func (uc *ConvertUseCase) fromFile(ctx context.Context, path string) (source, error) {
	format, err := uc.store.ResolveFormat(path, "")
	if err != nil {
		return source{}, err
	}
	coll, err := uc.store.Load(ctx, path, format)
	if err != nil {
		return source{}, err
	}
	uc.logger.Info("profiles loaded", "path", path, "format", format, "mode", coll.Mode())
	return source{
		mode:     coll.Mode(),
		label:    coll.MixtureLabel(),
		profiles: coll.Profiles(),
		mixture:  coll.Mixture(),
	}, nil
}

func (uc *ConvertUseCase) fromCards(ctx context.Context, req dto.ConvertRequest) (source, error) {
	settings, err := NewSimulationSettings(req.Simulation)
	if err != nil {
		return source{}, err
	}
	profiles, err := uc.phases.FromCards(ctx, req.Cards, settings)
	if err != nil {
		return source{}, err
	}
	composition, err := values.EvenComposition(profileLabels(profiles))
	if err != nil {
		return source{}, err
	}
	mixture, err := services.Compose(profiles, composition, DefaultMixtureLabel)
	if err != nil {
		return source{}, err
	}
	return source{
		mode:     values.ModeStandard,
		label:    DefaultMixtureLabel,
		profiles: profiles,
		mixture:  mixture,
	}, nil
}

// saveAll writes one collection to every output path.
func saveAll(
	ctx context.Context,
	store ports.ProfileStore,
	coll *entities.ProfileCollection,
	out dto.OutputOptions,
	composition string,
	logger *slog.Logger,
) ([]dto.OutputFile, error) {
	paths := splitOutputPaths(out.Paths)
	outputs := make([]dto.OutputFile, 0, len(paths))
	for _, path := range paths {
		format, err := store.ResolveFormat(path, out.Format)
		if err != nil {
			return nil, err
		}
		if err := store.Save(ctx, coll, path, format); err != nil {
			return nil, err
		}
		logger.Info("saved", "output", path, "format", format)
		outputs = append(outputs, describeOutput(coll, path, format, composition))
	}
	return outputs, nil
}
