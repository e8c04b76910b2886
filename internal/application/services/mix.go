package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/services"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// DefaultMixtureLabel is used when no mixture label is given.
const DefaultMixtureLabel = "Mixture"

// sweepCancelCheck is how many compositions are visited between context checks.
const sweepCancelCheck = 1024

// MixUseCase composes phases into one mixture per composition and saves each.
// This is a pure application layer component that depends only on ports.
type MixUseCase struct {
	phases    *PhaseLoader
	simulator *ProfileSimulator
	store     ports.ProfileStore
	runner    ports.CompositionRunner
	logger    *slog.Logger
}

// NewMixUseCase creates a new mix use case.
func NewMixUseCase(
	phases *PhaseLoader,
	simulator *ProfileSimulator,
	store ports.ProfileStore,
	runner ports.CompositionRunner,
	logger *slog.Logger,
) *MixUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &MixUseCase{
		phases:    phases,
		simulator: simulator,
		store:     store,
		runner:    runner,
		logger:    logger,
	}
}

// Execute runs the complete mix workflow.
func (uc *MixUseCase) Execute(ctx context.Context, req dto.MixRequest) (*dto.RunResponse, error) {
	startTime := time.Now()
	runID := values.NewRunID()
	logger := uc.logger.With("run_id", runID.String())

	// 1. Validate options before touching any input
	mode, err := uc.validate(req)
	if err != nil {
		return nil, err
	}
	if err := checkOutputFormats(uc.store, req.Output); err != nil {
		return nil, err
	}

	// 2. Phases
	profiles, err := uc.loadPhases(ctx, req)
	if err != nil {
		return nil, err
	}
	labels := profileLabels(profiles)

	// 3. Compositions
	compositions, skipped, err := uc.compositions(ctx, req, labels)
	if err != nil {
		return nil, err
	}
	if len(compositions) == 0 {
		return nil, apperrors.NewValidationError("where", "no composition satisfies the sweep filters")
	}
	logger.Info("compositions resolved", "compositions", len(compositions), "skipped", skipped, "phases", len(profiles))

	// 4. Output paths
	format, err := defaultFormat(uc.store, req.Output)
	if err != nil {
		return nil, err
	}
	paths, err := ResolveOutputPaths(req.Output.Paths, compositions, format)
	if err != nil {
		return nil, err
	}

	// 5. Compose and save
	base := req.MixtureLabel
	if base == "" {
		base = DefaultMixtureLabel
	}
	outputs := make([]dto.OutputFile, len(compositions))
	var saved atomic.Int64
	task := func(ctx context.Context, i int, c values.Composition) error {
		coll, err := services.Mix(mode, profiles, c, c.MixtureLabel(base))
		if err != nil {
			return apperrors.NewExecutionError(c.String(), "compose failed", err)
		}
		outFormat, err := uc.store.ResolveFormat(paths[i], req.Output.Format)
		if err != nil {
			return err
		}
		if err := uc.store.Save(ctx, coll, paths[i], outFormat); err != nil {
			return apperrors.NewExecutionError(c.String(), "save failed", err)
		}
		outputs[i] = describeOutput(coll, paths[i], outFormat, c.String())
		logger.Info("saved", "fractions", c.String(), "output", paths[i], "done", saved.Add(1), "compositions", len(compositions))
		return nil
	}
	if err := uc.runner.Run(ctx, compositions, req.Execution, task); err != nil {
		return nil, err
	}

	return buildResponse(req.Metadata, runID, startTime, outputs, uc.simulator, skipped), nil
}

func (uc *MixUseCase) validate(req dto.MixRequest) (values.Mode, error) {
	if len(req.Cards) == 0 && len(req.InputProfiles) == 0 {
		return "", apperrors.NewValidationError("input", "give structure cards or --input-profiles")
	}
	if len(req.Cards) > 0 && len(req.InputProfiles) > 0 {
		return "", apperrors.NewValidationError("input", "structure cards and --input-profiles are mutually exclusive")
	}

	given := 0
	for _, set := range []bool{len(req.Fractions) > 0, len(req.Ratios) > 0, req.Sweep.Enabled} {
		if set {
			given++
		}
	}
	if given > 1 {
		return "", apperrors.NewValidationError("fractions", "--fractions, --ratios and --fractions-auto are mutually exclusive")
	}
	if !req.Sweep.Enabled && (req.Sweep.Where != "" || req.Sweep.ExcludeDegenerate) {
		return "", apperrors.NewValidationError("where", "sweep filters require --fractions-auto")
	}

	mode, err := values.ParseMode(req.Mode)
	if err != nil {
		return "", apperrors.NewValidationError("mode", err.Error())
	}
	return mode, nil
}

func (uc *MixUseCase) loadPhases(ctx context.Context, req dto.MixRequest) ([]entities.Profile, error) {
	if len(req.InputProfiles) > 0 {
		return uc.phases.FromFiles(ctx, req.InputProfiles)
	}
	settings, err := NewSimulationSettings(req.Simulation)
	if err != nil {
		return nil, err
	}
	return uc.phases.FromCards(ctx, req.Cards, settings)
}

// compositions returns the compositions to process and how many a sweep filter rejected.
func (uc *MixUseCase) compositions(ctx context.Context, req dto.MixRequest, labels []string) ([]values.Composition, int, error) {
	switch {
	case len(req.Fractions) > 0:
		c, err := values.NewComposition(labels, req.Fractions)
		return []values.Composition{c}, 0, err
	case len(req.Ratios) > 0:
		c, err := values.NormalizeRatios(labels, req.Ratios)
		return []values.Composition{c}, 0, err
	case req.Sweep.Enabled:
		return uc.sweep(ctx, req.Sweep, labels)
	default:
		c, err := values.EvenComposition(labels)
		return []values.Composition{c}, 0, err
	}
}

// sweep walks the fraction grid lazily and keeps what passes the filters.
// Only kept compositions are held; the full sweep is never materialized.
func (uc *MixUseCase) sweep(ctx context.Context, opts dto.SweepOptions, labels []string) ([]values.Composition, int, error) {
	seq, err := services.Sweep(len(labels), opts.Step)
	if err != nil {
		return nil, 0, err
	}

	var filter services.CompositionSpecification = services.NewAndSpecification()
	if opts.ExcludeDegenerate {
		filter = services.NewNonDegenerateSpecification()
	}
	var where *services.ExpressionSpecification
	if opts.Where != "" {
		program, err := services.CompileCompositionFilter(opts.Where)
		if err != nil {
			return nil, 0, apperrors.NewValidationError("where", "invalid filter expression", err.Error())
		}
		where = services.NewExpressionSpecification(program)
	}

	if total, err := services.SweepCount(len(labels), opts.Step); err == nil {
		uc.logger.Debug("sweeping fractions", "step", opts.Step, "compositions", total)
	} else {
		uc.logger.Warn("sweeping fractions", "step", opts.Step, "compositions", "uncountable")
	}

	var kept []values.Composition
	skipped, index := 0, 0
	for c := range seq {
		if index%sweepCancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		labeled, err := c.WithLabels(labels)
		if err != nil {
			return nil, 0, err
		}
		ok, reason := filter.IsSatisfiedBy(index, labeled)
		if ok && where != nil {
			ok, err = where.Evaluate(index, labeled)
			if err != nil {
				return nil, 0, apperrors.NewValidationError("where",
					fmt.Sprintf("filter failed on composition %d (%s)", index, labeled), err.Error())
			}
			reason = "excluded by --where expression"
		}
		if ok {
			kept = append(kept, labeled)
		} else {
			skipped++
			uc.logger.Debug("composition skipped", "fractions", labeled.String(), "reason", reason)
		}
		index++
	}
	return kept, skipped, nil
}

func profileLabels(profiles []entities.Profile) []string {
	labels := make([]string, len(profiles))
	for i, p := range profiles {
		labels[i] = p.Label()
	}
	return labels
}

// checkOutputFormats rejects unsupported output formats before any computation.
func checkOutputFormats(store ports.ProfileStore, out dto.OutputOptions) error {
	paths := splitOutputPaths(out.Paths)
	if len(paths) == 0 {
		return apperrors.NewValidationError("output", "at least one output path is required")
	}
	for _, p := range paths {
		if _, err := store.ResolveFormat(p, out.Format); err != nil {
			return err
		}
	}
	return nil
}

// defaultFormat is the format used for tagged paths derived from the first output.
func defaultFormat(store ports.ProfileStore, out dto.OutputOptions) (string, error) {
	paths := splitOutputPaths(out.Paths)
	if len(paths) == 0 {
		return "", apperrors.NewValidationError("output", "at least one output path is required")
	}
	return store.ResolveFormat(paths[0], out.Format)
}

func buildResponse(
	meta dto.RequestMetadata,
	runID values.RunID,
	startTime time.Time,
	outputs []dto.OutputFile,
	simulator *ProfileSimulator,
	skipped int,
) *dto.RunResponse {
	resp := &dto.RunResponse{
		Outputs: outputs,
		Metadata: dto.ResponseMetadata{
			RunID:       runID.String(),
			RequestID:   meta.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
		Diagnostics: dto.Diagnostics{Skipped: skipped},
	}
	if simulator != nil {
		resp.Diagnostics.CacheHits, resp.Diagnostics.CacheMisses = simulator.CacheStats()
	}
	for _, o := range outputs {
		if m, ok := o.Mixture(); ok && m.PeakIntensity == 0 {
			resp.Diagnostics.Warnings = append(resp.Diagnostics.Warnings,
				fmt.Sprintf("%s: mixture has no intensity in range", o.Path))
		}
	}
	return resp
}
