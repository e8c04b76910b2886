// Package services contains application use cases.
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

// SimulationSettings are the validated inputs shared by every phase of a run.
type SimulationSettings struct {
	Grid       values.Grid
	Width      services.WidthParams
	Wavelength float64
}

// NewSimulationSettings builds the grid and kernel from request options.
func NewSimulationSettings(opts dto.SimulationOptions) (SimulationSettings, error) {
	if !(opts.Wavelength > 0) {
		return SimulationSettings{}, apperrors.NewValidationError("wavelength", fmt.Sprintf("must be positive, got %g", opts.Wavelength))
	}

	grid, err := values.BuildGrid(opts.TwoThetaMin, opts.TwoThetaMax, opts.Step)
	if err != nil {
		return SimulationSettings{}, err
	}

	width := services.DefaultWidthParams(grid.Step())
	if opts.FWHM > 0 {
		width = services.WidthParams{FWHM: opts.FWHM, Eta: opts.Eta}
	}
	if err := width.Validate(); err != nil {
		return SimulationSettings{}, err
	}

	return SimulationSettings{Grid: grid, Width: width, Wavelength: opts.Wavelength}, nil
}

// ProfileSimulator turns one structure reference into a normalized profile,
// consulting the profile cache when one is configured.
type ProfileSimulator struct {
	source ports.PeakSource
	cache  ports.ProfileCache
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewProfileSimulator creates a new profile simulator. cache may be nil.
func NewProfileSimulator(source ports.PeakSource, cache ports.ProfileCache, logger *slog.Logger) *ProfileSimulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileSimulator{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// Simulate extracts peaks for ref and broadens them on the settings grid.
// Peak source errors are returned unchanged.
func (s *ProfileSimulator) Simulate(ctx context.Context, ref string, settings SimulationSettings) (entities.Profile, error) {
	grid := settings.Grid
	phase, err := s.source.Peaks(ctx, ref, settings.Wavelength, grid.Min(), grid.Max())
	if err != nil {
		return entities.Profile{}, err
	}

	key := values.NewProfileKey(phase.Source, settings.Wavelength, grid, settings.Width.FWHM, settings.Width.Eta)
	if profile, ok := s.lookup(ctx, key, phase.Label, grid); ok {
		s.hits.Add(1)
		s.logger.Debug("profile cache hit", "structure", ref, "label", phase.Label)
		return profile, nil
	}
	s.misses.Add(1)

	broadener, err := services.NewBroadener(settings.Width)
	if err != nil {
		return entities.Profile{}, err
	}

	intensities := services.Normalize(broadener.Broaden(phase.Peaks, grid))
	profile, err := entities.NewProfile(phase.Label, grid, intensities)
	if err != nil {
		return entities.Profile{}, err
	}

	s.logger.Debug("profile simulated",
		"structure", ref,
		"label", phase.Label,
		"peaks", len(phase.Peaks),
		"wavelength", settings.Wavelength,
		"points", grid.Len())

	s.store(ctx, key, profile)
	return profile, nil
}

// CacheStats returns the number of cache hits and misses so far.
func (s *ProfileSimulator) CacheStats() (hits, misses int) {
	return int(s.hits.Load()), int(s.misses.Load())
}

func (s *ProfileSimulator) lookup(ctx context.Context, key values.ProfileKey, label string, grid values.Grid) (entities.Profile, bool) {
	if s.cache == nil {
		return entities.Profile{}, false
	}

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("profile cache read failed", "error", err)
		return entities.Profile{}, false
	}
	if !ok || len(cached.Intensities) != grid.Len() {
		return entities.Profile{}, false
	}

	profile, err := entities.NewProfile(label, grid, cached.Intensities)
	if err != nil {
		s.logger.Warn("discarding corrupt cache entry", "error", err)
		return entities.Profile{}, false
	}
	return profile, true
}

func (s *ProfileSimulator) store(ctx context.Context, key values.ProfileKey, profile entities.Profile) {
	if s.cache == nil {
		return
	}
	entry := ports.CachedProfile{
		Label:         profile.Label(),
		Intensities:   profile.Intensities(),
		KernelVersion: services.KernelVersion,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.cache.Put(ctx, key, entry); err != nil {
		s.logger.Warn("profile cache write failed", "error", err)
	}
}
