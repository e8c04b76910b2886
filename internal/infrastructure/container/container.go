// Package container provides dependency injection for the application.
package container

import (
	"context"
	"errors"
	"log/slog"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/application/services"
	domainservices "github.com/reglet-dev/xrdsim/internal/domain/services"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/codec"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/engine"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/peaks"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/persistence/sqlite"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/system"
)

// Container holds all application dependencies.
type Container struct {
	systemConfig    ports.SystemConfigProvider
	store           ports.ProfileStore
	codecs          ports.CodecFactory
	cache           ports.ProfileCache
	simulator       *services.ProfileSimulator
	simulateUseCase *services.SimulateUseCase
	mixUseCase      *services.MixUseCase
	convertUseCase  *services.ConvertUseCase
	systemCfg       *system.Config
	logger          *slog.Logger
	closers         []ports.Closer
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	// DisableCache forces the in-memory cache regardless of system config
	DisableCache bool
}

// New creates a new dependency injection container.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Load system config
	loader := system.NewConfigLoader()
	configPath := opts.SystemConfigPath
	if configPath == "" {
		if p, err := system.DefaultConfigPath(); err == nil {
			configPath = p
		}
	}
	systemCfg := system.DefaultConfig()
	if configPath != "" {
		cfg, err := loader.LoadConfig(ctx, configPath)
		if err != nil {
			return nil, apperrors.NewConfigurationError("system config", configPath, err)
		}
		systemCfg = cfg
	}

	c := &Container{
		systemConfig: loader,
		systemCfg:    systemCfg,
		logger:       opts.Logger,
	}

	cache, err := c.openCache(ctx, opts.DisableCache)
	if err != nil {
		return nil, err
	}
	c.cache = cache

	// Infrastructure adapters
	c.codecs = codec.NewFactory()
	c.store = codec.NewStore(c.codecs, opts.Logger)
	source := peaks.NewCardSource()
	runner := engine.NewRunner(opts.Logger)

	// Application services
	c.simulator = services.NewProfileSimulator(source, cache, opts.Logger)
	phases := services.NewPhaseLoader(c.simulator, c.store, opts.Logger)

	c.simulateUseCase = services.NewSimulateUseCase(phases, c.simulator, c.store, opts.Logger)
	c.mixUseCase = services.NewMixUseCase(phases, c.simulator, c.store, runner, opts.Logger)
	c.convertUseCase = services.NewConvertUseCase(phases, c.simulator, c.store, opts.Logger)

	return c, nil
}

// openCache opens the persistent cache when enabled, else an in-memory one.
func (c *Container) openCache(ctx context.Context, disabled bool) (ports.ProfileCache, error) {
	if disabled || !c.systemCfg.Cache.Enabled {
		return memory.NewProfileCache(), nil
	}

	path, err := c.systemCfg.CachePath()
	if err != nil {
		return nil, apperrors.NewConfigurationError("cache", "resolve cache path", err)
	}
	db, err := sqlite.Open(ctx, path, domainservices.KernelVersion)
	if err != nil {
		return nil, apperrors.NewConfigurationError("cache", path, err)
	}
	c.closers = append(c.closers, db)

	if n, err := db.Prune(ctx); err != nil {
		c.logger.Warn("failed to prune profile cache", "error", err)
	} else if n > 0 {
		c.logger.Debug("pruned stale cache entries", "removed", n, "kernel", domainservices.KernelVersion)
	}
	c.logger.Debug("profile cache opened", "path", path)
	return db, nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}

// SimulateUseCase returns the simulate use case.
func (c *Container) SimulateUseCase() *services.SimulateUseCase {
	return c.simulateUseCase
}

// MixUseCase returns the mix use case.
func (c *Container) MixUseCase() *services.MixUseCase {
	return c.mixUseCase
}

// ConvertUseCase returns the convert use case.
func (c *Container) ConvertUseCase() *services.ConvertUseCase {
	return c.convertUseCase
}

// ProfileStore returns the profile store port.
func (c *Container) ProfileStore() ports.ProfileStore {
	return c.store
}

// SupportedFormats lists the profile file formats.
func (c *Container) SupportedFormats() []string {
	return c.codecs.SupportedFormats()
}

// SystemConfigProvider returns the system config port.
func (c *Container) SystemConfigProvider() ports.SystemConfigProvider {
	return c.systemConfig
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// WavelengthPresets returns the built-in presets merged with configured ones.
func (c *Container) WavelengthPresets() values.WavelengthPresets {
	return values.DefaultWavelengthPresets().With(c.systemCfg.WavelengthPresets)
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
