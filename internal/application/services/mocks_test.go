package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

// mockPeakSource serves canned peaks by reference.
type mockPeakSource struct {
	phases map[string]ports.PhasePeaks
	calls  int
	mu     sync.Mutex
}

func (m *mockPeakSource) Peaks(_ context.Context, ref string, _, _, _ float64) (ports.PhasePeaks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.phases[ref]
	if !ok {
		return ports.PhasePeaks{}, apperrors.NewStructureLoadError(ref, fmt.Errorf("no such card"))
	}
	return p, nil
}

func newMockPeakSource() *mockPeakSource {
	return &mockPeakSource{phases: map[string]ports.PhasePeaks{
		"nacl.yaml": {
			Label:  "NaCl",
			Source: []byte("nacl"),
			Peaks:  []values.Peak{values.MustNewPeak(31.7, 100), values.MustNewPeak(45.4, 60)},
		},
		"kcl.yaml": {
			Label:  "KCl",
			Source: []byte("kcl"),
			Peaks:  []values.Peak{values.MustNewPeak(28.3, 100), values.MustNewPeak(40.5, 55)},
		},
		"empty.yaml": {
			Label:  "Empty",
			Source: []byte("empty"),
		},
	}}
}

// mockCache is a map-backed profile cache.
type mockCache struct {
	entries map[string]ports.CachedProfile
	mu      sync.Mutex
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]ports.CachedProfile)}
}

func (m *mockCache) Get(_ context.Context, key values.ProfileKey) (ports.CachedProfile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.entries[key.String()]
	return p, ok, nil
}

func (m *mockCache) Put(_ context.Context, key values.ProfileKey, p ports.CachedProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key.String()] = p
	return nil
}

// mockStore keeps saved collections in memory.
type mockStore struct {
	saved map[string]*entities.ProfileCollection
	mu    sync.Mutex
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string]*entities.ProfileCollection)}
}

func (m *mockStore) ResolveFormat(path, override string) (string, error) {
	format := override
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "csv", "json", "parquet":
		return format, nil
	}
	return "", apperrors.NewUnsupportedFormatError(format, path)
}

func (m *mockStore) Save(_ context.Context, c *entities.ProfileCollection, path, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[path] = c
	return nil
}

func (m *mockStore) Load(_ context.Context, path, _ string) (*entities.ProfileCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.saved[path]
	if !ok {
		return nil, fmt.Errorf("%s: not found", path)
	}
	return c, nil
}

// sequentialRunner runs compositions in order on the calling goroutine.
type sequentialRunner struct{}

func (sequentialRunner) Run(ctx context.Context, comps []values.Composition, _ dto.ExecutionOptions, task ports.CompositionTask) error {
	for i, c := range comps {
		if err := task(ctx, i, c); err != nil {
			return err
		}
	}
	return nil
}

func defaultSimulation() dto.SimulationOptions {
	return dto.SimulationOptions{
		Wavelength:  1.5406,
		TwoThetaMin: 20,
		TwoThetaMax: 50,
		Step:        0.05,
	}
}

type fixture struct {
	source    *mockPeakSource
	cache     *mockCache
	store     *mockStore
	simulator *ProfileSimulator
	phases    *PhaseLoader
}

func newFixture() *fixture {
	f := &fixture{
		source: newMockPeakSource(),
		cache:  newMockCache(),
		store:  newMockStore(),
	}
	f.simulator = NewProfileSimulator(f.source, f.cache, nil)
	f.phases = NewPhaseLoader(f.simulator, f.store, nil)
	return f
}
