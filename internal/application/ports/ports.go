// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"
	"time"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
	"github.com/reglet-dev/xrdsim/internal/infrastructure/system"
)

// PhasePeaks is what a PeakSource extracts from one structure.
type PhasePeaks struct {
	// Label names the phase (formula, file stem, or "Unknown")
	Label string
	// Source is the raw structure description, used to key the profile cache
	Source []byte
	Peaks  []values.Peak
}

// PeakSource extracts diffraction peaks for a structure reference.
// Failures are reported as *apperrors.StructureLoadError.
type PeakSource interface {
	Peaks(ctx context.Context, ref string, wavelength, minAngle, maxAngle float64) (PhasePeaks, error)
}

// ProfileCodec encodes and decodes a ProfileCollection in one file format.
type ProfileCodec interface {
	Format() string
	Encode(w io.Writer, collection *entities.ProfileCollection) error
	Decode(r io.Reader) (*entities.ProfileCollection, error)
}

// CodecFactory creates codecs by format name.
type CodecFactory interface {
	Create(format string) (ProfileCodec, error)
	SupportedFormats() []string
}

// ProfileStore persists collections to files.
type ProfileStore interface {
	// ResolveFormat picks the format for path: override when non-empty, else the extension.
	ResolveFormat(path, override string) (string, error)
	Save(ctx context.Context, collection *entities.ProfileCollection, path, format string) error
	Load(ctx context.Context, path, format string) (*entities.ProfileCollection, error)
}

// CachedProfile is a stored single-phase computation.
type CachedProfile struct {
	CreatedAt     time.Time
	Label         string
	KernelVersion string
	Intensities   []float64
}

// ProfileCache memoizes single-phase profiles by computation inputs.
type ProfileCache interface {
	Get(ctx context.Context, key values.ProfileKey) (CachedProfile, bool, error)
	Put(ctx context.Context, key values.ProfileKey, profile CachedProfile) error
}

// CompositionTask processes one composition of a sweep.
type CompositionTask func(ctx context.Context, index int, composition values.Composition) error

// CompositionRunner fans compositions out to a task. The first task error
// cancels the remaining work and is returned.
type CompositionRunner interface {
	Run(ctx context.Context, compositions []values.Composition, opts dto.ExecutionOptions, task CompositionTask) error
}

// SystemConfigProvider loads system configuration.
type SystemConfigProvider interface {
	LoadConfig(ctx context.Context, path string) (*system.Config, error)
}

// SummaryFormatter renders the files a run wrote for the terminal.
type SummaryFormatter interface {
	Format(files []dto.OutputFile) error
}

// Closer is a common interface for resources that need cleanup.
type Closer interface {
	io.Closer
}
