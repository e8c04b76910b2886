// Package dto contains data transfer objects for application layer use cases.
package dto

// SimulationOptions defines how single-phase profiles are computed.
type SimulationOptions struct {
	// Wavelength in angstroms, already resolved from a preset or flag
	Wavelength  float64
	TwoThetaMin float64
	TwoThetaMax float64
	Step        float64

	// FWHM and Eta override the kernel; zero FWHM derives it from Step
	FWHM float64
	Eta  float64
}

// OutputOptions defines where results are written.
type OutputOptions struct {
	// Paths lists output files; a single path is tagged per composition in a sweep
	Paths []string
	// Format overrides the extension when non-empty
	Format string
}

// SweepOptions enables automatic fraction enumeration.
type SweepOptions struct {
	// Where is an expr filter over {fractions, labels, index, phases}
	Where             string
	Step              float64
	Enabled           bool
	ExcludeDegenerate bool
}

// ExecutionOptions controls how compositions are processed.
type ExecutionOptions struct {
	// Parallel enables parallel processing of compositions
	Parallel bool

	// MaxWorkers limits parallel compositions (0 = number of CPUs)
	MaxWorkers int
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// SimulateRequest computes individual profiles for structure cards.
type SimulateRequest struct {
	MixtureLabel string
	Cards        []string
	Output       OutputOptions
	Metadata     RequestMetadata
	Simulation   SimulationOptions
}

// MixRequest composes phases into one or more mixtures.
type MixRequest struct {
	Mode          string
	MixtureLabel  string
	Cards         []string
	InputProfiles []string
	Fractions     []float64
	Ratios        []float64
	Output        OutputOptions
	Metadata      RequestMetadata
	Sweep         SweepOptions
	Simulation    SimulationOptions
	Execution     ExecutionOptions
}

// ConvertRequest re-exports saved profiles or freshly computed cards.
type ConvertRequest struct {
	// Mode and MixtureLabel override the loaded values when non-empty
	Mode          string
	MixtureLabel  string
	Cards         []string
	InputProfiles []string
	Output        OutputOptions
	Metadata      RequestMetadata
	Simulation    SimulationOptions
}
