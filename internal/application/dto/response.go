package dto

import (
	"time"
)

// RunResponse contains the result of a simulate, mix or convert run.
type RunResponse struct {
	// Outputs lists every file written, in composition order
	Outputs []OutputFile

	// Metadata contains response metadata
	Metadata ResponseMetadata

	// Diagnostics contains additional diagnostic information
	Diagnostics Diagnostics
}

// OutputFile describes one saved collection. It keeps only per-series
// highlights so a long sweep does not hold every collection in memory.
type OutputFile struct {
	Path        string
	Format      string
	Mode        string
	Composition string
	Series      []SeriesSummary
}

// Mixture returns the mixture series, if the file has one.
func (o OutputFile) Mixture() (SeriesSummary, bool) {
	for _, s := range o.Series {
		if s.Mixture {
			return s, true
		}
	}
	return SeriesSummary{}, false
}

// SeriesSummary describes one saved profile.
type SeriesSummary struct {
	Label         string
	Points        int
	PeakAngle     float64
	PeakIntensity float64
	Mixture       bool
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RunID tags every log line of the run
	RunID string

	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// Diagnostics contains diagnostic information about execution.
type Diagnostics struct {
	// Warnings are non-fatal issues encountered
	Warnings []string

	// CacheHits and CacheMisses count single-phase profile lookups
	CacheHits   int
	CacheMisses int

	// Skipped counts compositions rejected by sweep filters
	Skipped int
}
