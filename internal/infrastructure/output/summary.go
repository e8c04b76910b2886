// Package output renders run summaries for the terminal.
package output

import (
	"github.com/reglet-dev/xrdsim/internal/application/dto"
)

// FileSummary describes one written file.
type FileSummary struct {
	Path   string          `yaml:"path"`
	Format string          `yaml:"format"`
	Mode   string          `yaml:"mode"`
	Series []SeriesSummary `yaml:"series"`
}

// SeriesSummary describes one profile of a file.
type SeriesSummary struct {
	Label         string  `yaml:"label"`
	Points        int     `yaml:"points"`
	PeakAngle     float64 `yaml:"peak_angle"`
	PeakIntensity float64 `yaml:"peak_intensity"`
	Mixture       bool    `yaml:"mixture,omitempty"`
}

// Summarize maps run outputs onto the rendered summary shape.
func Summarize(files []dto.OutputFile) []FileSummary {
	out := make([]FileSummary, 0, len(files))
	for _, f := range files {
		fs := FileSummary{Path: f.Path, Format: f.Format, Mode: f.Mode}
		for _, s := range f.Series {
			fs.Series = append(fs.Series, SeriesSummary(s))
		}
		out = append(out, fs)
	}
	return out
}
