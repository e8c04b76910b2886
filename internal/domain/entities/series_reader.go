package entities

// SeriesReader provides read-only access to one plotted series.
// Renderers depend on this instead of the concrete Profile.
type SeriesReader interface {
	Label() string
	Axis() []float64
	Intensities() []float64
}

var _ SeriesReader = Profile{}
