// Package codec reads and writes profile collections as csv, json and
// parquet files.
package codec

import (
	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
)

// Format names.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Factory implements ports.CodecFactory.
type Factory struct{}

// NewFactory creates a new codec factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns a codec for the given format name.
func (f *Factory) Create(format string) (ports.ProfileCodec, error) {
	switch format {
	case FormatCSV:
		return NewCSVCodec(), nil
	case FormatJSON:
		return NewJSONCodec(), nil
	case FormatParquet:
		return NewParquetCodec(), nil
	default:
		return nil, apperrors.NewUnsupportedFormatError(format, "")
	}
}

// SupportedFormats returns list of available format names.
func (f *Factory) SupportedFormats() []string {
	return []string{FormatCSV, FormatJSON, FormatParquet}
}
