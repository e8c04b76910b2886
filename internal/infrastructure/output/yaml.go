package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
)

// Ensure interface compliance
var _ ports.SummaryFormatter = (*YAMLFormatter)(nil)

// YAMLFormatter formats run summaries as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the summaries as a YAML list.
func (f *YAMLFormatter) Format(files []dto.OutputFile) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(Summarize(files)); err != nil {
		return err
	}

	return encoder.Close()
}
