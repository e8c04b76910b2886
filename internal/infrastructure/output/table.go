package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
)

const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

// Ensure interface compliance
var _ ports.SummaryFormatter = (*TableFormatter)(nil)

// TableFormatter prints run summaries as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes one block per output file.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) Format(files []dto.OutputFile) error {
	summaries := Summarize(files)
	if len(summaries) == 0 {
		fmt.Fprintln(f.writer, "No profiles written.")
		return nil
	}

	rule := f.colorize(strings.Repeat("─", 72), colorGray)
	for _, file := range summaries {
		fmt.Fprintln(f.writer, rule)
		fmt.Fprintf(f.writer, "%s %s (%s, %s mode)\n",
			f.colorize("Output:", colorBold), f.colorize(file.Path, colorCyan), file.Format, file.Mode)

		tw := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  SERIES\tPOINTS\tPEAK 2θ\tPEAK I")
		for _, s := range file.Series {
			label := s.Label
			if s.Mixture {
				label += " *"
			}
			fmt.Fprintf(tw, "  %s\t%d\t%.3f\t%.2f\n", label, s.Points, s.PeakAngle, s.PeakIntensity)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintln(f.writer, rule)
	fmt.Fprintln(f.writer, f.colorize("* mixture", colorGray))
	return nil
}
