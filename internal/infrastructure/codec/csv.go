package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
)

// AxisColumn is the header of the two-theta column in csv and parquet files.
const AxisColumn = "2theta"

// CSVCodec stores one row per grid point:
// 2theta,<label_1>,...,<label_k>,<mixture_label>.
type CSVCodec struct{}

// NewCSVCodec creates a new csv codec.
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

// Format returns "csv".
func (c *CSVCodec) Format() string {
	return FormatCSV
}

// Encode writes the collection. Commas in labels become semicolons.
func (c *CSVCodec) Encode(w io.Writer, coll *entities.ProfileCollection) error {
	t := fromCollection(coll)

	header := make([]string, 0, len(t.labels)+2)
	header = append(header, AxisColumn)
	for _, l := range t.labels {
		header = append(header, csvLabel(l))
	}
	header = append(header, csvLabel(t.mixtureLabel))

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(header))
	for i, x := range t.axis {
		row[0] = formatFloat(x)
		for k, col := range t.columns {
			row[k+1] = formatFloat(col[i])
		}
		row[len(row)-1] = formatFloat(t.mixture[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return bw.Flush()
}

// Decode reads a collection. Mode is mix when the file has no individual columns.
func (c *CSVCodec) Decode(r io.Reader) (*entities.ProfileCollection, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewSchemaError(FormatCSV, "empty file", nil)
	}
	if err != nil {
		return nil, apperrors.NewSchemaError(FormatCSV, "unreadable header", err)
	}
	if len(header) < 2 {
		return nil, apperrors.NewSchemaError(FormatCSV, "need a 2theta column and at least one profile column", nil)
	}
	if strings.TrimSpace(header[0]) != AxisColumn {
		return nil, apperrors.NewSchemaError(FormatCSV, fmt.Sprintf("first column must be %q, got %q", AxisColumn, header[0]), nil)
	}

	nProfiles := len(header) - 2
	t := table{
		format:       FormatCSV,
		labels:       append([]string(nil), header[1:len(header)-1]...),
		columns:      make([][]float64, nProfiles),
		mixtureLabel: header[len(header)-1],
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewSchemaError(FormatCSV, fmt.Sprintf("line %d", line), err)
		}

		vals := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, apperrors.NewSchemaError(FormatCSV, fmt.Sprintf("line %d column %d", line, i+1), err)
			}
			vals[i] = v
		}

		t.axis = append(t.axis, vals[0])
		for k := range t.columns {
			t.columns[k] = append(t.columns[k], vals[k+1])
		}
		t.mixture = append(t.mixture, vals[len(vals)-1])
	}

	return t.collection()
}

func csvLabel(label string) string {
	return strings.ReplaceAll(label, ",", ";")
}

// formatFloat writes the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
