package codec

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
)

// ParquetCodec stores a collection as columns: 2theta first, the individual
// profiles in order, the mixture last under its label. All columns are DOUBLE.
type ParquetCodec struct {
	alloc memory.Allocator
}

// NewParquetCodec creates a new parquet codec.
func NewParquetCodec() *ParquetCodec {
	return &ParquetCodec{alloc: memory.DefaultAllocator}
}

// Format returns "parquet".
func (c *ParquetCodec) Format() string {
	return FormatParquet
}

// Encode writes the collection as a single row group.
func (c *ParquetCodec) Encode(w io.Writer, coll *entities.ProfileCollection) error {
	t := fromCollection(coll)

	names := make([]string, 0, len(t.labels)+2)
	names = append(names, AxisColumn)
	names = append(names, t.labels...)
	names = append(names, t.mixtureLabel)

	cols := make([][]float64, 0, len(names))
	cols = append(cols, t.axis)
	cols = append(cols, t.columns...)
	cols = append(cols, t.mixture)

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(c.alloc, schema)
	defer b.Release()
	for i, col := range cols {
		b.Field(i).(*array.Float64Builder).AppendValues(col, nil)
	}
	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet row group: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// Decode reads a collection. Mode is mix when the file has no individual columns.
func (c *ParquetCodec) Decode(r io.Reader) (*entities.ProfileCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet: %w", err)
	}

	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewSchemaError(FormatParquet, "not a parquet file", err)
	}
	defer func() { _ = pf.Close() }()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, c.alloc)
	if err != nil {
		return nil, apperrors.NewSchemaError(FormatParquet, "unreadable schema", err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, apperrors.NewSchemaError(FormatParquet, "unreadable columns", err)
	}
	defer tbl.Release()

	n := int(tbl.NumCols())
	if n < 2 {
		return nil, apperrors.NewSchemaError(FormatParquet, "need a 2theta column and at least one profile column", nil)
	}
	fields := tbl.Schema().Fields()
	if fields[0].Name != AxisColumn {
		return nil, apperrors.NewSchemaError(FormatParquet, fmt.Sprintf("first column must be %q, got %q", AxisColumn, fields[0].Name), nil)
	}

	cols := make([][]float64, n)
	for i := range n {
		vals, err := float64Column(tbl.Column(i))
		if err != nil {
			return nil, apperrors.NewSchemaError(FormatParquet, fmt.Sprintf("column %q", fields[i].Name), err)
		}
		cols[i] = vals
	}

	labels := make([]string, 0, n-2)
	for _, f := range fields[1 : n-1] {
		labels = append(labels, f.Name)
	}

	t := table{
		format:       FormatParquet,
		axis:         cols[0],
		labels:       labels,
		columns:      cols[1 : n-1],
		mixtureLabel: fields[n-1].Name,
		mixture:      cols[n-1],
	}
	return t.collection()
}

func float64Column(col *arrow.Column) ([]float64, error) {
	if col.DataType().ID() != arrow.FLOAT64 {
		return nil, fmt.Errorf("expected DOUBLE, got %s", col.DataType())
	}
	out := make([]float64, 0, col.Len())
	for _, chunk := range col.Data().Chunks() {
		arr, ok := chunk.(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("unexpected chunk type %T", chunk)
		}
		if arr.NullN() > 0 {
			return nil, fmt.Errorf("%d null values", arr.NullN())
		}
		out = append(out, arr.Float64Values()...)
	}
	return out, nil
}
