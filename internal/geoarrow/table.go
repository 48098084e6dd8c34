package geoarrow

import (
	"math"

	"github.com/apache/arrow/go/v16/arrow"
)

// Batch pairs one physical arrow.Record (every column in its raw Arrow
// form, including the geometry column's storage representation) with
// the decoded geoarrow Array for the designated geometry column (spec
// §4.6). Non-geometry columns are never reinterpreted: callers read
// them directly off Record.
type Batch struct {
	Record   arrow.Record
	Geometry Array
	colIndex int
}

// NewBatch pairs a record with the already-decoded geometry array for
// the column at geometryName. The caller is responsible for decoding
// (FromStorage/ParseWKBArray/ParseWKTArray) before constructing the
// batch; NewBatch only checks the lengths agree.
func NewBatch(record arrow.Record, geometryName string, geometry Array) (*Batch, error) {
	idx := -1
	schema := record.Schema()
	for i := 0; i < schema.NumFields(); i++ {
		if schema.Field(i).Name == geometryName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, newError(InvalidGeoArrow, "record has no column named %q", geometryName)
	}
	if int64(geometry.Len()) != record.NumRows() {
		return nil, newError(InvalidGeoArrow, "geometry column has %d rows, record has %d", geometry.Len(), record.NumRows())
	}
	return &Batch{Record: record, Geometry: geometry, colIndex: idx}, nil
}

func (b *Batch) NumRows() int { return int(b.Record.NumRows()) }

// GeometryColumnIndex is the position of the designated geometry
// column within the underlying record's schema.
func (b *Batch) GeometryColumnIndex() int { return b.colIndex }

// Table is a sequence of batches sharing one schema, with exactly one
// designated geometry column (spec §4.6).
type Table struct {
	batches      []*Batch
	geometryName string
	totalRows    int
}

// NewTable assembles a Table from batches that all carry the named
// geometry column. A total row count that would not fit in a 32-bit
// offset is a fatal Overflow error (spec §9 decision: row-count
// overflow at table assembly fails loudly rather than panicking or
// silently truncating).
func NewTable(batches []*Batch, geometryColumn string) (*Table, error) {
	total := 0
	for _, b := range batches {
		if b.Record.Schema().Field(b.colIndex).Name != geometryColumn {
			return nil, newError(InvalidGeoArrow, "batch's geometry column does not match table column %q", geometryColumn)
		}
		total += b.NumRows()
		if total > math.MaxInt32 {
			return nil, newError(Overflow, "table row count %d exceeds the 32-bit row limit", total)
		}
	}
	return &Table{batches: batches, geometryName: geometryColumn, totalRows: total}, nil
}

func (t *Table) NumRows() int       { return t.totalRows }
func (t *Table) NumBatches() int    { return len(t.batches) }
func (t *Table) Batch(i int) *Batch { return t.batches[i] }

// GeometryColumnName is the designated geometry column's name.
func (t *Table) GeometryColumnName() string { return t.geometryName }

// Geometry returns the designated geometry column as one ChunkedArray
// spanning every batch, resolving a common GeoArrowType across batches
// that disagree on dimension or variant.
func (t *Table) Geometry() (*ChunkedArray, error) {
	if len(t.batches) == 0 {
		return nil, newError(InvalidGeoArrow, "table has no batches")
	}
	types := make([]GeoArrowType, 0, len(t.batches))
	chunks := make([]Array, 0, len(t.batches))
	for _, b := range t.batches {
		types = append(types, b.Geometry.DataType())
		chunks = append(chunks, b.Geometry)
	}
	common, err := ResolveCommonType(types)
	if err != nil {
		return nil, err
	}
	for i, chunk := range chunks {
		if !chunk.DataType().Equal(common) {
			cast, err := Cast(chunk, common)
			if err != nil {
				return nil, err
			}
			chunks[i] = cast
		}
	}
	return NewChunkedArray(common, chunks), nil
}

// WithBatches returns a new Table with its batch list replaced,
// keeping the same designated geometry column; used by structural
// mutators (append/concat) that must keep batches and the geometry
// column name in lockstep.
func (t *Table) WithBatches(batches []*Batch) (*Table, error) {
	return NewTable(batches, t.geometryName)
}

// AppendBatch returns a new Table with one more batch appended.
func (t *Table) AppendBatch(b *Batch) (*Table, error) {
	next := make([]*Batch, len(t.batches), len(t.batches)+1)
	copy(next, t.batches)
	next = append(next, b)
	return NewTable(next, t.geometryName)
}
