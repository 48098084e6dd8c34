package geoparquet

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/parquet/schema"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoarrow"
)

// BboxColumn describes where row-group/row-level bounding-box
// statistics live for a geometry column, resolved by GetBboxColumn's
// fallback chain (spec §4.7).
type BboxColumn struct {
	Name               string // struct column name, or "" if none was found
	Xmin, Ymin         string
	Xmax, Ymax         string
	Index              int // arrow schema field index of the bbox struct, or -1
	BaseColumn         int // arrow schema field index of the geometry column
	BaseColumnEncoding string
}

// GetBboxColumn resolves which column (if any) carries precomputed
// per-row bounding boxes, following spec §4.7's documented fallback
// chain: the metadata's declared covering for the primary column, then
// a bare "bbox"-shaped struct column sharing the geometry column's
// name, finally no bbox column at all (predicate pushdown falls back to
// decoding geometries). A caller-supplied covering is not taken here;
// RowGroupBounds and RowGroupsBounds accept one and use it first.
func GetBboxColumn(arrowSchema *schema.Schema, meta *Metadata) *BboxColumn {
	primaryCol := meta.PrimaryColumn
	geomColumn := meta.Columns[primaryCol]

	baseIdx := arrowSchema.Root().FieldIndexByName(primaryCol)
	encoding := DefaultGeometryEncoding
	if geomColumn != nil {
		encoding = geomColumn.Encoding
	}

	result := &BboxColumn{Index: -1, BaseColumn: baseIdx, BaseColumnEncoding: encoding}

	if geomColumn != nil && geomColumn.Covering != nil && len(geomColumn.Covering.Bbox.Xmin) > 0 {
		result.Name = geomColumn.Covering.Bbox.Xmin[0]
		result.Xmin = lastPathElement(geomColumn.Covering.Bbox.Xmin)
		result.Ymin = lastPathElement(geomColumn.Covering.Bbox.Ymin)
		result.Xmax = lastPathElement(geomColumn.Covering.Bbox.Xmax)
		result.Ymax = lastPathElement(geomColumn.Covering.Bbox.Ymax)
		if idx := arrowSchema.Root().FieldIndexByName(result.Name); idx != -1 {
			result.Index = idx
			return result
		}
	}

	// Fall back to a bare "bbox"-shaped struct column named like the
	// geometry column itself, matching the live GeoParquet ecosystem
	// convention some writers use without declaring a covering.
	if idx := arrowSchema.Root().FieldIndexByName(primaryCol + ".bbox"); idx != -1 {
		result.Name = primaryCol + ".bbox"
		result.Xmin, result.Ymin, result.Xmax, result.Ymax = "xmin", "ymin", "xmax", "ymax"
		result.Index = idx
		return result
	}

	return result
}

func lastPathElement(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

// FileReader wraps RecordReader with the resolved schema, per-row-group
// bounds, and file-level metadata a predicate-pushdown caller needs
// (spec §4.7's FileReader).
type FileReader struct {
	*RecordReader
	bboxCol *BboxColumn
}

func NewFileReader(config *ReaderConfig) (*FileReader, error) {
	rr, err := NewRecordReader(config)
	if err != nil {
		return nil, err
	}
	bboxCol := GetBboxColumn(rr.Schema(), rr.Metadata())
	return &FileReader{RecordReader: rr, bboxCol: bboxCol}, nil
}

// BboxColumn returns the resolved bbox column descriptor for this file
// (may have Index == -1 if none was found).
func (r *FileReader) BboxColumn() *BboxColumn { return r.bboxCol }

// NumRowGroups reports the row-group count of the underlying file
// (spec §4.7 "num_row_groups").
func (r *FileReader) NumRowGroups() int {
	return r.fileReader.NumRowGroups()
}

// RowGroupBounds computes the bounding box of row group rgIdx from its
// column-chunk min/max statistics (spec §4.7 "row_group_bounds"). A nil
// covering falls back to the file's resolved bbox column; passing one
// overrides it for this call only.
func (r *FileReader) RowGroupBounds(rgIdx int, covering *BboxColumn) (*geo.Bbox, error) {
	bboxCol := covering
	if bboxCol == nil {
		bboxCol = r.bboxCol
	}
	if bboxCol == nil || bboxCol.Index == -1 {
		return nil, fmt.Errorf("no bbox covering available for column %q", r.metadata.PrimaryColumn)
	}
	fileMetadata := r.fileReader.MetaData()
	xminPath := fmt.Sprintf("%v.%v", bboxCol.Name, bboxCol.Xmin)
	yminPath := fmt.Sprintf("%v.%v", bboxCol.Name, bboxCol.Ymin)
	xmaxPath := fmt.Sprintf("%v.%v", bboxCol.Name, bboxCol.Xmax)
	ymaxPath := fmt.Sprintf("%v.%v", bboxCol.Name, bboxCol.Ymax)

	xmin, _, err := GetColumnMinMax(fileMetadata, rgIdx, xminPath)
	if err != nil {
		return nil, fmt.Errorf("could not get min/max statistics for %v: %w", xminPath, err)
	}
	ymin, _, err := GetColumnMinMax(fileMetadata, rgIdx, yminPath)
	if err != nil {
		return nil, fmt.Errorf("could not get min/max statistics for %v: %w", yminPath, err)
	}
	_, xmax, err := GetColumnMinMax(fileMetadata, rgIdx, xmaxPath)
	if err != nil {
		return nil, fmt.Errorf("could not get min/max statistics for %v: %w", xmaxPath, err)
	}
	_, ymax, err := GetColumnMinMax(fileMetadata, rgIdx, ymaxPath)
	if err != nil {
		return nil, fmt.Errorf("could not get min/max statistics for %v: %w", ymaxPath, err)
	}
	return &geo.Bbox{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}, nil
}

// RowGroupsBounds computes the bounding box of every row group in file
// order (spec §4.7 "row_groups_bounds").
func (r *FileReader) RowGroupsBounds(covering *BboxColumn) ([]*geo.Bbox, error) {
	n := r.fileReader.NumRowGroups()
	bounds := make([]*geo.Bbox, n)
	for i := 0; i < n; i++ {
		b, err := r.RowGroupBounds(i, covering)
		if err != nil {
			return nil, err
		}
		bounds[i] = b
	}
	return bounds, nil
}

// ResolvedSchema returns the arrow.Schema an in-memory read via
// ReadTable will produce once the primary geometry column (stored as
// WKB/WKT) is parsed to a native coordType array (spec §4.7
// "resolved_schema"). Non-geometry fields are unchanged.
func (r *FileReader) ResolvedSchema(coordType geoarrow.CoordType) (*arrow.Schema, error) {
	base := r.ArrowSchema()
	primaryCol := r.metadata.PrimaryColumn
	geomColumn := r.metadata.Columns[primaryCol]
	if geomColumn == nil || geomColumn.Encoding == "" || geomColumn.Encoding == "WKB" || geomColumn.Encoding == "WKT" {
		dim := geoarrow.DimXY
		variant := geoarrow.VariantGeometry
		fields := make([]arrow.Field, base.NumFields())
		for i, f := range base.Fields() {
			if f.Name == primaryCol {
				nativeType := geoarrow.NewType(variant, dim, coordType, nil)
				f.Type = nativeType.PhysicalType()
			}
			fields[i] = f
		}
		return arrow.NewSchema(fields, nil), nil
	}
	return base, nil
}

// RowGroupsByBbox narrows the row groups worth reading for a bbox
// query, using row-group column-chunk statistics (spec §4.7).
func (r *FileReader) RowGroupsByBbox(inputBbox *geo.Bbox) ([]int, error) {
	if r.bboxCol.Index == -1 {
		all := make([]int, r.fileReader.NumRowGroups())
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	return GetRowGroupsByBbox(r.fileReader, r.bboxCol, inputBbox)
}

// FileBbox computes the union bounding box across the geometry
// column's declared bounds (spec §4.7 "file_bbox").
func (r *FileReader) FileBbox() (*geo.Bbox, error) {
	geomColumn := r.metadata.Columns[r.metadata.PrimaryColumn]
	if geomColumn == nil || len(geomColumn.Bounds) < 4 {
		return nil, fmt.Errorf("metadata for column %q has no declared bbox", r.metadata.PrimaryColumn)
	}
	return &geo.Bbox{Xmin: geomColumn.Bounds[0], Ymin: geomColumn.Bounds[1], Xmax: geomColumn.Bounds[2], Ymax: geomColumn.Bounds[3]}, nil
}

// ReadTable drains the file's row groups into one geoarrow.Table,
// decoding the primary geometry column's storage (WKB or WKT bytes)
// into native geoarrow arrays as each batch arrives (spec §4.6). Every
// other column is carried through untouched on the underlying
// arrow.Record.
func (r *FileReader) ReadTable() (*geoarrow.Table, error) {
	primaryCol := r.metadata.PrimaryColumn
	geomColumn := r.metadata.Columns[primaryCol]
	encoding := DefaultGeometryEncoding
	if geomColumn != nil {
		encoding = geomColumn.Encoding
	}

	batches := []*geoarrow.Batch{}
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		idx := record.Schema().FieldIndices(primaryCol)
		if len(idx) == 0 {
			return nil, fmt.Errorf("record has no column named %q", primaryCol)
		}
		geometry, decodeErr := decodeGeometryColumn(record.Column(idx[0]), encoding)
		if decodeErr != nil {
			return nil, decodeErr
		}
		batch, batchErr := geoarrow.NewBatch(record, primaryCol, geometry)
		if batchErr != nil {
			return nil, batchErr
		}
		batches = append(batches, batch)
	}

	return geoarrow.NewTable(batches, primaryCol)
}

// CRS returns the declared projection for the primary geometry column,
// or nil if the column uses the GeoParquet default (OGC:CRS84).
func (r *FileReader) CRS() *Proj {
	geomColumn := r.metadata.Columns[r.metadata.PrimaryColumn]
	if geomColumn == nil {
		return nil
	}
	return geomColumn.CRS
}
