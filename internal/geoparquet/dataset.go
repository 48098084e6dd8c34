package geoparquet

import (
	"fmt"

	"github.com/planetlabs/gpq/internal/geoarrow"
)

// Dataset merges the `geo` metadata of several GeoParquet files that
// together form one logical collection, verifying the files agree on
// the concerns that must hold dataset-wide (spec §4.7 "Dataset").
type Dataset struct {
	PrimaryColumn string
	Columns       map[string]*GeometryColumn
	FileBbox      []float64
}

// MergeMetadata combines the `geo` metadata of every file in a
// dataset. All files must declare the same primary column and the
// same encoding/CRS per geometry column; geometry_types and bbox are
// unioned across files.
func MergeMetadata(files []*Metadata) (*Dataset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("cannot merge metadata for zero files")
	}

	primary := files[0].PrimaryColumn
	merged := &Dataset{PrimaryColumn: primary, Columns: map[string]*GeometryColumn{}}

	for i, meta := range files {
		if meta.PrimaryColumn != primary {
			return nil, fmt.Errorf("file %d has primary column %q, expected %q", i, meta.PrimaryColumn, primary)
		}
		for name, col := range meta.Columns {
			existing, ok := merged.Columns[name]
			if !ok {
				clone := col.clone()
				merged.Columns[name] = clone
				continue
			}
			if existing.Encoding != col.Encoding {
				return nil, fmt.Errorf("column %q has encoding %q in file %d, expected %q", name, col.Encoding, i, existing.Encoding)
			}
			if !crsEqual(existing.CRS, col.CRS) {
				return nil, fmt.Errorf("column %q has a different crs in file %d", name, i)
			}
			existing.GeometryTypes = unionGeometryTypes(existing.GetGeometryTypes(), col.GetGeometryTypes())
			if len(col.Bounds) == 4 {
				existing.Bounds = unionBounds(existing.Bounds, col.Bounds)
			}
		}
	}

	if primaryCol, ok := merged.Columns[primary]; ok {
		merged.FileBbox = primaryCol.Bounds
	}

	return merged, nil
}

// ReadTable dispatches to a per-file FileReader for each config, in the
// order given, and concatenates the resulting batches into one
// geoarrow.Table (spec §4.7 "Dataset": "Read operations dispatch to
// per-file readers; the union of results is concatenated in file
// order"). Every file must resolve to the dataset's designated
// geometry column.
func (d *Dataset) ReadTable(configs []*ReaderConfig) (*geoarrow.Table, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("cannot read a dataset with zero files")
	}

	var table *geoarrow.Table
	for i, config := range configs {
		fileReader, err := NewFileReader(config)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		fileTable, err := fileReader.ReadTable()
		fileReader.Close()
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		if fileTable.GeometryColumnName() != d.PrimaryColumn {
			return nil, fmt.Errorf("file %d has geometry column %q, expected %q", i, fileTable.GeometryColumnName(), d.PrimaryColumn)
		}
		if table == nil {
			table = fileTable
			continue
		}
		for b := 0; b < fileTable.NumBatches(); b++ {
			table, err = table.AppendBatch(fileTable.Batch(b))
			if err != nil {
				return nil, fmt.Errorf("file %d: %w", i, err)
			}
		}
	}
	return table, nil
}

func crsEqual(a, b *Proj) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

func unionGeometryTypes(a, b []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range a {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range b {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func unionBounds(a, b []float64) []float64 {
	if len(a) != 4 {
		out := make([]float64, 4)
		copy(out, b)
		return out
	}
	return []float64{
		minOf(a[0], b[0]), minOf(a[1], b[1]),
		maxOf(a[2], b[2]), maxOf(a[3], b[3]),
	}
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
