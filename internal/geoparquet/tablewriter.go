package geoparquet

import (
	"encoding/json"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoarrow"
)

// TableWriter writes a geoarrow.Table to a GeoParquet file, the native
// counterpart of FeatureWriter: rather than accepting one geo.Feature
// at a time, it accepts whole batches already carrying a decoded
// geometry column and re-encodes only that column before delegating
// to the same pqarrow machinery RecordWriter uses.
type TableWriter struct {
	recordWriter *RecordWriter
	geoMetadata  *Metadata
	allocator    memory.Allocator
	crsTransform geoarrow.ProjJSONTransform
}

func NewTableWriter(config *WriterConfig) (*TableWriter, error) {
	geoMetadata := config.Metadata
	if geoMetadata == nil {
		geoMetadata = DefaultMetadata()
	}

	recordWriter, err := NewRecordWriter(config)
	if err != nil {
		return nil, err
	}

	allocator := memory.DefaultAllocator
	if config.ParquetWriterProps != nil {
		allocator = config.ParquetWriterProps.Allocator()
	}

	crsTransform := config.CRSTransform
	if crsTransform == nil {
		crsTransform = geoarrow.DefaultProjJSONTransform
	}

	return &TableWriter{recordWriter: recordWriter, geoMetadata: geoMetadata, allocator: allocator, crsTransform: crsTransform}, nil
}

// WriteTable encodes and writes every batch of t, then closes the
// file with geo metadata (bounds, geometry_types) computed from the
// geometry actually written rather than from declared values.
func (w *TableWriter) WriteTable(t *geoarrow.Table) error {
	primaryCol := t.GeometryColumnName()
	geomColumn := w.geoMetadata.Columns[primaryCol]
	encoding := DefaultGeometryEncoding
	if geomColumn != nil {
		encoding = geomColumn.Encoding
	}

	stats := geo.NewGeometryStats(false)

	for i := 0; i < t.NumBatches(); i++ {
		batch := t.Batch(i)
		record, err := w.encodeBatch(batch, encoding, stats)
		if err != nil {
			return err
		}
		writeErr := w.recordWriter.Write(record)
		record.Release()
		if writeErr != nil {
			return writeErr
		}
	}

	geoMetadata := w.geoMetadata.Clone()
	if geoMetadata.Columns[primaryCol] == nil {
		geoMetadata.Columns[primaryCol] = getDefaultGeometryColumn()
	}
	if bounds := stats.Bounds(); bounds != nil {
		geoMetadata.Columns[primaryCol].Bounds = []float64{
			bounds.Left(), bounds.Bottom(), bounds.Right(), bounds.Top(),
		}
	}
	geoMetadata.Columns[primaryCol].GeometryTypes = stats.Types()

	// §6.5: a column's crs key is only emitted when the injected
	// transform can produce a PROJJSON document from it; otherwise it
	// is omitted rather than written through unexamined.
	for _, col := range geoMetadata.Columns {
		if col.CRS == nil {
			continue
		}
		crsJSON, marshalErr := json.Marshal(col.CRS)
		if marshalErr != nil {
			col.CRS = nil
			continue
		}
		if _, ok := w.crsTransform(crsJSON); !ok {
			col.CRS = nil
		}
	}

	data, err := json.Marshal(geoMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode %s file metadata", MetadataKey)
	}
	if err := w.recordWriter.AppendKeyValueMetadata(MetadataKey, string(data)); err != nil {
		return fmt.Errorf("failed to append %s file metadata", MetadataKey)
	}
	return w.recordWriter.Close()
}

func (w *TableWriter) encodeBatch(batch *geoarrow.Batch, encoding string, stats *geo.GeometryStats) (arrow.Record, error) {
	geomArray, err := asGeometryArray(batch.Geometry)
	if err != nil {
		return nil, err
	}
	for i := 0; i < geomArray.Len(); i++ {
		g, present := geomArray.Get(i)
		if !present {
			continue
		}
		data, err := geoarrow.ToWKB(g)
		if err != nil {
			return nil, err
		}
		geom, err := wkb.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		addGeometryStats(stats, geom)
	}

	encoded, err := encodeGeometryColumn(w.allocator, batch.Geometry, encoding)
	if err != nil {
		return nil, err
	}

	record := batch.Record
	schema := record.Schema()
	cols := make([]arrow.Array, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		if i == batch.GeometryColumnIndex() {
			cols[i] = encoded
			continue
		}
		cols[i] = record.Column(i)
	}
	return array.NewRecord(schema, cols, record.NumRows()), nil
}

func addGeometryStats(stats *geo.GeometryStats, geom orb.Geometry) {
	stats.AddType(geom.GeoJSONType())
	bound := geom.Bound()
	stats.AddBounds(&bound)
}
