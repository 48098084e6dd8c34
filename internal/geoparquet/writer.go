package geoparquet

import (
	"io"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/pqarrow"
	"github.com/planetlabs/gpq/internal/geoarrow"
)

type WriterConfig struct {
	Writer             io.Writer
	Metadata           *Metadata
	ParquetWriterProps *parquet.WriterProperties
	ArrowWriterProps   *pqarrow.ArrowWriterProperties
	ArrowSchema        *arrow.Schema
	// CRSTransform resolves a PROJJSON document from a column's opaque
	// CRS value (spec §6.5); nil uses geoarrow.DefaultProjJSONTransform.
	// Only TableWriter consults this.
	CRSTransform geoarrow.ProjJSONTransform
}
