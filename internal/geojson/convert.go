// Copyright 2023 Planet Labs PBC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package geojson

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v16/parquet"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoparquet"
)

type ConvertOptions struct {
	MinFeatures int
	MaxFeatures int
}

var defaultConvertOptions = &ConvertOptions{MinFeatures: 1, MaxFeatures: 50}

// ToParquet reads GeoJSON features from input and writes them out as
// GeoParquet, inferring an arrow schema from a sample of up to
// MaxFeatures features before writing the rest in a single pass.
func ToParquet(input io.Reader, output io.Writer, options *ConvertOptions) error {
	if options == nil {
		options = defaultConvertOptions
	}

	reader := NewFeatureReader(input)

	sample := make([]*geo.Feature, 0, options.MaxFeatures)
	for len(sample) < options.MaxFeatures {
		feature, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		sample = append(sample, feature)
	}
	if len(sample) < options.MinFeatures {
		return fmt.Errorf("need at least %d feature(s) to infer a schema, got %d", options.MinFeatures, len(sample))
	}

	geoMetadata := GetDefaultMetadata()
	arrowSchema, schemaErr := SchemaOf(geoMetadata.PrimaryColumn, sample)
	if schemaErr != nil {
		return schemaErr
	}

	writer, writerErr := geoparquet.NewFeatureWriter(&geoparquet.WriterConfig{
		Writer:      output,
		Metadata:    geoMetadata,
		ArrowSchema: arrowSchema,
	})
	if writerErr != nil {
		return writerErr
	}

	for _, feature := range sample {
		if err := writer.Write(feature); err != nil {
			return err
		}
	}
	for {
		feature, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := writer.Write(feature); err != nil {
			return err
		}
	}

	return writer.Close()
}

// FromParquet reads a GeoParquet file and writes it out as a GeoJSON
// FeatureCollection.
func FromParquet(input parquet.ReaderAtSeeker, output io.Writer) error {
	recordReader, readerErr := geoparquet.NewRecordReader(&geoparquet.ReaderConfig{Reader: input})
	if readerErr != nil {
		return readerErr
	}
	defer recordReader.Close()

	writer, writerErr := NewRecordWriter(output, recordReader.Metadata())
	if writerErr != nil {
		return writerErr
	}

	for {
		record, readErr := recordReader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Close()
}
