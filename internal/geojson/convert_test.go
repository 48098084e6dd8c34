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

package geojson_test

import (
	"bytes"
	"testing"

	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/planetlabs/gpq/internal/geojson"
	"github.com/planetlabs/gpq/internal/geoparquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeatureCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "first", "count": 1},
			"geometry": {"type": "Point", "coordinates": [1, 2]}
		},
		{
			"type": "Feature",
			"properties": {"name": "second", "count": 2},
			"geometry": {"type": "Point", "coordinates": [3, 4]}
		}
	]
}`

func TestToParquetFromParquetRoundTrip(t *testing.T) {
	parquetData := &bytes.Buffer{}
	convertErr := geojson.ToParquet(bytes.NewReader([]byte(sampleFeatureCollection)), parquetData, &geojson.ConvertOptions{MinFeatures: 1, MaxFeatures: 10})
	require.NoError(t, convertErr)

	reader, readerErr := file.NewParquetReader(bytes.NewReader(parquetData.Bytes()))
	require.NoError(t, readerErr)
	defer reader.Close()

	metadata, metaErr := geoparquet.GetMetadata(reader.MetaData().KeyValueMetadata())
	require.NoError(t, metaErr)
	assert.Equal(t, "geometry", metadata.PrimaryColumn)
	assert.Equal(t, int64(2), reader.NumRows())

	geojsonOut := &bytes.Buffer{}
	require.NoError(t, geojson.FromParquet(bytes.NewReader(parquetData.Bytes()), geojsonOut))
	assert.Contains(t, geojsonOut.String(), `"FeatureCollection"`)
	assert.Contains(t, geojsonOut.String(), `"first"`)
	assert.Contains(t, geojsonOut.String(), `"second"`)
}

func TestToParquetRequiresMinimumFeatures(t *testing.T) {
	output := &bytes.Buffer{}
	err := geojson.ToParquet(bytes.NewReader([]byte(sampleFeatureCollection)), output, &geojson.ConvertOptions{MinFeatures: 10, MaxFeatures: 10})
	assert.Error(t, err)
}
