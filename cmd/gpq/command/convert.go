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

package command

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/planetlabs/gpq/internal/geojson"
	"github.com/planetlabs/gpq/internal/geoparquet"
)

type ConvertCmd struct {
	Input  string `arg:"" optional:"" name:"input" help:"Input file.  If not provided, input is read from stdin." type:"path"`
	From   string `help:"Input file format.  Possible values: ${enum}." enum:"auto, geojson, geoparquet" default:"auto"`
	Output string `arg:"" optional:"" name:"output" help:"Output file.  If not provided, output is written to stdout." type:"path"`
	To     string `help:"Output file format.  Possible values: ${enum}." enum:"auto, geojson, geoparquet" default:"auto"`
	Min    int    `help:"Minimum number of features to consider when building a schema." default:"10"`
	Max    int    `help:"Maximum number of features to consider when building a schema." default:"100"`
}

type FormatType string

const (
	AutoType       FormatType = "auto"
	GeoParquetType FormatType = "geoparquet"
	GeoJSONType    FormatType = "geojson"
	UnknownType    FormatType = "unknown"
)

var validTypes = map[FormatType]bool{
	AutoType:       true,
	GeoParquetType: true,
	GeoJSONType:    true,
}

func parseFormatType(format string) FormatType {
	if format == "" {
		return AutoType
	}
	ft := FormatType(strings.ToLower(format))
	if ft == "parquet" {
		return GeoParquetType
	}
	if !validTypes[ft] {
		return UnknownType
	}
	return ft
}

func getFormatType(filename string) FormatType {
	if strings.HasSuffix(filename, ".json") || strings.HasSuffix(filename, ".geojson") {
		return GeoJSONType
	}
	if strings.HasSuffix(filename, ".gpq") || strings.HasSuffix(filename, ".geoparquet") || strings.HasSuffix(filename, ".pq") || strings.HasSuffix(filename, ".parquet") {
		return GeoParquetType
	}
	return UnknownType
}

func hasStdin() bool {
	stats, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stats.Size() > 0
}

func (c *ConvertCmd) Run() error {
	inputSource := c.Input
	outputSource := c.Output

	if outputSource == "" && hasStdin() {
		outputSource = inputSource
		inputSource = ""
	}

	outputFormat := parseFormatType(c.To)
	if outputFormat == AutoType {
		if outputSource == "" {
			return fmt.Errorf("when writing to stdout, the --to option must be provided to determine the output format")
		}
		outputFormat = getFormatType(outputSource)
	}
	if outputFormat == UnknownType {
		return fmt.Errorf("could not determine output format for %s", outputSource)
	}

	inputFormat := parseFormatType(c.From)
	if inputFormat == AutoType {
		if inputSource == "" {
			return fmt.Errorf("when reading from stdin, the --from option must be provided to determine the input format")
		}
		inputFormat = getFormatType(inputSource)
	}
	if inputFormat == UnknownType {
		return fmt.Errorf("could not determine input format for %s", inputSource)
	}

	var input ReaderAtSeeker
	if inputSource == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("trouble reading from stdin: %w", err)
		}
		input = bytes.NewReader(data)
	} else {
		i, readErr := readerFromInput(inputSource)
		if readErr != nil {
			return readErr
		}
		if closer, ok := i.(io.Closer); ok {
			defer closer.Close()
		}
		input = i
	}

	var output *os.File
	if outputSource == "" {
		output = os.Stdout
	} else {
		o, createErr := os.Create(outputSource)
		if createErr != nil {
			return fmt.Errorf("failed to open %q for writing: %w", outputSource, createErr)
		}
		defer o.Close()
		output = o
	}

	if inputFormat == GeoJSONType {
		if outputFormat != GeoParquetType {
			return fmt.Errorf("GeoJSON input can only be converted to GeoParquet")
		}
		convertOptions := &geojson.ConvertOptions{
			MinFeatures: c.Min,
			MaxFeatures: c.Max,
		}
		if err := geojson.ToParquet(input, output, convertOptions); err != nil {
			return fmt.Errorf("trouble converting geojson to geoparquet: %w", err)
		}
		return nil
	}

	if outputFormat == GeoJSONType {
		if err := geojson.FromParquet(input, output); err != nil {
			return fmt.Errorf("trouble converting geoparquet to geojson: %w", err)
		}
		return nil
	}

	// GeoParquet to GeoParquet: a straight copy through the record
	// reader/writer, picking up whatever geo metadata the file already
	// carries.
	recordReader, readerErr := geoparquet.NewRecordReader(&geoparquet.ReaderConfig{Reader: input})
	if readerErr != nil {
		return fmt.Errorf("trouble reading %q as geoparquet: %w", inputSource, readerErr)
	}
	defer recordReader.Close()

	recordWriter, writerErr := geoparquet.NewRecordWriter(&geoparquet.WriterConfig{
		Writer:      output,
		Metadata:    recordReader.Metadata(),
		ArrowSchema: recordReader.ArrowSchema(),
	})
	if writerErr != nil {
		return fmt.Errorf("trouble creating geoparquet writer: %w", writerErr)
	}
	defer recordWriter.Close()

	for {
		record, readErr := recordReader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
		if err := recordWriter.Write(record); err != nil {
			return err
		}
	}
	return nil
}
