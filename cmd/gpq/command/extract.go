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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoparquet"
)

type ExtractCmd struct {
	Input        string `arg:"" optional:"" name:"input" help:"Input file path.  If not provided, input is read from stdin."`
	Output       string `arg:"" optional:"" name:"output" help:"Output file.  If not provided, output is written to stdout." type:"path"`
	Bbox         string `help:"Filter features by intersection of their bounding box with the provided bounding box (in x_min,y_min,x_max,y_max format)."`
	DropCols     string `help:"Drop the provided columns. Provide a comma-separated string of column names to be excluded. Do not use together with --keep-only-cols."`
	KeepOnlyCols string `help:"Keep only the provided columns. Provide a comma-separated string of columns to be kept. Do not use together with --drop-cols."`
}

func (c *ExtractCmd) Run() error {
	inputSource := c.Input
	outputSource := c.Output

	if c.Input == "" && hasStdin() {
		outputSource = inputSource
		inputSource = ""
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

	var excludeColumns []string
	var includeColumns []string
	if c.DropCols != "" {
		excludeColumns = strings.Split(c.DropCols, ",")
	}
	if c.KeepOnlyCols != "" {
		includeColumns = strings.Split(c.KeepOnlyCols, ",")
	}
	if len(excludeColumns) > 0 && len(includeColumns) > 0 {
		return fmt.Errorf("please pass only one of --drop-cols/--keep-only-cols")
	}

	inputBbox, bboxErr := geo.NewBboxFromString(c.Bbox)
	if bboxErr != nil {
		return fmt.Errorf("trouble parsing bbox argument: %w", bboxErr)
	}

	readerConfig := &geoparquet.ReaderConfig{
		Reader:          input,
		ExcludeColNames: excludeColumns,
		IncludeColNames: includeColumns,
	}

	// Open once to resolve the bbox column and narrow row groups before
	// building the final record reader (spec §4.7 predicate pushdown).
	probe, probeErr := geoparquet.NewFileReader(readerConfig)
	if probeErr != nil {
		return fmt.Errorf("could not open %q as geoparquet: %w", c.Input, probeErr)
	}

	var bboxCol *geoparquet.BboxColumn
	if inputBbox != nil {
		bboxCol = probe.BboxColumn()
		rowGroups, rgErr := probe.RowGroupsByBbox(inputBbox)
		if rgErr != nil {
			probe.Close()
			return fmt.Errorf("trouble scanning row group metadata: %w", rgErr)
		}
		readerConfig.RowGroups = rowGroups
	}
	if closeErr := probe.Close(); closeErr != nil {
		return closeErr
	}

	// Reopen: the probe's file.Reader and record reader were already
	// drained/released above, and RowGroups now reflects the bbox filter.
	readerConfig.Reader = input
	if seeker, ok := input.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("trouble rewinding input: %w", err)
		}
	}

	recordReader, err := geoparquet.NewRecordReader(readerConfig)
	if err != nil {
		return fmt.Errorf("trouble creating geoparquet record reader: %w", err)
	}
	defer recordReader.Close()

	recordWriter, rwErr := geoparquet.NewRecordWriter(&geoparquet.WriterConfig{
		Writer:      output,
		Metadata:    recordReader.Metadata(),
		ArrowSchema: recordReader.ArrowSchema(),
	})
	if rwErr != nil {
		return fmt.Errorf("trouble creating geoparquet record writer: %w", rwErr)
	}
	defer recordWriter.Close()

	ctx := context.Background()
	for {
		record, readErr := recordReader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}

		if inputBbox == nil || bboxCol == nil {
			if writeErr := recordWriter.Write(record); writeErr != nil {
				return writeErr
			}
			continue
		}

		filtered, filterErr := geoparquet.FilterRecordBatchByBbox(ctx, &record, inputBbox, bboxCol)
		if filterErr != nil {
			return fmt.Errorf("trouble filtering record batch by bbox: %w", filterErr)
		}
		if writeErr := recordWriter.Write(*filtered); writeErr != nil {
			return writeErr
		}
	}
	return nil
}
