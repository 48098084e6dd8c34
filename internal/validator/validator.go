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

package validator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v16/parquet"
	"github.com/apache/arrow/go/v16/parquet/file"
	"github.com/paulmach/orb"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoparquet"
	_ "github.com/santhosh-tekuri/jsonschema/v5/httploader"
)

type Validator struct {
	rules        []Rule
	metadataOnly bool
}

func MetadataOnlyRules() []Rule {
	return []Rule{
		RequiredGeoKey(),
		RequiredMetadataType(),
		RequiredVersion(),
		RequiredPrimaryColumn(),
		RequiredColumns(),
		PrimaryColumnInLookup(),
		RequiredColumnEncoding(),
		RequiredGeometryTypes(),
		OptionalCRS(),
		OptionalOrientation(),
		OptionalEdges(),
		OptionalBbox(),
		OptionalEpoch(),
		GeometryDataType(),
		GeometryUngrouped(),
		GeometryRepetition(),
	}
}

func DataScanningRules() []Rule {
	return []Rule{
		GeometryEncoding(),
		GeometryTypes(),
		GeometryOrientation(),
		GeometryBounds(),
	}
}

// New creates a new Validator.
func New(metadataOnly bool) *Validator {
	rules := MetadataOnlyRules()
	if !metadataOnly {
		rules = append(rules, DataScanningRules()...)
	}

	return &Validator{rules: rules, metadataOnly: metadataOnly}
}

type Report struct {
	Checks       []*Check `json:"checks"`
	MetadataOnly bool     `json:"metadataOnly"`
}

type Check struct {
	Title   string `json:"title"`
	Run     bool   `json:"run"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Validate opens and validates a GeoParquet file read from resource,
// named for error messages (a path, or "<stdin>").
func (v *Validator) Validate(ctx context.Context, resource parquet.ReaderAtSeeker, name string) (*Report, error) {
	fileReader, fileErr := file.NewParquetReader(resource)
	if fileErr != nil {
		return nil, fmt.Errorf("failed to read %q as parquet: %w", name, fileErr)
	}
	defer fileReader.Close()
	return v.Report(ctx, fileReader)
}

// Report generates a validation report for an already-open GeoParquet file.
func (v *Validator) Report(ctx context.Context, fileReader *file.Reader) (*Report, error) {
	checks := make([]*Check, len(v.rules))
	for i, rule := range v.rules {
		checks[i] = &Check{Title: rule.Title()}
	}
	report := &Report{Checks: checks, MetadataOnly: v.metadataOnly}

	if err := run(v, checks, fileReader); err != nil {
		return report, nil
	}

	metadataValue, metadataErr := geoparquet.GetMetadataValue(fileReader.MetaData().KeyValueMetadata())
	if metadataErr != nil {
		return nil, metadataErr
	}

	metadataMap := MetadataMap{}
	if err := json.Unmarshal([]byte(metadataValue), &metadataMap); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if err := run(v, checks, metadataMap); err != nil {
		return report, nil
	}

	columnMetadataMap := ColumnMetdataMap{}
	columnMetadataAny, ok := metadataMap["columns"].(map[string]any)
	if !ok {
		return nil, errors.New("columns metadata is not an object")
	}
	for k, v := range columnMetadataAny {
		col, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("column metadata is not an object")
		}
		columnMetadataMap[k] = col
	}
	if err := run(v, checks, columnMetadataMap); err != nil {
		return report, nil
	}

	metadata, err := geoparquet.GetMetadata(fileReader.MetaData().KeyValueMetadata())
	if err != nil {
		return nil, err
	}

	info := &FileInfo{Metadata: metadata, File: fileReader}
	if err := run(v, checks, info); err != nil {
		return report, nil
	}

	if v.metadataOnly {
		return report, nil
	}

	return v.scanRows(ctx, fileReader, metadata, info, checks, report)
}

// scanRows applies the data-scanning ColumnValueRule checks row by row,
// using the same RecordReader-driven iteration the core reader uses.
func (v *Validator) scanRows(ctx context.Context, fileReader *file.Reader, metadata *geoparquet.Metadata, info *FileInfo, checks []*Check, report *Report) (*Report, error) {
	encodedRules := []*ColumnValueRule[any]{}
	encodedChecks := []*Check{}
	decodedRules := []*ColumnValueRule[orb.Geometry]{}
	decodedChecks := []*Check{}
	for i, r := range v.rules {
		switch rule := r.(type) {
		case *ColumnValueRule[any]:
			rule.Init(info)
			encodedRules = append(encodedRules, rule)
			encodedChecks = append(encodedChecks, checks[i])
		case *ColumnValueRule[orb.Geometry]:
			rule.Init(info)
			decodedRules = append(decodedRules, rule)
			decodedChecks = append(decodedChecks, checks[i])
		}
	}

	recordReader, readerErr := geoparquet.NewRecordReader(&geoparquet.ReaderConfig{File: fileReader, Context: ctx})
	if readerErr != nil {
		return nil, readerErr
	}
	defer recordReader.Close()

	for {
		record, readErr := recordReader.Read()
		if readErr != nil {
			break
		}
		schema := record.Schema()
		numRows := int(record.NumRows())
		for row := 0; row < numRows; row++ {
			for name := range metadata.Columns {
				idx := schema.FieldIndices(name)
				if len(idx) == 0 {
					return nil, fmt.Errorf("missing column %q", name)
				}
				value := record.Column(idx[0]).GetOneForMarshal(row)

				for i, rule := range encodedRules {
					if err := rule.Value(name, value); errors.Is(err, ErrFatal) {
						encodedChecks[i].Message = err.Error()
						encodedChecks[i].Run = true
						return report, nil
					}
				}

				geomColumn := metadata.Columns[name]
				decoded, decodeErr := geo.DecodeGeometry(value, geomColumn.Encoding)
				if decodeErr != nil {
					return nil, fmt.Errorf("failed to decode geometry: %w", decodeErr)
				}
				if decoded == nil {
					continue
				}
				for i, rule := range decodedRules {
					if err := rule.Value(name, decoded.Geometry()); errors.Is(err, ErrFatal) {
						decodedChecks[i].Message = err.Error()
						decodedChecks[i].Run = true
						return report, nil
					}
				}
			}
		}
	}

	for i, rule := range encodedRules {
		check := encodedChecks[i]
		check.Run = true
		if err := rule.Validate(); err != nil {
			check.Message = err.Error()
			if errors.Is(err, ErrFatal) {
				return report, nil
			}
			continue
		}
		check.Passed = true
	}

	for i, rule := range decodedRules {
		check := decodedChecks[i]
		check.Run = true
		if err := rule.Validate(); err != nil {
			check.Message = err.Error()
			if errors.Is(err, ErrFatal) {
				return report, nil
			}
			continue
		}
		check.Passed = true
	}

	return report, nil
}

func run[T RuleData](v *Validator, checks []*Check, data T) error {
	for i, r := range v.rules {
		check := checks[i]
		rule, ok := r.(*GenericRule[T])
		if !ok {
			continue
		}
		rule.Init(data)
		check.Run = true
		if err := rule.Validate(); err != nil {
			check.Message = err.Error()
			if errors.Is(err, ErrFatal) {
				return err
			}
			continue
		}
		check.Passed = true
	}
	return nil
}
