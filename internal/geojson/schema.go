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
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/planetlabs/gpq/internal/geo"
)

func arrowTypeOf(name string, value any) (arrow.DataType, error) {
	switch v := value.(type) {
	case bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case string:
		return arrow.BinaryTypes.String, nil
	case float64:
		return arrow.PrimitiveTypes.Float64, nil
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("cannot infer type of %q from an empty array", name)
		}
		elemType, err := arrowTypeOf(name, v[0])
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elemType), nil
	case map[string]any:
		fields, err := arrowFieldsOf(v)
		if err != nil {
			return nil, err
		}
		return arrow.StructOf(fields...), nil
	default:
		return nil, fmt.Errorf("unsupported property %q of type %T", name, value)
	}
}

func arrowFieldsOf(properties map[string]any) ([]arrow.Field, error) {
	fields := make([]arrow.Field, 0, len(properties))
	for name, value := range properties {
		if value == nil {
			fields = append(fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true})
			continue
		}
		dataType, err := arrowTypeOf(name, value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: name, Type: dataType, Nullable: true})
	}
	return fields, nil
}

// SchemaOf infers an arrow schema from a sample of features, unioning
// property names across the sample since GeoJSON features rarely
// declare a fixed schema up front.
func SchemaOf(primaryColumn string, sample []*geo.Feature) (*arrow.Schema, error) {
	if len(sample) == 0 {
		return nil, errors.New("need at least one feature to infer a schema")
	}

	propertyTypes := map[string]arrow.DataType{}
	order := []string{}
	for _, feature := range sample {
		for name, value := range feature.Properties {
			if value == nil {
				continue
			}
			if _, seen := propertyTypes[name]; seen {
				continue
			}
			dataType, err := arrowTypeOf(name, value)
			if err != nil {
				return nil, fmt.Errorf("trouble inferring schema: %w", err)
			}
			propertyTypes[name] = dataType
			order = append(order, name)
		}
	}

	fields := make([]arrow.Field, 0, len(order)+1)
	for _, name := range order {
		fields = append(fields, arrow.Field{Name: name, Type: propertyTypes[name], Nullable: true})
	}
	fields = append(fields, arrow.Field{Name: primaryColumn, Type: arrow.BinaryTypes.Binary, Nullable: true})

	return arrow.NewSchema(fields, nil), nil
}
