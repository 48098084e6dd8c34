package geoparquet

import (
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/planetlabs/gpq/internal/geo"
	"github.com/planetlabs/gpq/internal/geoarrow"
)

// decodeGeometryColumn turns the physical storage for a geometry column
// (WKB bytes in an arrow Binary array, or WKT text in a String array)
// into a native geoarrow.GeometryArray, the representation a Table
// exposes to callers (spec §4.6's storage -> native cast).
func decodeGeometryColumn(col arrow.Array, encoding string) (geoarrow.Array, error) {
	switch encoding {
	case geo.EncodingWKB:
		wkb, err := wkbArrayFromArrow(col)
		if err != nil {
			return nil, err
		}
		return geoarrow.ParseWKBArray(wkb, nil)
	case geo.EncodingWKT:
		wkt, err := wktArrayFromArrow(col)
		if err != nil {
			return nil, err
		}
		return geoarrow.ParseWKTArray(wkt, nil)
	default:
		return nil, fmt.Errorf("unsupported geometry encoding %q", encoding)
	}
}

func wkbArrayFromArrow(col arrow.Array) (*geoarrow.WKBArray, error) {
	bin, ok := col.(*array.Binary)
	if !ok {
		return nil, fmt.Errorf("expected a binary column for WKB storage, got %T", col)
	}
	builder := geoarrow.NewWKBBuilder(nil)
	for i := 0; i < bin.Len(); i++ {
		if bin.IsNull(i) {
			builder.PushNull()
			continue
		}
		if err := builder.Push(bin.Value(i)); err != nil {
			return nil, err
		}
	}
	return builder.Finish(), nil
}

func wktArrayFromArrow(col arrow.Array) (*geoarrow.WKTArray, error) {
	str, ok := col.(*array.String)
	if !ok {
		return nil, fmt.Errorf("expected a string column for WKT storage, got %T", col)
	}
	builder := geoarrow.NewWKTBuilder(nil)
	for i := 0; i < str.Len(); i++ {
		if str.IsNull(i) {
			builder.PushNull()
			continue
		}
		if err := builder.Push(str.Value(i)); err != nil {
			return nil, err
		}
	}
	return builder.Finish(), nil
}

// encodeGeometryColumn is the write-path inverse of decodeGeometryColumn:
// it serializes a native geoarrow array back to the declared storage
// encoding, ready to hand to an arrow column builder.
func encodeGeometryColumn(mem memory.Allocator, geometry geoarrow.Array, encoding string) (arrow.Array, error) {
	switch encoding {
	case geo.EncodingWKB:
		builder := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer builder.Release()
		if err := appendWKB(builder, geometry); err != nil {
			return nil, err
		}
		return builder.NewArray(), nil
	case geo.EncodingWKT:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		if err := appendWKT(builder, geometry); err != nil {
			return nil, err
		}
		return builder.NewArray(), nil
	default:
		return nil, fmt.Errorf("unsupported geometry encoding %q", encoding)
	}
}

// asGeometryArray widens any native geoarrow array (Point, LineString,
// ... as produced directly off a builder per spec §4.3, never
// necessarily cast to the Geometry union) to a *geoarrow.GeometryArray
// via Cast, so the WKB/WKT encoders below have one shape to walk.
func asGeometryArray(geometry geoarrow.Array) (*geoarrow.GeometryArray, error) {
	if g, ok := geometry.(*geoarrow.GeometryArray); ok {
		return g, nil
	}
	dt := geometry.DataType()
	target := geoarrow.NewType(geoarrow.VariantGeometry, dt.Dimension, dt.CoordType, dt.Metadata)
	cast, err := geoarrow.Cast(geometry, target)
	if err != nil {
		return nil, fmt.Errorf("encoding %T as geometry: %w", geometry, err)
	}
	geomArray, ok := cast.(*geoarrow.GeometryArray)
	if !ok {
		return nil, fmt.Errorf("encodeGeometryColumn requires a Geometry array, got %T", cast)
	}
	return geomArray, nil
}

func appendWKB(builder *array.BinaryBuilder, geometry geoarrow.Array) error {
	geomArray, err := asGeometryArray(geometry)
	if err != nil {
		return err
	}
	for i := 0; i < geomArray.Len(); i++ {
		g, present := geomArray.Get(i)
		if !present {
			builder.AppendNull()
			continue
		}
		data, err := geoarrow.ToWKB(g)
		if err != nil {
			return err
		}
		builder.Append(data)
	}
	return nil
}

func appendWKT(builder *array.StringBuilder, geometry geoarrow.Array) error {
	geomArray, err := asGeometryArray(geometry)
	if err != nil {
		return err
	}
	for i := 0; i < geomArray.Len(); i++ {
		g, present := geomArray.Get(i)
		if !present {
			builder.AppendNull()
			continue
		}
		text, err := geoarrow.ToWKT(g)
		if err != nil {
			return err
		}
		builder.Append(text)
	}
	return nil
}
