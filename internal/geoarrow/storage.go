package geoarrow

import (
	"encoding/json"

	"github.com/apache/arrow/go/v16/arrow"
)

// extensionNameKey and extensionMetadataKey are the two arrow.Field
// key/value metadata entries the GeoArrow extension type system reads
// and writes (spec §6.1's into_storage/from_storage contract).
const (
	extensionNameKey     = "ARROW:extension:name"
	extensionMetadataKey = "ARROW:extension:metadata"
)

// IntoStorage erases a GeoArrowType to the arrow.Field a physical
// writer (parquet/pqarrow in this codebase) actually emits: the field
// carries the plain Arrow physical type plus the two extension
// key/value entries, exactly as spec §4.3's into_storage describes.
func (t GeoArrowType) IntoStorage(name string, nullable bool) (arrow.Field, error) {
	mdJSON, err := json.Marshal(t.Metadata)
	if err != nil {
		return arrow.Field{}, wrapError(InvalidGeoArrow, err, "encoding extension metadata for %q", name)
	}
	keys := []string{extensionNameKey, extensionMetadataKey}
	values := []string{t.ExtensionName(), string(mdJSON)}
	return arrow.Field{
		Name:     name,
		Type:     t.PhysicalType(),
		Nullable: nullable,
		Metadata: arrow.NewMetadata(keys, values),
	}, nil
}

// FromStorage raises an arrow.Field back to a GeoArrowType, reading
// its ARROW:extension:name/metadata pair when present and otherwise
// falling back to InferPhysicalType's shape-based inference (spec
// §6.1: "Fields without extension metadata are treated as plain
// physical columns unless their shape unambiguously matches").
func FromStorage(field arrow.Field) (GeoArrowType, error) {
	name, ok := lookupMetadata(field.Metadata, extensionNameKey)
	if !ok {
		variant, dim, ct, inferred := InferPhysicalType(field.Type)
		if !inferred {
			return GeoArrowType{}, newError(InvalidGeoArrow, "field %q carries no recognizable geometry shape", field.Name)
		}
		return NewType(variant, dim, ct, &Metadata{}), nil
	}
	variant, ok := VariantFromExtensionName(name)
	if !ok {
		return GeoArrowType{}, newError(InvalidGeoArrow, "field %q has unrecognized extension name %q", field.Name, name)
	}
	dim, ct, ok := inferDimAndCoordType(field.Type, variant)
	if !ok {
		return GeoArrowType{}, newError(InvalidGeoArrow, "field %q physical type does not match extension %q", field.Name, name)
	}
	var md *Metadata
	if rawMD, ok := lookupMetadata(field.Metadata, extensionMetadataKey); ok {
		parsed, err := ParseExtensionMetadata(rawMD)
		if err != nil {
			return GeoArrowType{}, err
		}
		md = parsed
	} else {
		md = &Metadata{}
	}
	return NewType(variant, dim, ct, md), nil
}

func lookupMetadata(md arrow.Metadata, key string) (string, bool) {
	idx := md.FindKey(key)
	if idx < 0 {
		return "", false
	}
	return md.Values()[idx], true
}

// inferDimAndCoordType recovers dimension/coord-type from a physical
// arrow.DataType given the extension-declared variant, by unwrapping
// list nesting down to the leaf coordinate representation.
func inferDimAndCoordType(dt arrow.DataType, variant Variant) (Dimension, CoordType, bool) {
	leaf := dt
	for {
		switch t := leaf.(type) {
		case *arrow.ListType:
			leaf = t.Elem()
			continue
		}
		break
	}
	switch variant {
	case VariantWKB, VariantWKT, VariantGeometry:
		return DimXY, CoordInterleaved, true
	case VariantRect:
		st, ok := leaf.(*arrow.StructType)
		if !ok || st.NumFields() != 2 {
			return 0, 0, false
		}
		lower, ok := st.Field(0).Type.(*arrow.StructType)
		if !ok {
			return 0, 0, false
		}
		return dimensionFromWidth(lower.NumFields()), CoordSeparated, true
	}
	switch v := leaf.(type) {
	case *arrow.FixedSizeListType:
		return dimensionFromWidth(int(v.Len())), CoordInterleaved, true
	case *arrow.StructType:
		return dimensionFromWidth(v.NumFields()), CoordSeparated, true
	}
	return 0, 0, false
}

func dimensionFromWidth(width int) Dimension {
	switch width {
	case 2:
		return DimXY
	case 3:
		return DimXYZ // ambiguous with XYM; callers needing to distinguish must consult extension metadata's axis order
	case 4:
		return DimXYZM
	}
	return DimXY
}
