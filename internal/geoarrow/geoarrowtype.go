package geoarrow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v16/arrow"
)

// Variant tags the logical geometry shape, independent of dimension
// and coord type (spec §3).
type Variant uint8

const (
	VariantPoint Variant = iota
	VariantLineString
	VariantPolygon
	VariantMultiPoint
	VariantMultiLineString
	VariantMultiPolygon
	VariantGeometryCollection
	VariantRect
	VariantGeometry // the dynamic union (Mixed exposed publicly)
	VariantWKB
	VariantWKT
)

var variantExtensionNames = map[Variant]string{
	VariantPoint:              "geoarrow.point",
	VariantLineString:         "geoarrow.linestring",
	VariantPolygon:            "geoarrow.polygon",
	VariantMultiPoint:         "geoarrow.multipoint",
	VariantMultiLineString:    "geoarrow.multilinestring",
	VariantMultiPolygon:       "geoarrow.multipolygon",
	VariantGeometryCollection: "geoarrow.geometrycollection",
	VariantRect:               "geoarrow.box",
	VariantGeometry:           "geoarrow.geometry",
	VariantWKB:                "geoarrow.wkb",
	VariantWKT:                "geoarrow.wkt",
}

var extensionNameToVariant = func() map[string]Variant {
	m := make(map[string]Variant, len(variantExtensionNames)+1)
	for v, name := range variantExtensionNames {
		m[name] = v
	}
	m["ogc.wkb"] = VariantWKB // legacy alias, spec §6.1
	return m
}()

func (v Variant) String() string {
	if name, ok := variantExtensionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

// VariantFromExtensionName resolves an ARROW:extension:name value,
// including the legacy ogc.wkb alias.
func VariantFromExtensionName(name string) (Variant, bool) {
	v, ok := extensionNameToVariant[name]
	return v, ok
}

// GeoArrowType is the tagged enum of every supported logical type:
// (variant, dimension, coord interleaving, metadata) (spec §3).
type GeoArrowType struct {
	Variant   Variant
	Dimension Dimension
	CoordType CoordType
	Metadata  *Metadata
}

func NewType(variant Variant, dim Dimension, ct CoordType, md *Metadata) GeoArrowType {
	return GeoArrowType{Variant: variant, Dimension: dim, CoordType: ct, Metadata: md}
}

// IsListShaped reports whether the variant carries one or more levels
// of offset buffers (spec §3's "Child offsets" column).
func (t GeoArrowType) IsListShaped() bool {
	switch t.Variant {
	case VariantPoint, VariantRect, VariantWKB, VariantWKT:
		return false
	default:
		return true
	}
}

// Equal compares two types by value, including metadata (CRS/edges).
func (t GeoArrowType) Equal(other GeoArrowType) bool {
	return t.Variant == other.Variant &&
		t.Dimension == other.Dimension &&
		t.CoordType == other.CoordType &&
		t.Metadata.Equal(other.Metadata)
}

// SameShape compares variant and dimension only, ignoring coord type
// and metadata - the granularity most cast decisions operate at.
func (t GeoArrowType) SameShape(other GeoArrowType) bool {
	return t.Variant == other.Variant && t.Dimension == other.Dimension
}

func (t GeoArrowType) WithVariant(v Variant) GeoArrowType {
	t.Variant = v
	return t
}

func (t GeoArrowType) WithDimension(d Dimension) GeoArrowType {
	t.Dimension = d
	return t
}

func (t GeoArrowType) WithCoordType(ct CoordType) GeoArrowType {
	t.CoordType = ct
	return t
}

func (t GeoArrowType) String() string {
	return fmt.Sprintf("%s(%s,%s)", t.Variant, t.Dimension, t.CoordType)
}

// ExtensionName returns the ARROW:extension:name value for this type.
func (t GeoArrowType) ExtensionName() string {
	return variantExtensionNames[t.Variant]
}

// extensionDimSuffix returns the geoarrow extension-name dimension
// suffix, e.g. "_z", "_m", "_zm" for non-XY dimensions, "" for XY.
func extensionDimSuffix(d Dimension) string {
	switch d {
	case DimXYZ:
		return "_z"
	case DimXYM:
		return "_m"
	case DimXYZM:
		return "_zm"
	default:
		return ""
	}
}

// PhysicalType returns the underlying arrow.DataType this logical type
// lowers to when the extension metadata is erased (spec §4.3 into_storage,
// §6.1 "Physical types the core recognizes without extension metadata").
func (t GeoArrowType) PhysicalType() arrow.DataType {
	width := t.Dimension.Width()
	coordField := func() arrow.DataType {
		switch t.CoordType {
		case CoordInterleaved:
			return &arrow.FixedSizeListType{ElemField: arrow.Field{Name: "xy", Type: arrow.PrimitiveTypes.Float64}, N: int32(width)}
		default:
			fields := make([]arrow.Field, width)
			for i, axis := range t.Dimension.Axes() {
				fields[i] = arrow.Field{Name: axis, Type: arrow.PrimitiveTypes.Float64}
			}
			return arrow.StructOf(fields...)
		}
	}
	listOf := func(elem arrow.DataType) arrow.DataType {
		return arrow.ListOf(elem)
	}

	switch t.Variant {
	case VariantPoint:
		return coordField()
	case VariantLineString:
		return listOf(coordField())
	case VariantPolygon:
		return listOf(listOf(coordField()))
	case VariantMultiPoint:
		return listOf(coordField())
	case VariantMultiLineString:
		return listOf(listOf(coordField()))
	case VariantMultiPolygon:
		return listOf(listOf(listOf(coordField())))
	case VariantGeometryCollection:
		return listOf(arrow.StructOf()) // children are heterogeneous; see array_collection.go for the real mixed encoding
	case VariantRect:
		fields := make([]arrow.Field, width)
		for i, axis := range t.Dimension.Axes() {
			fields[i] = arrow.Field{Name: axis, Type: arrow.PrimitiveTypes.Float64}
		}
		return arrow.StructOf(
			arrow.Field{Name: "lower", Type: arrow.StructOf(fields...)},
			arrow.Field{Name: "upper", Type: arrow.StructOf(fields...)},
		)
	case VariantWKB:
		return arrow.BinaryTypes.Binary
	case VariantWKT:
		return arrow.BinaryTypes.String
	case VariantGeometry:
		return arrow.BinaryTypes.Binary // a Geometry field is erased to its WKB storage form; see storage.go
	}
	return nil
}

// InferPhysicalType implements the shape-based inference of spec §6.1
// for fields carrying no GeoArrow extension metadata.
func InferPhysicalType(dt arrow.DataType) (Variant, Dimension, CoordType, bool) {
	switch t := dt.(type) {
	case *arrow.StructType:
		switch t.NumFields() {
		case 2:
			return VariantPoint, DimXY, CoordSeparated, true
		case 3:
			return VariantPoint, DimXYZ, CoordSeparated, true
		case 4:
			return VariantPoint, DimXYZM, CoordSeparated, true
		}
	case *arrow.FixedSizeListType:
		if t.Elem() == arrow.PrimitiveTypes.Float64 {
			switch t.Len() {
			case 2:
				return VariantPoint, DimXY, CoordInterleaved, true
			case 3:
				return VariantPoint, DimXYZ, CoordInterleaved, true
			case 4:
				return VariantPoint, DimXYZM, CoordInterleaved, true
			}
		}
	case *arrow.BinaryType, *arrow.LargeBinaryType, *arrow.BinaryViewType:
		return VariantWKB, DimXY, CoordInterleaved, true
	case *arrow.StringType, *arrow.LargeStringType, *arrow.StringViewType:
		return VariantWKT, DimXY, CoordInterleaved, true
	}
	return 0, 0, 0, false
}

// ParseExtensionMetadata decodes a field's GeoArrow extension metadata
// JSON string into a Metadata record (spec §6.1).
func ParseExtensionMetadata(raw string) (*Metadata, error) {
	if strings.TrimSpace(raw) == "" {
		return &Metadata{}, nil
	}
	md := &Metadata{}
	if err := json.Unmarshal([]byte(raw), md); err != nil {
		return nil, wrapError(InvalidGeoArrow, err, "invalid GeoArrow extension metadata")
	}
	return md, nil
}
