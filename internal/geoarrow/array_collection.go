package geoarrow

// MixedArray is the internal union array backing both the public
// Geometry variant and GeometryCollection's children: each slot routes
// to exactly one per-variant child array via a (type code, value
// offset) pair (spec §3, §4.4). It is never exposed as its own
// extension type; GeometryArray wraps it to add the geoarrow.geometry
// metadata and GeometryCollectionArray wraps it to add the outer
// geom_offsets level.
type MixedArray struct {
	arrayBase
	typeCodes    []int8
	valueOffsets []int32

	point           *PointArray
	lineString      *LineStringArray
	polygon         *PolygonArray
	multiPoint      *MultiPointArray
	multiLineString *MultiLineStringArray
	multiPolygon    *MultiPolygonArray
}

// Union type codes, stable across the lifetime of a MixedArray.
const (
	typeCodePoint int8 = iota
	typeCodeLineString
	typeCodePolygon
	typeCodeMultiPoint
	typeCodeMultiLineString
	typeCodeMultiPolygon
	// typeCodeNull marks a row that carries no geometry; only
	// row-indexed unions (GeometryBuilder) ever emit it.
	typeCodeNull int8 = -1
)

var _ Array = (*MixedArray)(nil)

func (a *MixedArray) Slice(offset, length int) Array {
	return &MixedArray{
		arrayBase:       a.sliceBase(offset, length),
		typeCodes:       a.typeCodes[offset : offset+length],
		valueOffsets:    a.valueOffsets[offset : offset+length],
		point:           a.point,
		lineString:      a.lineString,
		polygon:         a.polygon,
		multiPoint:      a.multiPoint,
		multiLineString: a.multiLineString,
		multiPolygon:    a.multiPolygon,
	}
}

// Get returns the row as a dispatched AnyGeometryTrait. A null slot
// still carries a type code but the returned trait accessor is nil.
func (a *MixedArray) Get(i int) (AnyGeometryTrait, bool) {
	if a.IsNull(i) {
		return AnyGeometryTrait{}, false
	}
	return a.Value(i), true
}

func (a *MixedArray) Value(i int) AnyGeometryTrait {
	off := int(a.valueOffsets[i])
	switch a.typeCodes[i] {
	case typeCodePoint:
		return AnyGeometryTrait{Point: a.point.Value(off)}
	case typeCodeLineString:
		return AnyGeometryTrait{LineString: a.lineString.Value(off)}
	case typeCodePolygon:
		return AnyGeometryTrait{Polygon: a.polygon.Value(off)}
	case typeCodeMultiPoint:
		return AnyGeometryTrait{MultiPoint: a.multiPoint.Value(off)}
	case typeCodeMultiLineString:
		return AnyGeometryTrait{MultiLineString: a.multiLineString.Value(off)}
	case typeCodeMultiPolygon:
		return AnyGeometryTrait{MultiPolygon: a.multiPolygon.Value(off)}
	}
	return AnyGeometryTrait{}
}

// mixedBuilder routes each pushed geometry to its matching per-variant
// sub-builder and records the (type_code, value_offset) pair (spec
// §4.4). It is embedded by GeometryCollectionBuilder and GeometryBuilder.
type mixedBuilder struct {
	dim       Dimension
	coordType CoordType
	metadata  *Metadata

	point           *PointBuilder
	lineString      *LineStringBuilder
	polygon         *PolygonBuilder
	multiPoint      *MultiPointBuilder
	multiLineString *MultiLineStringBuilder
	multiPolygon    *MultiPolygonBuilder

	typeCodes    []int8
	valueOffsets []int32
}

func newMixedBuilder(dim Dimension, ct CoordType, md *Metadata) *mixedBuilder {
	return &mixedBuilder{
		dim: dim, coordType: ct, metadata: md,
		point:           NewPointBuilder(dim, ct, md),
		lineString:      NewLineStringBuilder(dim, ct, md),
		polygon:         NewPolygonBuilder(dim, ct, md),
		multiPoint:      NewMultiPointBuilder(dim, ct, md),
		multiLineString: NewMultiLineStringBuilder(dim, ct, md),
		multiPolygon:    NewMultiPolygonBuilder(dim, ct, md),
	}
}

func newMixedBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap MixedCapacity) *mixedBuilder {
	b := newMixedBuilder(dim, ct, md)
	b.point = NewPointBuilderWithCapacity(dim, ct, md, cap.Point)
	b.lineString = NewLineStringBuilderWithCapacity(dim, ct, md, cap.LineString)
	b.polygon = NewPolygonBuilderWithCapacity(dim, ct, md, cap.Polygon)
	b.multiPoint = NewMultiPointBuilderWithCapacity(dim, ct, md, cap.MultiPoint)
	b.multiLineString = NewMultiLineStringBuilderWithCapacity(dim, ct, md, cap.MultiLineString)
	b.multiPolygon = NewMultiPolygonBuilderWithCapacity(dim, ct, md, cap.MultiPolygon)
	b.typeCodes = make([]int8, 0, cap.Rows)
	b.valueOffsets = make([]int32, 0, cap.Rows)
	return b
}

func (b *mixedBuilder) push(g AnyGeometryTrait) error {
	switch {
	case g.Point != nil:
		b.point.PushPoint(g.Point)
		b.record(typeCodePoint, b.point.Len()-1)
	case g.LineString != nil:
		if err := b.lineString.PushLineString(g.LineString); err != nil {
			return err
		}
		b.record(typeCodeLineString, b.lineString.Len()-1)
	case g.Line != nil:
		if err := b.lineString.PushGeometry(g); err != nil {
			return err
		}
		b.record(typeCodeLineString, b.lineString.Len()-1)
	case g.Polygon != nil:
		if err := b.polygon.PushPolygon(g.Polygon); err != nil {
			return err
		}
		b.record(typeCodePolygon, b.polygon.Len()-1)
	case g.Triangle != nil:
		if err := b.polygon.PushGeometry(g); err != nil {
			return err
		}
		b.record(typeCodePolygon, b.polygon.Len()-1)
	case g.MultiPoint != nil:
		if err := b.multiPoint.PushMultiPoint(g.MultiPoint); err != nil {
			return err
		}
		b.record(typeCodeMultiPoint, b.multiPoint.Len()-1)
	case g.MultiLineString != nil:
		if err := b.multiLineString.PushMultiLineString(g.MultiLineString); err != nil {
			return err
		}
		b.record(typeCodeMultiLineString, b.multiLineString.Len()-1)
	case g.MultiPolygon != nil:
		if err := b.multiPolygon.PushMultiPolygon(g.MultiPolygon); err != nil {
			return err
		}
		b.record(typeCodeMultiPolygon, b.multiPolygon.Len()-1)
	default:
		return newError(TypeMismatch, "mixed builder cannot absorb empty geometry trait")
	}
	return nil
}

// pushNull records a sentinel slot so callers that index the union by
// row (GeometryBuilder) keep rows aligned with mixed-array positions.
// GeometryCollectionBuilder never calls this: its children are indexed
// by the outer geom_offsets level, not by row, so a null collection row
// simply contributes zero mixed slots.
func (b *mixedBuilder) pushNull() {
	b.record(typeCodeNull, 0)
}

func (b *mixedBuilder) record(code int8, offset int) {
	b.typeCodes = append(b.typeCodes, code)
	b.valueOffsets = append(b.valueOffsets, int32(offset))
}

func (b *mixedBuilder) len() int { return len(b.typeCodes) }

func (b *mixedBuilder) finish(length int, nulls *nullBitmap) *MixedArray {
	return &MixedArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantGeometry, b.dim, b.coordType, b.metadata),
			length:   length,
			nulls:    nulls,
		},
		typeCodes:       b.typeCodes,
		valueOffsets:    b.valueOffsets,
		point:           b.point.Finish(),
		lineString:      b.lineString.Finish(),
		polygon:         b.polygon.Finish(),
		multiPoint:      b.multiPoint.Finish(),
		multiLineString: b.multiLineString.Finish(),
		multiPolygon:    b.multiPolygon.Finish(),
	}
}

// GeometryCollectionArray stores a sequence of heterogeneous geometries
// per row, delimited by an outer geom_offsets level over a MixedArray
// (spec §3). Per design decision, every child across the whole array
// shares one Dimension.
type GeometryCollectionArray struct {
	arrayBase
	children    *MixedArray
	geomOffsets *offsetBuffer
}

var _ Array = (*GeometryCollectionArray)(nil)

func (a *GeometryCollectionArray) Slice(offset, length int) Array {
	return &GeometryCollectionArray{
		arrayBase:   a.sliceBase(offset, length),
		children:    a.children,
		geomOffsets: a.geomOffsets.slice(offset, length),
	}
}

func (a *GeometryCollectionArray) Get(i int) (geometryCollectionValue, bool) {
	if a.IsNull(i) {
		return geometryCollectionValue{}, false
	}
	return a.Value(i), true
}

func (a *GeometryCollectionArray) Value(i int) geometryCollectionValue {
	start, end := a.geomOffsets.bounds(i)
	return geometryCollectionValue{children: a.children, start: int(start), end: int(end)}
}

type geometryCollectionValue struct {
	children   *MixedArray
	start, end int
}

func (geometryCollectionValue) GeoArrowVariant() Variant       { return VariantGeometryCollection }
func (v geometryCollectionValue) GeoArrowDimension() Dimension { return v.children.DataType().Dimension }
func (v geometryCollectionValue) NumGeometries() int           { return v.end - v.start }
func (v geometryCollectionValue) GeometryAt(i int) AnyGeometryTrait {
	return v.children.Value(v.start + i)
}

// GeometryCollectionBuilder constructs a GeometryCollectionArray.
type GeometryCollectionBuilder struct {
	mixed       *mixedBuilder
	geomOffsets *offsetBuffer
	nulls       *nullBitmap
	allValid    bool
}

func NewGeometryCollectionBuilder(dim Dimension, ct CoordType, md *Metadata) *GeometryCollectionBuilder {
	return &GeometryCollectionBuilder{
		mixed:       newMixedBuilder(dim, ct, md),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
}

func NewGeometryCollectionBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap GeometryCollectionCapacity) *GeometryCollectionBuilder {
	b := &GeometryCollectionBuilder{
		mixed:       newMixedBuilderWithCapacity(dim, ct, md, cap.Mixed),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
	b.geomOffsets.reserve(cap.Rows)
	return b
}

func (b *GeometryCollectionBuilder) PushCollection(g GeometryCollectionTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumGeometries()
	for i := 0; i < n; i++ {
		if err := b.mixed.push(g.GeometryAt(i)); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.push(b.mixed.len()); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *GeometryCollectionBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *GeometryCollectionBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.GeometryCollection != nil {
		return b.PushCollection(g.GeometryCollection)
	}
	return newError(TypeMismatch, "GeometryCollectionBuilder cannot absorb %v", g)
}

func (b *GeometryCollectionBuilder) Len() int { return b.geomOffsets.len() }

func (b *GeometryCollectionBuilder) Finish() *GeometryCollectionArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	children := b.mixed.finish(b.mixed.len(), nil)
	length := b.geomOffsets.len()
	dataType := NewType(VariantGeometryCollection, b.mixed.dim, b.mixed.coordType, b.mixed.metadata)
	return &GeometryCollectionArray{
		arrayBase:   arrayBase{dataType: dataType, length: length, nulls: nulls},
		children:    children,
		geomOffsets: b.geomOffsets,
	}
}
