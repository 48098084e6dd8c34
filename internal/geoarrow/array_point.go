package geoarrow

// PointArray stores one coordinate per row (spec §3).
type PointArray struct {
	arrayBase
	coords *CoordBuffer
}

var _ Array = (*PointArray)(nil)

func (a *PointArray) Slice(offset, length int) Array {
	return &PointArray{arrayBase: a.sliceBase(offset, length), coords: a.coords.Slice(offset, length)}
}

// Get returns the row's coordinate view, or false if the row is null
// (spec §4.3 get respects validity).
func (a *PointArray) Get(i int) (pointValue, bool) {
	if a.IsNull(i) {
		return pointValue{}, false
	}
	return a.Value(i), true
}

// Value returns the row's coordinate view regardless of validity; per
// spec §4.3 this is unspecified-but-safe on a null row.
func (a *PointArray) Value(i int) pointValue {
	return pointValue{coord: a.coords.Get(i)}
}

type pointValue struct{ coord Coord }

func (pointValue) GeoArrowVariant() Variant         { return VariantPoint }
func (v pointValue) GeoArrowDimension() Dimension   { return v.coord.Dim() }
func (v pointValue) Coord() Coord                   { return v.coord }

// PointBuilder constructs a PointArray in a single pass (spec §4.4).
type PointBuilder struct {
	dim       Dimension
	coordType CoordType
	metadata  *Metadata
	coords    *coordBuilder
	nulls     *nullBitmap
	rows      int
	allValid  bool
}

func NewPointBuilder(dim Dimension, ct CoordType, md *Metadata) *PointBuilder {
	return &PointBuilder{dim: dim, coordType: ct, metadata: md, coords: newCoordBuilder(dim, ct, 0), nulls: newNullBitmap(0), allValid: true}
}

func NewPointBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap PointCapacity) *PointBuilder {
	b := NewPointBuilder(dim, ct, md)
	b.Reserve(cap.Rows)
	return b
}

func (b *PointBuilder) Reserve(rows int) {
	b.coords.reserve(rows)
}

func (b *PointBuilder) PushPoint(g PointTrait) {
	if g == nil {
		b.PushNull()
		return
	}
	b.coords.pushCoord(g.Coord())
	b.nulls.appendValid(true)
	b.rows++
}

func (b *PointBuilder) PushNull() {
	// A null Point row still needs a coordinate slot (Point has no
	// offset level to dedupe against; spec §3 only exempts list-shaped
	// variants from consuming child slots on null).
	var zero [4]float64
	b.coords.push(zero[:b.dim.Width()]...)
	b.nulls.appendValid(false)
	b.allValid = false
	b.rows++
}

// PushGeometry accepts any trait-typed input, erroring on a shape
// mismatch (spec §4.4 push_geometry).
func (b *PointBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.Point == nil {
		return newError(TypeMismatch, "PointBuilder cannot absorb %v", g)
	}
	b.PushPoint(g.Point)
	return nil
}

func (b *PointBuilder) Len() int { return b.rows }

func (b *PointBuilder) Finish() *PointArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &PointArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantPoint, b.dim, b.coordType, b.metadata),
			length:   b.rows,
			nulls:    nulls,
		},
		coords: b.coords.finish(),
	}
}
