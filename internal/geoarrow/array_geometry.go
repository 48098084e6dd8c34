package geoarrow

// GeometryArray is the public dynamic union variant (spec §4.3's
// "Geometry" type): every row may hold a different native shape, built
// directly on the same mixed union encoding as GeometryCollection's
// children, but without the extra geom_offsets level (one union slot
// per row, not per child).
type GeometryArray struct {
	arrayBase
	mixed *MixedArray
}

var _ Array = (*GeometryArray)(nil)

func (a *GeometryArray) Slice(offset, length int) Array {
	return &GeometryArray{
		arrayBase: a.sliceBase(offset, length),
		mixed:     a.mixed.Slice(offset, length).(*MixedArray),
	}
}

func (a *GeometryArray) Get(i int) (AnyGeometryTrait, bool) {
	if a.IsNull(i) {
		return AnyGeometryTrait{}, false
	}
	return a.mixed.Value(i), true
}

func (a *GeometryArray) Value(i int) AnyGeometryTrait { return a.mixed.Value(i) }

// GeometryBuilder constructs a GeometryArray, accepting any native
// shape per row (spec §4.4, §4.5's any-native -> Geometry cast).
type GeometryBuilder struct {
	mixed    *mixedBuilder
	nulls    *nullBitmap
	rows     int
	allValid bool
}

func NewGeometryBuilder(dim Dimension, ct CoordType, md *Metadata) *GeometryBuilder {
	return &GeometryBuilder{mixed: newMixedBuilder(dim, ct, md), nulls: newNullBitmap(0), allValid: true}
}

func NewGeometryBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap MixedCapacity) *GeometryBuilder {
	return &GeometryBuilder{mixed: newMixedBuilderWithCapacity(dim, ct, md, cap), nulls: newNullBitmap(0), allValid: true}
}

func (b *GeometryBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.Point == nil && g.LineString == nil && g.Polygon == nil && g.MultiPoint == nil &&
		g.MultiLineString == nil && g.MultiPolygon == nil && g.GeometryCollection == nil &&
		g.Rect == nil && g.Line == nil && g.Triangle == nil {
		b.PushNull()
		return nil
	}
	if g.GeometryCollection != nil || g.Rect != nil {
		return newError(TypeMismatch, "GeometryBuilder does not accept %v directly; cast via the collection/rect variant", g)
	}
	if err := b.mixed.push(g); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	b.rows++
	return nil
}

func (b *GeometryBuilder) PushNull() {
	b.mixed.pushNull()
	b.nulls.appendValid(false)
	b.allValid = false
	b.rows++
}

func (b *GeometryBuilder) Len() int { return b.rows }

func (b *GeometryBuilder) Finish() *GeometryArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	mixed := b.mixed.finish(b.rows, nulls)
	return &GeometryArray{
		arrayBase: arrayBase{dataType: mixed.dataType, length: b.rows, nulls: nulls},
		mixed:     mixed,
	}
}
