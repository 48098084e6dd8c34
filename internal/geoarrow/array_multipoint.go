package geoarrow

// MultiPointArray stores coordinates per row, delimited by geom_offsets
// into the shared coords buffer — layout-identical to LineStringArray
// (spec §3).
type MultiPointArray struct {
	arrayBase
	coords      *CoordBuffer
	geomOffsets *offsetBuffer
}

var _ Array = (*MultiPointArray)(nil)

func (a *MultiPointArray) Slice(offset, length int) Array {
	return &MultiPointArray{
		arrayBase:   a.sliceBase(offset, length),
		coords:      a.coords,
		geomOffsets: a.geomOffsets.slice(offset, length),
	}
}

func (a *MultiPointArray) Get(i int) (multiPointValue, bool) {
	if a.IsNull(i) {
		return multiPointValue{}, false
	}
	return a.Value(i), true
}

func (a *MultiPointArray) Value(i int) multiPointValue {
	start, end := a.geomOffsets.bounds(i)
	return multiPointValue{coords: a.coords, start: int(start), end: int(end)}
}

// NumChildren returns the number of points in row i, used by downcast
// to decide whether every row has exactly one child (spec §4.5).
func (a *MultiPointArray) NumChildren(i int) int {
	start, end := a.geomOffsets.bounds(i)
	return int(end - start)
}

type multiPointValue struct {
	coords     *CoordBuffer
	start, end int
}

func (multiPointValue) GeoArrowVariant() Variant       { return VariantMultiPoint }
func (v multiPointValue) GeoArrowDimension() Dimension { return v.coords.Dim() }
func (v multiPointValue) NumPoints() int               { return v.end - v.start }
func (v multiPointValue) PointAt(i int) PointTrait {
	return pointValue{coord: v.coords.Get(v.start + i)}
}

// MultiPointBuilder constructs a MultiPointArray (spec §4.4).
type MultiPointBuilder struct {
	dim         Dimension
	coordType   CoordType
	metadata    *Metadata
	coords      *coordBuilder
	geomOffsets *offsetBuffer
	nulls       *nullBitmap
	allValid    bool
}

func NewMultiPointBuilder(dim Dimension, ct CoordType, md *Metadata) *MultiPointBuilder {
	return &MultiPointBuilder{
		dim: dim, coordType: ct, metadata: md,
		coords:      newCoordBuilder(dim, ct, 0),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
}

func NewMultiPointBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap MultiPointCapacity) *MultiPointBuilder {
	b := NewMultiPointBuilder(dim, ct, md)
	b.coords.reserve(cap.Coords)
	b.geomOffsets.reserve(cap.Rows)
	return b
}

func (b *MultiPointBuilder) PushMultiPoint(g MultiPointTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumPoints()
	for i := 0; i < n; i++ {
		b.coords.pushCoord(g.PointAt(i).Coord())
	}
	if err := b.geomOffsets.push(b.coords.len()); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *MultiPointBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

// PushGeometry widens a single Point by wrapping it (spec §4.4's
// documented MultiLineStringBuilder example generalizes to every
// Multi* builder accepting its scalar counterpart).
func (b *MultiPointBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.MultiPoint != nil {
		return b.PushMultiPoint(g.MultiPoint)
	}
	if g.Point != nil {
		return b.PushMultiPoint(pointAsMultiPoint{g.Point})
	}
	return newError(TypeMismatch, "MultiPointBuilder cannot absorb %v", g)
}

func (b *MultiPointBuilder) Len() int { return b.geomOffsets.len() }

func (b *MultiPointBuilder) Finish() *MultiPointArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &MultiPointArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantMultiPoint, b.dim, b.coordType, b.metadata),
			length:   b.geomOffsets.len(),
			nulls:    nulls,
		},
		coords:      b.coords.finish(),
		geomOffsets: b.geomOffsets,
	}
}

type pointAsMultiPoint struct{ p PointTrait }

func (pointAsMultiPoint) GeoArrowVariant() Variant       { return VariantMultiPoint }
func (v pointAsMultiPoint) GeoArrowDimension() Dimension { return v.p.GeoArrowDimension() }
func (pointAsMultiPoint) NumPoints() int                 { return 1 }
func (v pointAsMultiPoint) PointAt(int) PointTrait        { return v.p }
