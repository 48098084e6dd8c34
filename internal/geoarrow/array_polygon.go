package geoarrow

// PolygonArray stores rings of coordinates per row; the first ring of
// each row is the exterior (spec §3).
type PolygonArray struct {
	arrayBase
	coords      *CoordBuffer
	ringOffsets *offsetBuffer // indexes into coords
	geomOffsets *offsetBuffer // indexes into rings
}

var _ Array = (*PolygonArray)(nil)

func (a *PolygonArray) Slice(offset, length int) Array {
	return &PolygonArray{
		arrayBase:   a.sliceBase(offset, length),
		coords:      a.coords,
		ringOffsets: a.ringOffsets,
		geomOffsets: a.geomOffsets.slice(offset, length),
	}
}

func (a *PolygonArray) Get(i int) (polygonValue, bool) {
	if a.IsNull(i) {
		return polygonValue{}, false
	}
	return a.Value(i), true
}

func (a *PolygonArray) Value(i int) polygonValue {
	start, end := a.geomOffsets.bounds(i)
	return polygonValue{coords: a.coords, ringOffsets: a.ringOffsets, start: int(start), end: int(end)}
}

type polygonValue struct {
	coords      *CoordBuffer
	ringOffsets *offsetBuffer
	start, end  int
}

func (polygonValue) GeoArrowVariant() Variant         { return VariantPolygon }
func (v polygonValue) GeoArrowDimension() Dimension   { return v.coords.Dim() }
func (v polygonValue) NumRings() int                  { return v.end - v.start }
func (v polygonValue) RingAt(i int) LineStringTrait {
	rs, re := v.ringOffsets.bounds(v.start + i)
	return lineStringValue{coords: v.coords, start: int(rs), end: int(re)}
}

// PolygonBuilder constructs a PolygonArray (spec §4.4).
type PolygonBuilder struct {
	dim         Dimension
	coordType   CoordType
	metadata    *Metadata
	coords      *coordBuilder
	ringOffsets *offsetBuffer
	geomOffsets *offsetBuffer
	nulls       *nullBitmap
	allValid    bool
}

func NewPolygonBuilder(dim Dimension, ct CoordType, md *Metadata) *PolygonBuilder {
	return &PolygonBuilder{
		dim: dim, coordType: ct, metadata: md,
		coords:      newCoordBuilder(dim, ct, 0),
		ringOffsets: newOffsetBuffer(0),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
}

func NewPolygonBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap PolygonCapacity) *PolygonBuilder {
	b := NewPolygonBuilder(dim, ct, md)
	b.coords.reserve(cap.Coords)
	b.ringOffsets.reserve(cap.Rings)
	b.geomOffsets.reserve(cap.Rows)
	return b
}

// PushPolygon appends exterior then interior rings (spec §4.4); a nil
// geometry appends a null row (spec §3: a null row consumes no ring).
func (b *PolygonBuilder) PushPolygon(g PolygonTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumRings()
	for r := 0; r < n; r++ {
		ring := g.RingAt(r)
		nc := ring.NumCoords()
		for c := 0; c < nc; c++ {
			b.coords.pushCoord(ring.CoordAt(c))
		}
		if err := b.ringOffsets.push(b.coords.len()); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.push(b.ringOffsets.len()); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *PolygonBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *PolygonBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.Polygon != nil {
		return b.PushPolygon(g.Polygon)
	}
	if g.Triangle != nil {
		return b.PushPolygon(triangleAsPolygon{g.Triangle})
	}
	return newError(TypeMismatch, "PolygonBuilder cannot absorb %v", g)
}

func (b *PolygonBuilder) Len() int { return b.geomOffsets.len() }

func (b *PolygonBuilder) Finish() *PolygonArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &PolygonArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantPolygon, b.dim, b.coordType, b.metadata),
			length:   b.geomOffsets.len(),
			nulls:    nulls,
		},
		coords:      b.coords.finish(),
		ringOffsets: b.ringOffsets,
		geomOffsets: b.geomOffsets,
	}
}

type triangleAsPolygon struct{ t TriangleTrait }

func (triangleAsPolygon) GeoArrowVariant() Variant       { return VariantPolygon }
func (v triangleAsPolygon) GeoArrowDimension() Dimension { return v.t.GeoArrowDimension() }
func (triangleAsPolygon) NumRings() int                  { return 1 }
func (v triangleAsPolygon) RingAt(int) LineStringTrait   { return triangleRing{v.t} }

type triangleRing struct{ t TriangleTrait }

func (triangleRing) GeoArrowVariant() Variant       { return VariantLineString }
func (v triangleRing) GeoArrowDimension() Dimension { return v.t.GeoArrowDimension() }
func (triangleRing) NumCoords() int                 { return 4 } // closed ring: 3 corners + repeat of first
func (v triangleRing) CoordAt(i int) Coord {
	if i == 3 {
		return v.t.CornerAt(0)
	}
	return v.t.CornerAt(i)
}
