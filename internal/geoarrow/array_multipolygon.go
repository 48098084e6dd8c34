package geoarrow

// MultiPolygonArray stores polygons per row with three offset levels:
// poly -> ring -> coord (spec §3).
type MultiPolygonArray struct {
	arrayBase
	coords         *CoordBuffer
	ringOffsets    *offsetBuffer // indexes into coords
	polygonOffsets *offsetBuffer // indexes into rings
	geomOffsets    *offsetBuffer // indexes into polys
}

var _ Array = (*MultiPolygonArray)(nil)

func (a *MultiPolygonArray) Slice(offset, length int) Array {
	return &MultiPolygonArray{
		arrayBase:      a.sliceBase(offset, length),
		coords:         a.coords,
		ringOffsets:    a.ringOffsets,
		polygonOffsets: a.polygonOffsets,
		geomOffsets:    a.geomOffsets.slice(offset, length),
	}
}

func (a *MultiPolygonArray) Get(i int) (multiPolygonValue, bool) {
	if a.IsNull(i) {
		return multiPolygonValue{}, false
	}
	return a.Value(i), true
}

func (a *MultiPolygonArray) Value(i int) multiPolygonValue {
	start, end := a.geomOffsets.bounds(i)
	return multiPolygonValue{coords: a.coords, ringOffsets: a.ringOffsets, polygonOffsets: a.polygonOffsets, start: int(start), end: int(end)}
}

func (a *MultiPolygonArray) NumChildren(i int) int {
	start, end := a.geomOffsets.bounds(i)
	return int(end - start)
}

type multiPolygonValue struct {
	coords                   *CoordBuffer
	ringOffsets              *offsetBuffer
	polygonOffsets           *offsetBuffer
	start, end               int
}

func (multiPolygonValue) GeoArrowVariant() Variant       { return VariantMultiPolygon }
func (v multiPolygonValue) GeoArrowDimension() Dimension { return v.coords.Dim() }
func (v multiPolygonValue) NumPolygons() int             { return v.end - v.start }
func (v multiPolygonValue) PolygonAt(i int) PolygonTrait {
	ps, pe := v.polygonOffsets.bounds(v.start + i)
	return polygonValue{coords: v.coords, ringOffsets: v.ringOffsets, start: int(ps), end: int(pe)}
}

// MultiPolygonBuilder constructs a MultiPolygonArray (spec §4.4).
type MultiPolygonBuilder struct {
	dim            Dimension
	coordType      CoordType
	metadata       *Metadata
	coords         *coordBuilder
	ringOffsets    *offsetBuffer
	polygonOffsets *offsetBuffer
	geomOffsets    *offsetBuffer
	nulls          *nullBitmap
	allValid       bool
}

func NewMultiPolygonBuilder(dim Dimension, ct CoordType, md *Metadata) *MultiPolygonBuilder {
	return &MultiPolygonBuilder{
		dim: dim, coordType: ct, metadata: md,
		coords:         newCoordBuilder(dim, ct, 0),
		ringOffsets:    newOffsetBuffer(0),
		polygonOffsets: newOffsetBuffer(0),
		geomOffsets:    newOffsetBuffer(0),
		nulls:          newNullBitmap(0),
		allValid:       true,
	}
}

func NewMultiPolygonBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap MultiPolygonCapacity) *MultiPolygonBuilder {
	b := NewMultiPolygonBuilder(dim, ct, md)
	b.coords.reserve(cap.Coords)
	b.ringOffsets.reserve(cap.Rings)
	b.polygonOffsets.reserve(cap.Polys)
	b.geomOffsets.reserve(cap.Rows)
	return b
}

func (b *MultiPolygonBuilder) PushMultiPolygon(g MultiPolygonTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumPolygons()
	for p := 0; p < n; p++ {
		poly := g.PolygonAt(p)
		nr := poly.NumRings()
		for r := 0; r < nr; r++ {
			ring := poly.RingAt(r)
			nc := ring.NumCoords()
			for c := 0; c < nc; c++ {
				b.coords.pushCoord(ring.CoordAt(c))
			}
			if err := b.ringOffsets.push(b.coords.len()); err != nil {
				return err
			}
		}
		if err := b.polygonOffsets.push(b.ringOffsets.len()); err != nil {
			return err
		}
	}
	if err := b.geomOffsets.push(b.polygonOffsets.len()); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *MultiPolygonBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *MultiPolygonBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.MultiPolygon != nil {
		return b.PushMultiPolygon(g.MultiPolygon)
	}
	if g.Polygon != nil {
		return b.PushMultiPolygon(polygonAsMulti{g.Polygon})
	}
	return newError(TypeMismatch, "MultiPolygonBuilder cannot absorb %v", g)
}

func (b *MultiPolygonBuilder) Len() int { return b.geomOffsets.len() }

func (b *MultiPolygonBuilder) Finish() *MultiPolygonArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &MultiPolygonArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantMultiPolygon, b.dim, b.coordType, b.metadata),
			length:   b.geomOffsets.len(),
			nulls:    nulls,
		},
		coords:         b.coords.finish(),
		ringOffsets:    b.ringOffsets,
		polygonOffsets: b.polygonOffsets,
		geomOffsets:    b.geomOffsets,
	}
}

type polygonAsMulti struct{ p PolygonTrait }

func (polygonAsMulti) GeoArrowVariant() Variant       { return VariantMultiPolygon }
func (v polygonAsMulti) GeoArrowDimension() Dimension { return v.p.GeoArrowDimension() }
func (polygonAsMulti) NumPolygons() int               { return 1 }
func (v polygonAsMulti) PolygonAt(int) PolygonTrait   { return v.p }
