package geoarrow

// MultiLineStringArray stores lines per row: outer geom_offsets index
// rings (individual lines), ring_offsets index coords — layout
// identical to PolygonArray (spec §3).
type MultiLineStringArray struct {
	arrayBase
	coords      *CoordBuffer
	ringOffsets *offsetBuffer // indexes into coords, one entry per line
	geomOffsets *offsetBuffer // indexes into lines
}

var _ Array = (*MultiLineStringArray)(nil)

func (a *MultiLineStringArray) Slice(offset, length int) Array {
	return &MultiLineStringArray{
		arrayBase:   a.sliceBase(offset, length),
		coords:      a.coords,
		ringOffsets: a.ringOffsets,
		geomOffsets: a.geomOffsets.slice(offset, length),
	}
}

func (a *MultiLineStringArray) Get(i int) (multiLineStringValue, bool) {
	if a.IsNull(i) {
		return multiLineStringValue{}, false
	}
	return a.Value(i), true
}

func (a *MultiLineStringArray) Value(i int) multiLineStringValue {
	start, end := a.geomOffsets.bounds(i)
	return multiLineStringValue{coords: a.coords, ringOffsets: a.ringOffsets, start: int(start), end: int(end)}
}

func (a *MultiLineStringArray) NumChildren(i int) int {
	start, end := a.geomOffsets.bounds(i)
	return int(end - start)
}

type multiLineStringValue struct {
	coords      *CoordBuffer
	ringOffsets *offsetBuffer
	start, end  int
}

func (multiLineStringValue) GeoArrowVariant() Variant       { return VariantMultiLineString }
func (v multiLineStringValue) GeoArrowDimension() Dimension { return v.coords.Dim() }
func (v multiLineStringValue) NumLineStrings() int          { return v.end - v.start }
func (v multiLineStringValue) LineStringAt(i int) LineStringTrait {
	rs, re := v.ringOffsets.bounds(v.start + i)
	return lineStringValue{coords: v.coords, start: int(rs), end: int(re)}
}

// MultiLineStringBuilder constructs a MultiLineStringArray (spec §4.4).
type MultiLineStringBuilder struct {
	dim         Dimension
	coordType   CoordType
	metadata    *Metadata
	coords      *coordBuilder
	ringOffsets *offsetBuffer
	geomOffsets *offsetBuffer
	nulls       *nullBitmap
	allValid    bool
}

func NewMultiLineStringBuilder(dim Dimension, ct CoordType, md *Metadata) *MultiLineStringBuilder {
	return &MultiLineStringBuilder{
		dim: dim, coordType: ct, metadata: md,
		coords:      newCoordBuilder(dim, ct, 0),
		ringOffsets: newOffsetBuffer(0),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
}

func NewMultiLineStringBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap MultiLineStringCapacity) *MultiLineStringBuilder {
	b := NewMultiLineStringBuilder(dim, ct, md)
	b.coords.reserve(cap.Coords)
	b.ringOffsets.reserve(cap.Lines)
	b.geomOffsets.reserve(cap.Rows)
	return b
}

func (b *MultiLineStringBuilder) PushMultiLineString(g MultiLineStringTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumLineStrings()
	for i := 0; i < n; i++ {
		line := g.LineStringAt(i)
		nc := line.NumCoords()
		for c := 0; c < nc; c++ {
			b.coords.pushCoord(line.CoordAt(c))
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

func (b *MultiLineStringBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

// PushGeometry accepts a single LineString by wrapping it, per spec
// §4.4's documented example for this exact builder.
func (b *MultiLineStringBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.MultiLineString != nil {
		return b.PushMultiLineString(g.MultiLineString)
	}
	if g.LineString != nil {
		return b.PushMultiLineString(lineStringAsMulti{g.LineString})
	}
	return newError(TypeMismatch, "MultiLineStringBuilder cannot absorb %v", g)
}

func (b *MultiLineStringBuilder) Len() int { return b.geomOffsets.len() }

func (b *MultiLineStringBuilder) Finish() *MultiLineStringArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &MultiLineStringArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantMultiLineString, b.dim, b.coordType, b.metadata),
			length:   b.geomOffsets.len(),
			nulls:    nulls,
		},
		coords:      b.coords.finish(),
		ringOffsets: b.ringOffsets,
		geomOffsets: b.geomOffsets,
	}
}

type lineStringAsMulti struct{ ls LineStringTrait }

func (lineStringAsMulti) GeoArrowVariant() Variant       { return VariantMultiLineString }
func (v lineStringAsMulti) GeoArrowDimension() Dimension { return v.ls.GeoArrowDimension() }
func (lineStringAsMulti) NumLineStrings() int            { return 1 }
func (v lineStringAsMulti) LineStringAt(int) LineStringTrait { return v.ls }
