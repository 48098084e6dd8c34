package geoarrow

// LineStringArray stores a variable number of coordinates per row,
// delimited by geom_offsets into the shared coords buffer (spec §3).
type LineStringArray struct {
	arrayBase
	coords      *CoordBuffer
	geomOffsets *offsetBuffer
}

var _ Array = (*LineStringArray)(nil)

func (a *LineStringArray) Slice(offset, length int) Array {
	return &LineStringArray{
		arrayBase:   a.sliceBase(offset, length),
		coords:      a.coords,
		geomOffsets: a.geomOffsets.slice(offset, length),
	}
}

func (a *LineStringArray) Get(i int) (lineStringValue, bool) {
	if a.IsNull(i) {
		return lineStringValue{}, false
	}
	return a.Value(i), true
}

func (a *LineStringArray) Value(i int) lineStringValue {
	start, end := a.geomOffsets.bounds(i)
	return lineStringValue{coords: a.coords, start: int(start), end: int(end)}
}

type lineStringValue struct {
	coords     *CoordBuffer
	start, end int
}

func (lineStringValue) GeoArrowVariant() Variant { return VariantLineString }
func (v lineStringValue) GeoArrowDimension() Dimension {
	return v.coords.Dim()
}
func (v lineStringValue) NumCoords() int { return v.end - v.start }
func (v lineStringValue) CoordAt(i int) Coord {
	return v.coords.Get(v.start + i)
}

// LineStringBuilder constructs a LineStringArray (spec §4.4).
type LineStringBuilder struct {
	dim         Dimension
	coordType   CoordType
	metadata    *Metadata
	coords      *coordBuilder
	geomOffsets *offsetBuffer
	nulls       *nullBitmap
	allValid    bool
}

func NewLineStringBuilder(dim Dimension, ct CoordType, md *Metadata) *LineStringBuilder {
	return &LineStringBuilder{
		dim: dim, coordType: ct, metadata: md,
		coords:      newCoordBuilder(dim, ct, 0),
		geomOffsets: newOffsetBuffer(0),
		nulls:       newNullBitmap(0),
		allValid:    true,
	}
}

func NewLineStringBuilderWithCapacity(dim Dimension, ct CoordType, md *Metadata, cap LineStringCapacity) *LineStringBuilder {
	b := NewLineStringBuilder(dim, ct, md)
	b.coords.reserve(cap.Coords)
	b.geomOffsets.reserve(cap.Rows)
	return b
}

// PushLineString appends one row; nil means a null row (spec §4.4).
func (b *LineStringBuilder) PushLineString(g LineStringTrait) error {
	if g == nil {
		b.PushNull()
		return nil
	}
	n := g.NumCoords()
	for i := 0; i < n; i++ {
		b.coords.pushCoord(g.CoordAt(i))
	}
	if err := b.geomOffsets.push(b.coords.len()); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *LineStringBuilder) PushNull() {
	b.geomOffsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *LineStringBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.LineString != nil {
		return b.PushLineString(g.LineString)
	}
	if g.Line != nil {
		// A Line widens trivially into a two-point LineString.
		return b.PushLineString(lineAsLineString{g.Line})
	}
	return newError(TypeMismatch, "LineStringBuilder cannot absorb %v", g)
}

func (b *LineStringBuilder) Len() int { return b.geomOffsets.len() }

func (b *LineStringBuilder) Finish() *LineStringArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &LineStringArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantLineString, b.dim, b.coordType, b.metadata),
			length:   b.geomOffsets.len(),
			nulls:    nulls,
		},
		coords:      b.coords.finish(),
		geomOffsets: b.geomOffsets,
	}
}

type lineAsLineString struct{ l LineTrait }

func (lineAsLineString) GeoArrowVariant() Variant { return VariantLineString }
func (v lineAsLineString) GeoArrowDimension() Dimension {
	return v.l.GeoArrowDimension()
}
func (lineAsLineString) NumCoords() int { return 2 }
func (v lineAsLineString) CoordAt(i int) Coord {
	if i == 0 {
		return v.l.Start()
	}
	return v.l.End()
}
