package geoarrow

// RectArray stores a lower and upper coordinate per row, as two
// separated coord buffers of identical length and dimension (spec §3).
// No lower<=upper invariant is enforced at this level.
type RectArray struct {
	arrayBase
	lower *CoordBuffer
	upper *CoordBuffer
}

var _ Array = (*RectArray)(nil)

func (a *RectArray) Slice(offset, length int) Array {
	return &RectArray{
		arrayBase: a.sliceBase(offset, length),
		lower:     a.lower.Slice(offset, length),
		upper:     a.upper.Slice(offset, length),
	}
}

func (a *RectArray) Get(i int) (rectValue, bool) {
	if a.IsNull(i) {
		return rectValue{}, false
	}
	return a.Value(i), true
}

func (a *RectArray) Value(i int) rectValue {
	return rectValue{lower: a.lower.Get(i), upper: a.upper.Get(i)}
}

type rectValue struct{ lower, upper Coord }

func (rectValue) GeoArrowVariant() Variant       { return VariantRect }
func (v rectValue) GeoArrowDimension() Dimension { return v.lower.Dim() }
func (v rectValue) Lower() Coord                 { return v.lower }
func (v rectValue) Upper() Coord                 { return v.upper }

// Intersects implements the standard open-half-plane overlap test
// of spec §4.7 / §8 property 9, restricted to the XY plane (the
// bbox-pruning path is always 2-D per spec §4.7).
func (v rectValue) Intersects(other rectValue) bool {
	return !(v.upper.X() < other.lower.X() || v.upper.Y() < other.lower.Y() ||
		v.lower.X() > other.upper.X() || v.lower.Y() > other.upper.Y())
}

// NewRect2D is a convenience constructor for a single XY bounding box,
// used throughout the GeoParquet reader core.
func NewRect2D(xmin, ymin, xmax, ymax float64) rectValue {
	return rectValue{
		lower: Coord{dim: DimXY, values: [4]float64{xmin, ymin, 0, 0}},
		upper: Coord{dim: DimXY, values: [4]float64{xmax, ymax, 0, 0}},
	}
}

// RectBuilder constructs a RectArray (spec §4.4).
type RectBuilder struct {
	dim      Dimension
	metadata *Metadata
	lower    *coordBuilder
	upper    *coordBuilder
	nulls    *nullBitmap
	allValid bool
}

func NewRectBuilder(dim Dimension, md *Metadata) *RectBuilder {
	return &RectBuilder{
		dim: dim, metadata: md,
		lower:    newCoordBuilder(dim, CoordSeparated, 0),
		upper:    newCoordBuilder(dim, CoordSeparated, 0),
		nulls:    newNullBitmap(0),
		allValid: true,
	}
}

func NewRectBuilderWithCapacity(dim Dimension, md *Metadata, cap RectCapacity) *RectBuilder {
	b := NewRectBuilder(dim, md)
	b.lower.reserve(cap.Rows)
	b.upper.reserve(cap.Rows)
	return b
}

func (b *RectBuilder) PushRect(g RectTrait) {
	if g == nil {
		b.PushNull()
		return
	}
	b.lower.pushCoord(g.Lower())
	b.upper.pushCoord(g.Upper())
	b.nulls.appendValid(true)
}

func (b *RectBuilder) PushNull() {
	var zero [4]float64
	b.lower.push(zero[:b.dim.Width()]...)
	b.upper.push(zero[:b.dim.Width()]...)
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *RectBuilder) PushGeometry(g AnyGeometryTrait) error {
	if g.Rect == nil {
		return newError(TypeMismatch, "RectBuilder cannot absorb %v", g)
	}
	b.PushRect(g.Rect)
	return nil
}

func (b *RectBuilder) Len() int { return b.lower.len() }

func (b *RectBuilder) Finish() *RectArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &RectArray{
		arrayBase: arrayBase{
			dataType: NewType(VariantRect, b.dim, CoordSeparated, b.metadata),
			length:   b.lower.len(),
			nulls:    nulls,
		},
		lower: b.lower.finish(),
		upper: b.upper.finish(),
	}
}
