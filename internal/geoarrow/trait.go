package geoarrow

import "github.com/paulmach/orb"

// GeometryTrait is the tagged accessor builders consume (spec §6.2).
// Concrete implementations include zero-copy scalar views over the
// columnar arrays (see array_*.go's Get/value methods) and the orb
// adaptor below, which is the system-provided adaptor over the pack's
// one real in-memory geometry library.
type GeometryTrait interface {
	GeoArrowVariant() Variant
	GeoArrowDimension() Dimension
}

type PointTrait interface {
	GeometryTrait
	Coord() Coord
}

type LineStringTrait interface {
	GeometryTrait
	NumCoords() int
	CoordAt(i int) Coord
}

type PolygonTrait interface {
	GeometryTrait
	NumRings() int
	RingAt(i int) LineStringTrait
}

type MultiPointTrait interface {
	GeometryTrait
	NumPoints() int
	PointAt(i int) PointTrait
}

type MultiLineStringTrait interface {
	GeometryTrait
	NumLineStrings() int
	LineStringAt(i int) LineStringTrait
}

type MultiPolygonTrait interface {
	GeometryTrait
	NumPolygons() int
	PolygonAt(i int) PolygonTrait
}

type GeometryCollectionTrait interface {
	GeometryTrait
	NumGeometries() int
	GeometryAt(i int) AnyGeometryTrait
}

type RectTrait interface {
	GeometryTrait
	Lower() Coord
	Upper() Coord
}

// LineTrait is a 2-point line segment, as distinguished in some
// upstream geometry trait hierarchies (spec §6.2); it widens trivially
// to LineStringTrait.
type LineTrait interface {
	GeometryTrait
	Start() Coord
	End() Coord
}

// TriangleTrait is a 3-or-4-coordinate closed ring, widening to
// PolygonTrait with a single exterior ring.
type TriangleTrait interface {
	GeometryTrait
	CornerAt(i int) Coord
}

// AnyGeometryTrait is the sum type a dispatcher switches over: exactly
// one of the typed accessors below is non-nil.
type AnyGeometryTrait struct {
	Point              PointTrait
	LineString         LineStringTrait
	Polygon            PolygonTrait
	MultiPoint         MultiPointTrait
	MultiLineString    MultiLineStringTrait
	MultiPolygon       MultiPolygonTrait
	GeometryCollection GeometryCollectionTrait
	Rect               RectTrait
	Line               LineTrait
	Triangle           TriangleTrait
}

// --- orb adaptor -----------------------------------------------------

// OrbGeometry wraps an orb.Geometry as a GeometryTrait tree, the
// system-provided adaptor over common in-memory geometry types
// (spec §6.2). orb has no Z/M support, so every orb-sourced geometry
// reports DimXY.
type OrbGeometry struct {
	g orb.Geometry
}

func WrapOrb(g orb.Geometry) *OrbGeometry { return &OrbGeometry{g: g} }

func (o *OrbGeometry) Any() AnyGeometryTrait {
	switch v := o.g.(type) {
	case orb.Point:
		return AnyGeometryTrait{Point: orbPoint{v}}
	case orb.LineString:
		return AnyGeometryTrait{LineString: orbLineString{v}}
	case orb.Polygon:
		return AnyGeometryTrait{Polygon: orbPolygon{v}}
	case orb.MultiPoint:
		return AnyGeometryTrait{MultiPoint: orbMultiPoint{v}}
	case orb.MultiLineString:
		return AnyGeometryTrait{MultiLineString: orbMultiLineString{v}}
	case orb.MultiPolygon:
		return AnyGeometryTrait{MultiPolygon: orbMultiPolygon{v}}
	case orb.Collection:
		return AnyGeometryTrait{GeometryCollection: orbCollection{v}}
	case orb.Bound:
		return AnyGeometryTrait{Rect: orbBound{v}}
	}
	return AnyGeometryTrait{}
}

func coordXY(p orb.Point) Coord {
	return Coord{dim: DimXY, values: [4]float64{p[0], p[1], 0, 0}}
}

type orbPoint struct{ p orb.Point }

func (orbPoint) GeoArrowVariant() Variant     { return VariantPoint }
func (orbPoint) GeoArrowDimension() Dimension { return DimXY }
func (o orbPoint) Coord() Coord               { return coordXY(o.p) }

type orbLineString struct{ ls orb.LineString }

func (orbLineString) GeoArrowVariant() Variant     { return VariantLineString }
func (orbLineString) GeoArrowDimension() Dimension { return DimXY }
func (o orbLineString) NumCoords() int             { return len(o.ls) }
func (o orbLineString) CoordAt(i int) Coord        { return coordXY(o.ls[i]) }

type orbRing struct{ r orb.Ring }

func (orbRing) GeoArrowVariant() Variant     { return VariantLineString }
func (orbRing) GeoArrowDimension() Dimension { return DimXY }
func (o orbRing) NumCoords() int             { return len(o.r) }
func (o orbRing) CoordAt(i int) Coord        { return coordXY(o.r[i]) }

type orbPolygon struct{ p orb.Polygon }

func (orbPolygon) GeoArrowVariant() Variant     { return VariantPolygon }
func (orbPolygon) GeoArrowDimension() Dimension { return DimXY }
func (o orbPolygon) NumRings() int              { return len(o.p) }
func (o orbPolygon) RingAt(i int) LineStringTrait {
	return orbRing{o.p[i]}
}

type orbMultiPoint struct{ mp orb.MultiPoint }

func (orbMultiPoint) GeoArrowVariant() Variant     { return VariantMultiPoint }
func (orbMultiPoint) GeoArrowDimension() Dimension { return DimXY }
func (o orbMultiPoint) NumPoints() int             { return len(o.mp) }
func (o orbMultiPoint) PointAt(i int) PointTrait   { return orbPoint{o.mp[i]} }

type orbMultiLineString struct{ mls orb.MultiLineString }

func (orbMultiLineString) GeoArrowVariant() Variant     { return VariantMultiLineString }
func (orbMultiLineString) GeoArrowDimension() Dimension { return DimXY }
func (o orbMultiLineString) NumLineStrings() int        { return len(o.mls) }
func (o orbMultiLineString) LineStringAt(i int) LineStringTrait {
	return orbLineString{o.mls[i]}
}

type orbMultiPolygon struct{ mp orb.MultiPolygon }

func (orbMultiPolygon) GeoArrowVariant() Variant     { return VariantMultiPolygon }
func (orbMultiPolygon) GeoArrowDimension() Dimension { return DimXY }
func (o orbMultiPolygon) NumPolygons() int           { return len(o.mp) }
func (o orbMultiPolygon) PolygonAt(i int) PolygonTrait {
	return orbPolygon{o.mp[i]}
}

type orbCollection struct{ c orb.Collection }

func (orbCollection) GeoArrowVariant() Variant     { return VariantGeometryCollection }
func (orbCollection) GeoArrowDimension() Dimension { return DimXY }
func (o orbCollection) NumGeometries() int         { return len(o.c) }
func (o orbCollection) GeometryAt(i int) AnyGeometryTrait {
	return (&OrbGeometry{g: o.c[i]}).Any()
}

type orbBound struct{ b orb.Bound }

func (orbBound) GeoArrowVariant() Variant     { return VariantRect }
func (orbBound) GeoArrowDimension() Dimension { return DimXY }
func (o orbBound) Lower() Coord               { return coordXY(o.b.Min) }
func (o orbBound) Upper() Coord               { return coordXY(o.b.Max) }
