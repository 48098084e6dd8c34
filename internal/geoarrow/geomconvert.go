package geoarrow

import "github.com/paulmach/orb"

// toOrb lowers a GeometryTrait view to an orb.Geometry, the inverse of
// WrapOrb/OrbGeometry.Any. orb has no Z/M axes, so any Z/M component is
// dropped (spec §6.2's orb adaptor is XY-only).
func toOrb(g AnyGeometryTrait) (orb.Geometry, error) {
	switch {
	case g.Point != nil:
		return orbPointOf(g.Point), nil
	case g.LineString != nil:
		return orbLineStringOf(g.LineString), nil
	case g.Line != nil:
		return orb.LineString{xy(g.Line.Start()), xy(g.Line.End())}, nil
	case g.Polygon != nil:
		return orbPolygonOf(g.Polygon), nil
	case g.Triangle != nil:
		ring := make(orb.Ring, 4)
		for i := 0; i < 4; i++ {
			if i == 3 {
				ring[i] = xy(g.Triangle.CornerAt(0))
			} else {
				ring[i] = xy(g.Triangle.CornerAt(i))
			}
		}
		return orb.Polygon{ring}, nil
	case g.MultiPoint != nil:
		mp := make(orb.MultiPoint, g.MultiPoint.NumPoints())
		for i := range mp {
			mp[i] = orbPointOf(g.MultiPoint.PointAt(i))
		}
		return mp, nil
	case g.MultiLineString != nil:
		mls := make(orb.MultiLineString, g.MultiLineString.NumLineStrings())
		for i := range mls {
			mls[i] = orbLineStringOf(g.MultiLineString.LineStringAt(i))
		}
		return mls, nil
	case g.MultiPolygon != nil:
		mp := make(orb.MultiPolygon, g.MultiPolygon.NumPolygons())
		for i := range mp {
			mp[i] = orbPolygonOf(g.MultiPolygon.PolygonAt(i))
		}
		return mp, nil
	case g.GeometryCollection != nil:
		c := make(orb.Collection, g.GeometryCollection.NumGeometries())
		for i := range c {
			child, err := toOrb(g.GeometryCollection.GeometryAt(i))
			if err != nil {
				return nil, err
			}
			c[i] = child
		}
		return c, nil
	case g.Rect != nil:
		return orb.Bound{Min: xy(g.Rect.Lower()), Max: xy(g.Rect.Upper())}, nil
	}
	return nil, newError(TypeMismatch, "no geometry to convert")
}

func xy(c Coord) orb.Point { return orb.Point{c.X(), c.Y()} }

func orbPointOf(p PointTrait) orb.Point { return xy(p.Coord()) }

func orbLineStringOf(ls LineStringTrait) orb.LineString {
	out := make(orb.LineString, ls.NumCoords())
	for i := range out {
		out[i] = xy(ls.CoordAt(i))
	}
	return out
}

func orbRingOf(ls LineStringTrait) orb.Ring {
	out := make(orb.Ring, ls.NumCoords())
	for i := range out {
		out[i] = xy(ls.CoordAt(i))
	}
	return out
}

func orbPolygonOf(p PolygonTrait) orb.Polygon {
	out := make(orb.Polygon, p.NumRings())
	for i := range out {
		out[i] = orbRingOf(p.RingAt(i))
	}
	return out
}
