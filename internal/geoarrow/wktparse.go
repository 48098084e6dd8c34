package geoarrow

import (
	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT decodes a single WKT payload (spec §6.4's parse_wkt
// contract), delegating to orb's wkt package.
func ParseWKT(s string) (AnyGeometryTrait, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return AnyGeometryTrait{}, wrapError(ParseError, err, "invalid WKT payload")
	}
	return WrapOrb(g).Any(), nil
}

// ParseWKTArray materializes a native array from a WKTArray, the WKT
// counterpart of ParseWKBArray.
func ParseWKTArray(a *WKTArray, md *Metadata) (*GeometryArray, error) {
	b := NewGeometryBuilder(DimXY, CoordSeparated, md)
	for i := 0; i < a.Len(); i++ {
		raw, ok := a.Get(i)
		if !ok {
			b.PushNull()
			continue
		}
		g, err := ParseWKT(raw)
		if err != nil {
			return nil, err
		}
		if err := b.PushGeometry(g); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}

// ToWKT encodes a single geometry trait view back to WKT.
func ToWKT(g AnyGeometryTrait) (string, error) {
	orbGeom, err := toOrb(g)
	if err != nil {
		return "", err
	}
	return wkt.Marshal(orbGeom), nil
}
