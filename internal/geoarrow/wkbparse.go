package geoarrow

import (
	"github.com/paulmach/orb/encoding/wkb"
)

// ParseWKB decodes a single WKB payload into a GeometryTrait view,
// delegating scalar decode to orb's wkb package (spec §6.4's parse_wkb
// contract). Geometry codes orb does not model - curves, surfaces,
// TINs - surface as a ParseError.
func ParseWKB(data []byte) (AnyGeometryTrait, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return AnyGeometryTrait{}, wrapError(ParseError, err, "invalid WKB payload")
	}
	return WrapOrb(g).Any(), nil
}

// ParseWKBArray materializes a native array from a WKBArray by
// decoding every non-null row and routing it through a GeometryBuilder
// (spec §4.5's WKB/WKT -> native cast).
func ParseWKBArray(a *WKBArray, md *Metadata) (*GeometryArray, error) {
	b := NewGeometryBuilder(DimXY, CoordSeparated, md)
	for i := 0; i < a.Len(); i++ {
		raw, ok := a.Get(i)
		if !ok {
			b.PushNull()
			continue
		}
		g, err := ParseWKB(raw)
		if err != nil {
			return nil, err
		}
		if err := b.PushGeometry(g); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}

// ToWKB encodes a single geometry trait view back to WKB, the inverse
// of ParseWKB, used by round-trip tests (spec §8 property 12).
func ToWKB(g AnyGeometryTrait) ([]byte, error) {
	orbGeom, err := toOrb(g)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(orbGeom)
}
