package geoarrow_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/planetlabs/gpq/internal/geoarrow"
	"github.com/stretchr/testify/require"
)

// WKB encode/decode round trip: parse(encode(A)) == A for a native
// geometry in XY (spec §8 property 12).
func TestWKBRoundTripXY(t *testing.T) {
	original := geoarrow.WrapOrb(orb.LineString{{1, 2}, {3, 4}, {5, 6}}).Any()

	encoded, err := geoarrow.ToWKB(original)
	require.NoError(t, err)

	decoded, err := geoarrow.ParseWKB(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded.LineString)
	require.Equal(t, original.LineString.NumCoords(), decoded.LineString.NumCoords())
	for i := 0; i < original.LineString.NumCoords(); i++ {
		require.Equal(t, original.LineString.CoordAt(i).X(), decoded.LineString.CoordAt(i).X())
		require.Equal(t, original.LineString.CoordAt(i).Y(), decoded.LineString.CoordAt(i).Y())
	}
}

func TestWKBRoundTripPolygon(t *testing.T) {
	original := geoarrow.WrapOrb(orb.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
	}).Any()

	encoded, err := geoarrow.ToWKB(original)
	require.NoError(t, err)
	decoded, err := geoarrow.ParseWKB(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded.Polygon)
	require.Equal(t, original.Polygon.NumRings(), decoded.Polygon.NumRings())
	require.Equal(t, original.Polygon.RingAt(0).NumCoords(), decoded.Polygon.RingAt(0).NumCoords())
}

func TestParseWKBRejectsGarbage(t *testing.T) {
	_, err := geoarrow.ParseWKB([]byte{0xff, 0x00, 0x01})
	require.Error(t, err)
}
