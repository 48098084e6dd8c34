package geoarrow_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/planetlabs/gpq/internal/geoarrow"
	"github.com/stretchr/testify/require"
)

// Bbox intersection is symmetric, reflexive, and matches the
// four-way overlap test of spec §4.7 (spec §8 property 9, S5's
// literal bboxes).
func TestRectIntersectsScenarioS5(t *testing.T) {
	rg1 := geoarrow.NewRect2D(0, 0, 10, 10)
	rg2 := geoarrow.NewRect2D(20, 20, 30, 30)
	query := geoarrow.NewRect2D(5, 5, 25, 25)

	require.True(t, rg1.Intersects(query))
	require.True(t, query.Intersects(rg1), "intersection must be symmetric")
	require.True(t, rg2.Intersects(query))
	require.True(t, rg1.Intersects(rg1), "intersection must be reflexive")

	disjointQuery := geoarrow.NewRect2D(11, 11, 19, 19)
	require.False(t, rg1.Intersects(disjointQuery))
	require.False(t, rg2.Intersects(disjointQuery))
}

// NullCount == popcount(not-valid) and is zero when the bitmap is
// absent (spec §8 property 3).
func TestNullCountMatchesValidityBitmap(t *testing.T) {
	b := geoarrow.NewPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	b.PushPoint(geoarrow.WrapOrb(orb.Point{1, 1}).Any().Point)
	b.PushPoint(geoarrow.WrapOrb(orb.Point{2, 2}).Any().Point)
	allValid := b.Finish()
	require.Equal(t, 0, allValid.NullCount())

	b2 := geoarrow.NewPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	b2.PushPoint(geoarrow.WrapOrb(orb.Point{1, 1}).Any().Point)
	b2.PushNull()
	b2.PushPoint(geoarrow.WrapOrb(orb.Point{3, 3}).Any().Point)
	withNull := b2.Finish()
	require.Equal(t, 1, withNull.NullCount())
	require.True(t, withNull.IsValid(0))
	require.True(t, withNull.IsNull(1))
	require.True(t, withNull.IsValid(2))
}

// Slicing is O(1) over shared buffers and preserves per-row values
// (spec §8 property 4).
func TestSlicePreservesValues(t *testing.T) {
	b := geoarrow.NewLineStringBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	pts := [][]orb.Point{
		{{0, 0}, {1, 1}},
		{{2, 2}, {3, 3}, {4, 4}},
		{{5, 5}},
	}
	for _, ls := range pts {
		require.NoError(t, b.PushLineString(geoarrow.WrapOrb(orb.LineString(ls)).Any().LineString))
	}
	full := b.Finish()

	sliced := full.Slice(1, 2)
	require.Equal(t, 2, sliced.Len())

	slicedArr := sliced.(*geoarrow.LineStringArray)
	for i := 0; i < 2; i++ {
		want := full.Value(1 + i)
		got := slicedArr.Value(i)
		require.Equal(t, want.NumCoords(), got.NumCoords())
		for c := 0; c < want.NumCoords(); c++ {
			require.Equal(t, want.CoordAt(c).X(), got.CoordAt(c).X())
			require.Equal(t, want.CoordAt(c).Y(), got.CoordAt(c).Y())
		}
	}
}

// Coord type conversion is an involution up to bit-exact equality
// (spec §8 property 5).
func TestCoordTypeConversionInvolution(t *testing.T) {
	separated := geoarrow.NewPointBuilder(geoarrow.DimXY, geoarrow.CoordSeparated, nil)
	for _, p := range []orb.Point{{1, 2}, {3, 4}, {5, 6}} {
		separated.PushPoint(geoarrow.WrapOrb(p).Any().Point)
	}
	original := separated.Finish()

	interleaved, err := geoarrow.Cast(original, geoarrow.NewType(geoarrow.VariantPoint, geoarrow.DimXY, geoarrow.CoordInterleaved, nil))
	require.NoError(t, err)
	back, err := geoarrow.Cast(interleaved, geoarrow.NewType(geoarrow.VariantPoint, geoarrow.DimXY, geoarrow.CoordSeparated, nil))
	require.NoError(t, err)

	origArr := original
	backArr := back.(*geoarrow.PointArray)
	require.Equal(t, origArr.Len(), backArr.Len())
	for i := 0; i < origArr.Len(); i++ {
		require.Equal(t, origArr.Value(i).Coord().X(), backArr.Value(i).Coord().X())
		require.Equal(t, origArr.Value(i).Coord().Y(), backArr.Value(i).Coord().Y())
	}
}
