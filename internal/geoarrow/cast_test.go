package geoarrow_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/planetlabs/gpq/internal/geoarrow"
	"github.com/stretchr/testify/require"
)

// S3 — downcast of MultiPoint->Point: every row has exactly one
// coordinate, so downcast narrows to a Point array of the same length
// and null_count, same coords (spec §8 S3).
func TestDowncastMultiPointToPointScenarioS3(t *testing.T) {
	b := geoarrow.NewMultiPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	for _, p := range []orb.Point{{1, 1}, {2, 2}, {3, 3}} {
		require.NoError(t, b.PushMultiPoint(geoarrow.WrapOrb(orb.MultiPoint{p}).Any().MultiPoint))
	}
	multi := b.Finish()

	narrowed, err := geoarrow.Downcast(multi)
	require.NoError(t, err)
	point, ok := narrowed.(*geoarrow.PointArray)
	require.True(t, ok, "downcast result should be a PointArray")
	require.Equal(t, 3, point.Len())
	require.Equal(t, 0, point.NullCount())
	for i, want := range []orb.Point{{1, 1}, {2, 2}, {3, 3}} {
		v := point.Value(i)
		require.Equal(t, want[0], v.Coord().X())
		require.Equal(t, want[1], v.Coord().Y())
	}
}

func TestDowncastRejectsMultiChildRows(t *testing.T) {
	b := geoarrow.NewMultiPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	require.NoError(t, b.PushMultiPoint(geoarrow.WrapOrb(orb.MultiPoint{{1, 1}, {2, 2}}).Any().MultiPoint))
	multi := b.Finish()

	_, err := geoarrow.Downcast(multi)
	require.Error(t, err)
}

// Downcast idempotence (spec §8 property 7).
func TestDowncastIdempotent(t *testing.T) {
	b := geoarrow.NewMultiPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	require.NoError(t, b.PushMultiPoint(geoarrow.WrapOrb(orb.MultiPoint{{1, 1}}).Any().MultiPoint))
	multi := b.Finish()

	once, err := geoarrow.Downcast(multi)
	require.NoError(t, err)
	twice, err := geoarrow.Downcast(once)
	require.NoError(t, err)
	require.Equal(t, once.DataType(), twice.DataType())
	require.Equal(t, once.Len(), twice.Len())
}

// Cast round-trip through Geometry and back preserves the array (spec
// §8 property 6).
func TestCastRoundTripThroughGeometry(t *testing.T) {
	b := geoarrow.NewPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	b.PushPoint(geoarrow.WrapOrb(orb.Point{7, 9}).Any().Point)
	points := b.Finish()

	geomType := geoarrow.NewType(geoarrow.VariantGeometry, geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	wide, err := geoarrow.Cast(points, geomType)
	require.NoError(t, err)

	back, err := geoarrow.Cast(wide, points.DataType())
	require.NoError(t, err)
	narrowed, ok := back.(*geoarrow.PointArray)
	require.True(t, ok)
	require.Equal(t, 1, narrowed.Len())
	require.Equal(t, 7.0, narrowed.Value(0).Coord().X())
	require.Equal(t, 9.0, narrowed.Value(0).Coord().Y())
}

func TestCastPointToMultiPointAndBack(t *testing.T) {
	b := geoarrow.NewPointBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	b.PushPoint(geoarrow.WrapOrb(orb.Point{4, 5}).Any().Point)
	points := b.Finish()

	multiType := geoarrow.NewType(geoarrow.VariantMultiPoint, geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	wide, err := geoarrow.Cast(points, multiType)
	require.NoError(t, err)
	require.Equal(t, geoarrow.VariantMultiPoint, wide.DataType().Variant)

	narrow, err := geoarrow.Cast(wide, points.DataType())
	require.NoError(t, err)
	require.Equal(t, geoarrow.VariantPoint, narrow.DataType().Variant)
	require.Equal(t, 1, narrow.Len())
}

// Downcast of a GeometryCollection holding exactly one child per row
// delegates to the inner array's downcast (spec §4.5): a collection of
// single-Point rows narrows all the way to a PointArray, not just to a
// Geometry union.
func TestDowncastGeometryCollectionDelegatesToInnerDowncast(t *testing.T) {
	b := geoarrow.NewGeometryCollectionBuilder(geoarrow.DimXY, geoarrow.CoordInterleaved, nil)
	for _, p := range []orb.Point{{1, 1}, {2, 2}} {
		require.NoError(t, b.PushCollection(geoarrow.WrapOrb(orb.Collection{p}).Any().GeometryCollection))
	}
	collection := b.Finish()

	narrowed, err := geoarrow.Downcast(collection)
	require.NoError(t, err)
	point, ok := narrowed.(*geoarrow.PointArray)
	require.True(t, ok, "downcast result should be a PointArray")
	require.Equal(t, 2, point.Len())
	for i, want := range []orb.Point{{1, 1}, {2, 2}} {
		v := point.Value(i)
		require.Equal(t, want[0], v.Coord().X())
		require.Equal(t, want[1], v.Coord().Y())
	}
}

// ResolveCommonType — S6's three chunk-type scenarios (spec §8 S6,
// §4.5 6-step resolution).
func TestResolveCommonTypeScenarioS6(t *testing.T) {
	t.Run("point and multipoint resolve to multipoint", func(t *testing.T) {
		types := []geoarrow.GeoArrowType{
			geoarrow.NewType(geoarrow.VariantPoint, geoarrow.DimXY, geoarrow.CoordInterleaved, nil),
			geoarrow.NewType(geoarrow.VariantMultiPoint, geoarrow.DimXY, geoarrow.CoordInterleaved, nil),
		}
		resolved, err := geoarrow.ResolveCommonType(types)
		require.NoError(t, err)
		require.Equal(t, geoarrow.VariantMultiPoint, resolved.Variant)
		require.Equal(t, geoarrow.DimXY, resolved.Dimension)
	})

	t.Run("linestring and polygon resolve to geometry", func(t *testing.T) {
		types := []geoarrow.GeoArrowType{
			geoarrow.NewType(geoarrow.VariantLineString, geoarrow.DimXY, geoarrow.CoordInterleaved, nil),
			geoarrow.NewType(geoarrow.VariantPolygon, geoarrow.DimXY, geoarrow.CoordInterleaved, nil),
		}
		resolved, err := geoarrow.ResolveCommonType(types)
		require.NoError(t, err)
		require.Equal(t, geoarrow.VariantGeometry, resolved.Variant)
	})

	t.Run("differing dimensions resolve to geometry", func(t *testing.T) {
		types := []geoarrow.GeoArrowType{
			geoarrow.NewType(geoarrow.VariantPoint, geoarrow.DimXY, geoarrow.CoordInterleaved, nil),
			geoarrow.NewType(geoarrow.VariantPoint, geoarrow.DimXYZ, geoarrow.CoordInterleaved, nil),
		}
		resolved, err := geoarrow.ResolveCommonType(types)
		require.NoError(t, err)
		require.Equal(t, geoarrow.VariantGeometry, resolved.Variant)
	})
}

func TestResolveCommonTypeIdenticalPassesThrough(t *testing.T) {
	same := geoarrow.NewType(geoarrow.VariantPolygon, geoarrow.DimXYZ, geoarrow.CoordSeparated, nil)
	resolved, err := geoarrow.ResolveCommonType([]geoarrow.GeoArrowType{same, same, same})
	require.NoError(t, err)
	require.Equal(t, same, resolved)
}

func TestResolveCommonTypeRejectsEmptyInput(t *testing.T) {
	_, err := geoarrow.ResolveCommonType(nil)
	require.Error(t, err)
}
