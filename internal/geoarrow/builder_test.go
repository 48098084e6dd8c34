package geoarrow

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// S1 — LineString builder: two rows, the second offset must record
// the running coordinate count and no validity bitmap is materialized
// when every row is valid (spec §8 S1).
func TestLineStringBuilderScenarioS1(t *testing.T) {
	b := NewLineStringBuilder(DimXY, CoordInterleaved, nil)
	require.NoError(t, b.PushLineString(WrapOrb(orb.LineString{{0, 0}, {1, 1}, {2, 2}}).Any().LineString))
	require.NoError(t, b.PushLineString(WrapOrb(orb.LineString{{10, 10}, {20, 20}}).Any().LineString))
	arr := b.Finish()

	require.Equal(t, 2, arr.Len())
	require.Equal(t, 0, arr.NullCount())
	require.Nil(t, arr.nulls)
	require.Equal(t, []int32{0, 3, 5}, arr.geomOffsets.materialize())
	require.Equal(t, []float64{0, 0, 1, 1, 2, 2, 10, 10, 20, 20}, arr.coords.Materialize()[0])
}

// S2 — Polygon with a null row: geom_offsets duplicates the middle
// entry for the null row, ring_offsets/coords skip it entirely, and
// the validity bitmap reads 1,0,1 (spec §8 S2).
func TestPolygonBuilderScenarioS2(t *testing.T) {
	b := NewPolygonBuilder(DimXY, CoordInterleaved, nil)

	exterior := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	require.NoError(t, b.PushPolygon(WrapOrb(orb.Polygon{exterior}).Any().Polygon))
	b.PushNull()
	withHole := orb.Polygon{
		{{10, 10}, {14, 10}, {14, 14}, {10, 14}, {10, 10}},
		{{11, 11}, {13, 11}, {13, 13}, {11, 13}, {11, 11}},
	}
	require.NoError(t, b.PushPolygon(WrapOrb(withHole).Any().Polygon))

	arr := b.Finish()
	require.Equal(t, 3, arr.Len())
	require.Equal(t, []int32{0, 1, 1, 3}, arr.geomOffsets.materialize())
	require.Equal(t, []int32{0, 5, 10, 15}, arr.ringOffsets.materialize())
	require.Equal(t, 15, arr.coords.Len())

	require.True(t, arr.IsValid(0))
	require.False(t, arr.IsValid(1))
	require.True(t, arr.IsValid(2))
	require.Equal(t, 1, arr.NullCount())
}

// A null row at the outermost level consumes no child slot at any
// deeper level: only geom_offsets (the per-row offset) gains an entry
// for the null row, since polygon/ring offsets are per-child, not
// per-row, and this null row contributes no children (spec §3, §8
// property 2).
func TestPushNullAddsOnlyOuterOffset(t *testing.T) {
	b := NewMultiPolygonBuilder(DimXY, CoordInterleaved, nil)
	b.PushNull()
	arr := b.Finish()
	require.Equal(t, 1, arr.Len())
	require.True(t, arr.IsNull(0))
	require.Equal(t, []int32{0, 0}, arr.geomOffsets.materialize())
	require.Equal(t, []int32{0}, arr.polygonOffsets.materialize())
	require.Equal(t, []int32{0}, arr.ringOffsets.materialize())
	require.Equal(t, 0, arr.coords.Len())
}

type literalPoint struct {
	dim    Dimension
	values [4]float64
}

func (literalPoint) GeoArrowVariant() Variant       { return VariantPoint }
func (p literalPoint) GeoArrowDimension() Dimension { return p.dim }
func (p literalPoint) Coord() Coord                 { return Coord{dim: p.dim, values: p.values} }

// S4 — dimension forcing on Point: XYZ(separated) x=[1,2] y=[3,4]
// z=[5,6] forced down to XY drops Z, and forced up to XYZM from the
// original pads a zero M (spec §8 S4).
func TestForceDimScenarioS4(t *testing.T) {
	b := NewPointBuilder(DimXYZ, CoordSeparated, nil)
	b.PushPoint(literalPoint{dim: DimXYZ, values: [4]float64{1, 3, 5, 0}})
	b.PushPoint(literalPoint{dim: DimXYZ, values: [4]float64{2, 4, 6, 0}})
	original := b.Finish()

	toXY, err := Cast(original, NewType(VariantPoint, DimXY, CoordSeparated, nil))
	require.NoError(t, err)
	xyArr := toXY.(*PointArray)
	require.Equal(t, 1.0, xyArr.Value(0).Coord().X())
	require.Equal(t, 3.0, xyArr.Value(0).Coord().Y())
	require.Equal(t, 2.0, xyArr.Value(1).Coord().X())
	require.Equal(t, 4.0, xyArr.Value(1).Coord().Y())

	toXYZM, err := Cast(original, NewType(VariantPoint, DimXYZM, CoordSeparated, nil))
	require.NoError(t, err)
	xyzmArr := toXYZM.(*PointArray)
	c0 := xyzmArr.Value(0).Coord()
	require.Equal(t, [4]float64{1, 3, 5, 0}, [4]float64{c0.X(), c0.Y(), c0.Z(), c0.M()})
	c1 := xyzmArr.Value(1).Coord()
	require.Equal(t, [4]float64{2, 4, 6, 0}, [4]float64{c1.X(), c1.Y(), c1.Z(), c1.M()})
}

// Dimension up/down round trip is an identity when the higher-dim
// conversion pads with zeros (spec §8 property 8).
func TestForceDimRoundTrip(t *testing.T) {
	b := NewPointBuilder(DimXY, CoordSeparated, nil)
	b.PushPoint(literalPoint{dim: DimXY, values: [4]float64{9, 11, 0, 0}})
	original := b.Finish()

	up, err := forceDimArray(original, DimXYZM)
	require.NoError(t, err)
	down, err := forceDimArray(up, DimXY)
	require.NoError(t, err)

	downArr := down.(*PointArray)
	require.Equal(t, 9.0, downArr.Value(0).Coord().X())
	require.Equal(t, 11.0, downArr.Value(0).Coord().Y())
}

// Offset buffer invariant (spec §8 property 1): offsets[0]=0,
// non-decreasing, offsets[len] == len(child).
func TestOffsetBufferInvariant(t *testing.T) {
	b := NewLineStringBuilder(DimXY, CoordInterleaved, nil)
	require.NoError(t, b.PushLineString(WrapOrb(orb.LineString{{0, 0}, {1, 1}}).Any().LineString))
	require.NoError(t, b.PushLineString(WrapOrb(orb.LineString{{2, 2}, {3, 3}, {4, 4}}).Any().LineString))
	arr := b.Finish()

	offsets := arr.geomOffsets.materialize()
	require.Equal(t, int32(0), offsets[0])
	for i := 1; i < len(offsets); i++ {
		require.GreaterOrEqual(t, offsets[i], offsets[i-1])
	}
	require.Equal(t, int32(arr.coords.Len()), offsets[len(offsets)-1])
}
