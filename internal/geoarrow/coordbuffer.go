package geoarrow

// Coord is a dimension-tagged value holding a copy of a single
// coordinate's components, in axis order matching Dimension.Axes().
type Coord struct {
	dim    Dimension
	values [4]float64
}

func (c Coord) Dim() Dimension { return c.dim }
func (c Coord) X() float64     { return c.values[0] }
func (c Coord) Y() float64     { return c.values[1] }
func (c Coord) Z() float64     { return c.values[2] } // valid only when HasZ
func (c Coord) M() float64 {
	if c.dim == DimXYM {
		return c.values[2]
	}
	return c.values[3]
}
func (c Coord) Values() []float64 { return c.values[:c.dim.Width()] }

// CoordBuffer stores a contiguous run of coordinates for a fixed
// dimension, in either interleaved or separated layout (spec §4.1).
//
// Interleaved: buffers[0] holds one contiguous xyxy... run of length
// n*width. Separated: buffers[k] holds the k-th axis's values, each of
// length n. Slicing windows every underlying buffer by a shared
// (offset, length) pair without copying (spec §3 Lifecycle).
type CoordBuffer struct {
	dim       Dimension
	coordType CoordType
	buffers   [][]float64
	offset    int // logical row offset, in coordinates
	length    int // logical row count
}

// NewCoordBuffer wraps pre-built storage. For CoordInterleaved, pass a
// single buffer of length n*dim.Width(). For CoordSeparated, pass
// dim.Width() buffers each of length n.
func NewCoordBuffer(dim Dimension, ct CoordType, buffers [][]float64) *CoordBuffer {
	width := dim.Width()
	var n int
	switch ct {
	case CoordInterleaved:
		n = len(buffers[0]) / width
	case CoordSeparated:
		n = len(buffers[0])
	}
	return &CoordBuffer{dim: dim, coordType: ct, buffers: buffers, length: n}
}

func (c *CoordBuffer) Dim() Dimension       { return c.dim }
func (c *CoordBuffer) CoordType() CoordType { return c.coordType }
func (c *CoordBuffer) Len() int             { return c.length }

// Get returns coordinate i (logical, within the current slice window),
// copying its components out of the backing buffer(s).
func (c *CoordBuffer) Get(i int) Coord {
	width := c.dim.Width()
	out := Coord{dim: c.dim}
	row := c.offset + i
	switch c.coordType {
	case CoordInterleaved:
		base := row * width
		copy(out.values[:width], c.buffers[0][base:base+width])
	case CoordSeparated:
		for axis := 0; axis < width; axis++ {
			out.values[axis] = c.buffers[axis][row]
		}
	}
	return out
}

// Slice returns an O(1) window, sharing the same backing buffers.
func (c *CoordBuffer) Slice(offset, length int) *CoordBuffer {
	return &CoordBuffer{dim: c.dim, coordType: c.coordType, buffers: c.buffers, offset: c.offset + offset, length: length}
}

// WithCoordType copy-converts between interleaved and separated,
// preserving order, dimension, and values exactly (spec §4.1, §8 property 5).
func (c *CoordBuffer) WithCoordType(target CoordType) *CoordBuffer {
	if c.coordType == target {
		return c
	}
	width := c.dim.Width()
	switch target {
	case CoordSeparated:
		out := make([][]float64, width)
		for axis := range out {
			out[axis] = make([]float64, c.length)
		}
		for i := 0; i < c.length; i++ {
			coord := c.Get(i)
			for axis := 0; axis < width; axis++ {
				out[axis][i] = coord.values[axis]
			}
		}
		return &CoordBuffer{dim: c.dim, coordType: CoordSeparated, buffers: out, length: c.length}
	case CoordInterleaved:
		flat := make([]float64, c.length*width)
		for i := 0; i < c.length; i++ {
			coord := c.Get(i)
			copy(flat[i*width:(i+1)*width], coord.values[:width])
		}
		return &CoordBuffer{dim: c.dim, coordType: CoordInterleaved, buffers: [][]float64{flat}, length: c.length}
	}
	return c
}

// Materialize returns the logical window's own storage, starting at
// offset 0 in each buffer (used at the into_storage boundary).
func (c *CoordBuffer) Materialize() [][]float64 {
	width := c.dim.Width()
	switch c.coordType {
	case CoordInterleaved:
		base := c.offset * width
		end := (c.offset + c.length) * width
		out := make([]float64, c.length*width)
		copy(out, c.buffers[0][base:end])
		return [][]float64{out}
	case CoordSeparated:
		out := make([][]float64, width)
		for axis := 0; axis < width; axis++ {
			out[axis] = make([]float64, c.length)
			copy(out[axis], c.buffers[axis][c.offset:c.offset+c.length])
		}
		return out
	}
	return nil
}

// forceDim implements the force_dim transitions of spec §4.5's table.
// It never mutates c; it always returns new storage.
func (c *CoordBuffer) forceDim(target Dimension) *CoordBuffer {
	if target == c.dim {
		return c
	}
	sep := c.WithCoordType(CoordSeparated)
	x, y := sep.buffers[0], sep.buffers[1]
	zero := func() []float64 { return make([]float64, c.length) }

	var z, m []float64
	switch c.dim {
	case DimXYZ:
		z = sep.buffers[2]
	case DimXYM:
		m = sep.buffers[2]
	case DimXYZM:
		z, m = sep.buffers[2], sep.buffers[3]
	}

	var out [][]float64
	switch target {
	case DimXY:
		out = [][]float64{x, y}
	case DimXYZ:
		switch c.dim {
		case DimXYM:
			// XYM <-> XYZ reinterprets the third buffer, no data motion.
			out = [][]float64{x, y, m}
		default:
			if z == nil {
				z = zero()
			}
			out = [][]float64{x, y, z}
		}
	case DimXYM:
		switch c.dim {
		case DimXYZ:
			out = [][]float64{x, y, z}
		default:
			if m == nil {
				m = zero()
			}
			out = [][]float64{x, y, m}
		}
	case DimXYZM:
		if z == nil {
			z = zero()
		}
		if m == nil {
			m = zero()
		}
		out = [][]float64{x, y, z, m}
	}
	result := &CoordBuffer{dim: target, coordType: CoordSeparated, buffers: out, length: c.length}
	return result.WithCoordType(c.coordType)
}
