package geoarrow

// Capacity records enumerate every child count a builder needs to
// allocate up front, enabling the zero-reallocation construction mode
// of spec §4.4 (with_capacity_from_iter).

type PointCapacity struct {
	Rows int
}

func (c *PointCapacity) AddGeometry(g PointTrait) {
	c.Rows++
}
func (c *PointCapacity) AddNull() { c.Rows++ }

type LineStringCapacity struct {
	Rows   int
	Coords int
}

func (c *LineStringCapacity) AddGeometry(g LineStringTrait) {
	c.Rows++
	c.Coords += g.NumCoords()
}
func (c *LineStringCapacity) AddNull() { c.Rows++ }

type PolygonCapacity struct {
	Rows   int
	Rings  int
	Coords int
}

func (c *PolygonCapacity) AddGeometry(g PolygonTrait) {
	c.Rows++
	c.Rings += g.NumRings()
	for i := 0; i < g.NumRings(); i++ {
		c.Coords += g.RingAt(i).NumCoords()
	}
}
func (c *PolygonCapacity) AddNull() { c.Rows++ }

type MultiPointCapacity struct {
	Rows   int
	Coords int
}

func (c *MultiPointCapacity) AddGeometry(g MultiPointTrait) {
	c.Rows++
	c.Coords += g.NumPoints()
}
func (c *MultiPointCapacity) AddNull() { c.Rows++ }

type MultiLineStringCapacity struct {
	Rows   int
	Lines  int
	Coords int
}

func (c *MultiLineStringCapacity) AddGeometry(g MultiLineStringTrait) {
	c.Rows++
	c.Lines += g.NumLineStrings()
	for i := 0; i < g.NumLineStrings(); i++ {
		c.Coords += g.LineStringAt(i).NumCoords()
	}
}
func (c *MultiLineStringCapacity) AddNull() { c.Rows++ }

type MultiPolygonCapacity struct {
	Rows   int
	Polys  int
	Rings  int
	Coords int
}

func (c *MultiPolygonCapacity) AddGeometry(g MultiPolygonTrait) {
	c.Rows++
	c.Polys += g.NumPolygons()
	for i := 0; i < g.NumPolygons(); i++ {
		poly := g.PolygonAt(i)
		c.Rings += poly.NumRings()
		for j := 0; j < poly.NumRings(); j++ {
			c.Coords += poly.RingAt(j).NumCoords()
		}
	}
}
func (c *MultiPolygonCapacity) AddNull() { c.Rows++ }

type MixedCapacity struct {
	Rows            int
	Point           PointCapacity
	LineString      LineStringCapacity
	Polygon         PolygonCapacity
	MultiPoint      MultiPointCapacity
	MultiLineString MultiLineStringCapacity
	MultiPolygon    MultiPolygonCapacity
}

func (c *MixedCapacity) AddGeometry(g AnyGeometryTrait) {
	c.Rows++
	switch {
	case g.Point != nil:
		c.Point.AddGeometry(g.Point)
	case g.LineString != nil:
		c.LineString.AddGeometry(g.LineString)
	case g.Polygon != nil:
		c.Polygon.AddGeometry(g.Polygon)
	case g.MultiPoint != nil:
		c.MultiPoint.AddGeometry(g.MultiPoint)
	case g.MultiLineString != nil:
		c.MultiLineString.AddGeometry(g.MultiLineString)
	case g.MultiPolygon != nil:
		c.MultiPolygon.AddGeometry(g.MultiPolygon)
	}
}

type GeometryCollectionCapacity struct {
	Rows  int
	Geoms int
	Mixed MixedCapacity
}

func (c *GeometryCollectionCapacity) AddGeometry(g GeometryCollectionTrait) {
	c.Rows++
	n := g.NumGeometries()
	c.Geoms += n
	for i := 0; i < n; i++ {
		c.Mixed.AddGeometry(g.GeometryAt(i))
	}
}
func (c *GeometryCollectionCapacity) AddNull() { c.Rows++ }

type RectCapacity struct {
	Rows int
}

func (c *RectCapacity) AddGeometry(g RectTrait) { c.Rows++ }
func (c *RectCapacity) AddNull()                { c.Rows++ }

type BinaryCapacity struct {
	Rows  int
	Bytes int
}

func (c *BinaryCapacity) Add(n int) {
	c.Rows++
	c.Bytes += n
}
func (c *BinaryCapacity) AddNull() { c.Rows++ }
