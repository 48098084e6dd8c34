package geoarrow

// Cast converts an Array to a target GeoArrowType, implementing spec
// §4.5's table: widening single-child Multi* arrays, narrowing
// single-child Multi* back to their scalar counterpart, promoting any
// native variant to the dynamic Geometry union, narrowing Geometry to
// a concrete variant (failing if a row does not match), Mixed <->
// GeometryCollection, and dimension coercion via force_dim.
func Cast(a Array, target GeoArrowType) (Array, error) {
	if a.DataType().SameShape(target) && a.DataType().CoordType == target.CoordType {
		return a, nil
	}
	if a.DataType().Dimension != target.Dimension {
		coerced, err := forceDimArray(a, target.Dimension)
		if err != nil {
			return nil, err
		}
		a = coerced
	}
	if a.DataType().Variant == target.Variant {
		return withCoordType(a, target.CoordType)
	}
	switch target.Variant {
	case VariantMultiPoint:
		return castToMulti(a, target)
	case VariantMultiLineString:
		return castToMulti(a, target)
	case VariantMultiPolygon:
		return castToMulti(a, target)
	case VariantPoint, VariantLineString, VariantPolygon:
		narrowed, err := Downcast(a)
		if err != nil {
			return nil, err
		}
		if narrowed.DataType().Variant != target.Variant {
			return nil, newError(TypeMismatch, "cannot cast %s to %s", a.DataType(), target)
		}
		return narrowed, nil
	case VariantGeometry:
		return castToGeometry(a, target)
	case VariantGeometryCollection:
		return castToCollection(a, target)
	}
	return nil, newError(TypeMismatch, "unsupported cast from %s to %s", a.DataType(), target)
}

func withCoordType(a Array, ct CoordType) (Array, error) {
	if a.DataType().CoordType == ct {
		return a, nil
	}
	switch v := a.(type) {
	case *PointArray:
		return &PointArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct)}, nil
	case *LineStringArray:
		return &LineStringArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct), geomOffsets: v.geomOffsets}, nil
	case *PolygonArray:
		return &PolygonArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct), ringOffsets: v.ringOffsets, geomOffsets: v.geomOffsets}, nil
	case *MultiPointArray:
		return &MultiPointArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct), geomOffsets: v.geomOffsets}, nil
	case *MultiLineStringArray:
		return &MultiLineStringArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct), ringOffsets: v.ringOffsets, geomOffsets: v.geomOffsets}, nil
	case *MultiPolygonArray:
		return &MultiPolygonArray{arrayBase: arrayBase{dataType: v.dataType.WithCoordType(ct), length: v.length, nulls: v.nulls}, coords: v.coords.WithCoordType(ct), ringOffsets: v.ringOffsets, polygonOffsets: v.polygonOffsets, geomOffsets: v.geomOffsets}, nil
	}
	return a, nil
}

// forceDimArray rewrites every variant's coordinate buffer(s) to a new
// dimension, preserving everything else about the array's structure
// (spec §4.5 force_dim table).
func forceDimArray(a Array, dim Dimension) (Array, error) {
	switch v := a.(type) {
	case *PointArray:
		return &PointArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim)}, nil
	case *LineStringArray:
		return &LineStringArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim), geomOffsets: v.geomOffsets}, nil
	case *PolygonArray:
		return &PolygonArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim), ringOffsets: v.ringOffsets, geomOffsets: v.geomOffsets}, nil
	case *MultiPointArray:
		return &MultiPointArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim), geomOffsets: v.geomOffsets}, nil
	case *MultiLineStringArray:
		return &MultiLineStringArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim), ringOffsets: v.ringOffsets, geomOffsets: v.geomOffsets}, nil
	case *MultiPolygonArray:
		return &MultiPolygonArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, coords: v.coords.forceDim(dim), ringOffsets: v.ringOffsets, polygonOffsets: v.polygonOffsets, geomOffsets: v.geomOffsets}, nil
	case *RectArray:
		return &RectArray{arrayBase: arrayBase{dataType: v.dataType.WithDimension(dim), length: v.length, nulls: v.nulls}, lower: v.lower.forceDim(dim), upper: v.upper.forceDim(dim)}, nil
	}
	return nil, newError(TypeMismatch, "force_dim does not apply to %s", a.DataType())
}

// castToMulti widens Point->MultiPoint, LineString->MultiLineString,
// Polygon->MultiPolygon by rebuilding with each row as a single child
// (spec §4.5's documented widening example).
func castToMulti(a Array, target GeoArrowType) (Array, error) {
	switch v := a.(type) {
	case *PointArray:
		b := NewMultiPointBuilderWithCapacity(target.Dimension, target.CoordType, target.Metadata, MultiPointCapacity{Rows: v.Len(), Coords: v.Len()})
		for i := 0; i < v.Len(); i++ {
			if g, ok := v.Get(i); ok {
				if err := b.PushMultiPoint(pointAsMultiPoint{g}); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case *LineStringArray:
		b := NewMultiLineStringBuilder(target.Dimension, target.CoordType, target.Metadata)
		for i := 0; i < v.Len(); i++ {
			if g, ok := v.Get(i); ok {
				if err := b.PushMultiLineString(lineStringAsMulti{g}); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case *PolygonArray:
		b := NewMultiPolygonBuilder(target.Dimension, target.CoordType, target.Metadata)
		for i := 0; i < v.Len(); i++ {
			if g, ok := v.Get(i); ok {
				if err := b.PushMultiPolygon(polygonAsMulti{g}); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	}
	return nil, newError(TypeMismatch, "cannot widen %s to %s", a.DataType(), target)
}

// Downcast narrows a Multi* array to its scalar counterpart, or a
// Geometry/GeometryCollection union to a concrete variant, but only
// when every row has exactly one child (spec §4.5's downcast
// inspection rule); it returns a TypeMismatch error otherwise. Point,
// LineString and Polygon arrays have no narrower form and are returned
// unchanged, so Downcast is idempotent.
func Downcast(a Array) (Array, error) {
	switch v := a.(type) {
	case *MultiPointArray:
		b := NewPointBuilder(v.DataType().Dimension, v.DataType().CoordType, v.DataType().Metadata)
		for i := 0; i < v.Len(); i++ {
			if v.IsNull(i) {
				b.PushNull()
				continue
			}
			if v.NumChildren(i) != 1 {
				return nil, newError(TypeMismatch, "row %d has %d points, cannot downcast to Point", i, v.NumChildren(i))
			}
			mp := v.Value(i)
			b.PushPoint(mp.PointAt(0))
		}
		return b.Finish(), nil
	case *MultiLineStringArray:
		b := NewLineStringBuilder(v.DataType().Dimension, v.DataType().CoordType, v.DataType().Metadata)
		for i := 0; i < v.Len(); i++ {
			if v.IsNull(i) {
				b.PushNull()
				continue
			}
			if v.NumChildren(i) != 1 {
				return nil, newError(TypeMismatch, "row %d has %d lines, cannot downcast to LineString", i, v.NumChildren(i))
			}
			mls := v.Value(i)
			if err := b.PushLineString(mls.LineStringAt(0)); err != nil {
				return nil, err
			}
		}
		return b.Finish(), nil
	case *MultiPolygonArray:
		b := NewPolygonBuilder(v.DataType().Dimension, v.DataType().CoordType, v.DataType().Metadata)
		for i := 0; i < v.Len(); i++ {
			if v.IsNull(i) {
				b.PushNull()
				continue
			}
			if v.NumChildren(i) != 1 {
				return nil, newError(TypeMismatch, "row %d has %d polygons, cannot downcast to Polygon", i, v.NumChildren(i))
			}
			mp := v.Value(i)
			if err := b.PushPolygon(mp.PolygonAt(0)); err != nil {
				return nil, err
			}
		}
		return b.Finish(), nil
	case *GeometryArray:
		return downcastGeometry(v)
	case *GeometryCollectionArray:
		return downcastCollection(v)
	case *PointArray, *LineStringArray, *PolygonArray:
		return a, nil
	}
	return nil, newError(TypeMismatch, "%s cannot be downcast", a.DataType())
}

// downcastGeometry narrows a dynamic union to a single concrete
// variant, requiring every row (ignoring nulls) to agree.
func downcastGeometry(a *GeometryArray) (Array, error) {
	var variant Variant
	seen := false
	for i := 0; i < a.Len(); i++ {
		g, ok := a.Get(i)
		if !ok {
			continue
		}
		v := geometryTraitVariant(g)
		if !seen {
			variant, seen = v, true
			continue
		}
		if v != variant {
			return nil, newError(TypeMismatch, "row %d is %s, expected %s for downcast", i, v, variant)
		}
	}
	if !seen {
		return nil, newError(TypeMismatch, "cannot downcast an empty or all-null Geometry array")
	}
	return rebuildConcrete(a, variant)
}

func geometryTraitVariant(g AnyGeometryTrait) Variant {
	switch {
	case g.Point != nil:
		return VariantPoint
	case g.LineString != nil:
		return VariantLineString
	case g.Polygon != nil:
		return VariantPolygon
	case g.MultiPoint != nil:
		return VariantMultiPoint
	case g.MultiLineString != nil:
		return VariantMultiLineString
	case g.MultiPolygon != nil:
		return VariantMultiPolygon
	case g.GeometryCollection != nil:
		return VariantGeometryCollection
	case g.Rect != nil:
		return VariantRect
	}
	return VariantGeometry
}

// downcastCollection narrows a GeometryCollection whose rows each hold
// exactly one child: the children are gathered into a Geometry union,
// which is then passed through Downcast to reach a concrete variant.
func downcastCollection(a *GeometryCollectionArray) (Array, error) {
	dt := a.DataType()
	b := NewGeometryBuilder(dt.Dimension, dt.CoordType, dt.Metadata)
	for i := 0; i < a.Len(); i++ {
		v, ok := a.Get(i)
		if !ok {
			b.PushNull()
			continue
		}
		if v.NumGeometries() != 1 {
			return nil, newError(TypeMismatch, "row %d has %d geometries, cannot downcast to a single Geometry", i, v.NumGeometries())
		}
		if err := b.PushGeometry(v.GeometryAt(0)); err != nil {
			return nil, err
		}
	}
	return Downcast(b.Finish())
}

func rebuildConcrete(a *GeometryArray, variant Variant) (Array, error) {
	dim, ct, md := a.DataType().Dimension, a.DataType().CoordType, a.DataType().Metadata
	switch variant {
	case VariantPoint:
		b := NewPointBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				b.PushPoint(g.Point)
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case VariantLineString:
		b := NewLineStringBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				if err := b.PushLineString(g.LineString); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case VariantPolygon:
		b := NewPolygonBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				if err := b.PushPolygon(g.Polygon); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case VariantMultiPoint:
		b := NewMultiPointBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				if err := b.PushMultiPoint(g.MultiPoint); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case VariantMultiLineString:
		b := NewMultiLineStringBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				if err := b.PushMultiLineString(g.MultiLineString); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	case VariantMultiPolygon:
		b := NewMultiPolygonBuilder(dim, ct, md)
		for i := 0; i < a.Len(); i++ {
			if g, ok := a.Get(i); ok {
				if err := b.PushMultiPolygon(g.MultiPolygon); err != nil {
					return nil, err
				}
			} else {
				b.PushNull()
			}
		}
		return b.Finish(), nil
	}
	return nil, newError(TypeMismatch, "downcast target %s not supported", variant)
}

// castToGeometry promotes any native array to the dynamic union (spec
// §4.5's "any native -> Geometry" row).
func castToGeometry(a Array, target GeoArrowType) (Array, error) {
	b := NewGeometryBuilder(target.Dimension, target.CoordType, target.Metadata)
	emit := func(i int) error {
		switch v := a.(type) {
		case *PointArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{Point: g})
			}
		case *LineStringArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{LineString: g})
			}
		case *PolygonArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{Polygon: g})
			}
		case *MultiPointArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{MultiPoint: g})
			}
		case *MultiLineStringArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{MultiLineString: g})
			}
		case *MultiPolygonArray:
			if g, ok := v.Get(i); ok {
				return b.PushGeometry(AnyGeometryTrait{MultiPolygon: g})
			}
		default:
			return newError(TypeMismatch, "cannot promote %s into Geometry", a.DataType())
		}
		b.PushNull()
		return nil
	}
	for i := 0; i < a.Len(); i++ {
		if err := emit(i); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}

// castToCollection wraps every row of a Mixed-shaped array as a
// single-element GeometryCollection (spec §4.5's Mixed <->
// GeometryCollection row).
func castToCollection(a Array, target GeoArrowType) (Array, error) {
	geomArr, ok := a.(*GeometryArray)
	if !ok {
		return nil, newError(TypeMismatch, "only a Geometry union casts to GeometryCollection")
	}
	b := NewGeometryCollectionBuilder(target.Dimension, target.CoordType, target.Metadata)
	for i := 0; i < geomArr.Len(); i++ {
		g, ok := geomArr.Get(i)
		if !ok {
			b.PushNull()
			continue
		}
		if err := b.mixed.push(g); err != nil {
			return nil, err
		}
		if err := b.geomOffsets.push(b.mixed.len()); err != nil {
			return nil, err
		}
		b.nulls.appendValid(true)
	}
	return b.Finish(), nil
}

// multiPairs are the {X, MultiX} pairs spec §4.5 rule 4 collapses to
// MultiX when a chunk set is exactly that pair.
var multiPairs = [...][2]Variant{
	{VariantPoint, VariantMultiPoint},
	{VariantLineString, VariantMultiLineString},
	{VariantPolygon, VariantMultiPolygon},
}

// ResolveCommonType implements spec §4.5's 6-step cross-chunk
// resolution, applied in the documented order:
//  1. identical types pass through unchanged.
//  2. any chunk already Geometry -> Geometry, coord type is the
//     lexicographically-first interleaving present in the set.
//  3. chunks disagreeing on dimension -> Geometry (dynamic dimension).
//  4. the set is exactly {X, MultiX} for one of Point/LineString/Polygon -> MultiX.
//  5. the set contains GeometryCollection -> GeometryCollection.
//  6. otherwise -> Geometry.
//
// Outside of rule 2, the resolved coord type is whichever coord type
// appears first in the input set (input order, not lexicographic).
func ResolveCommonType(types []GeoArrowType) (GeoArrowType, error) {
	if len(types) == 0 {
		return GeoArrowType{}, newError(InvalidGeoArrow, "cannot resolve a common type over zero chunks")
	}

	allEqual := true
	variants := map[Variant]bool{}
	dims := map[Dimension]bool{}
	coordTypesSeen := map[CoordType]bool{}
	var firstCoordType CoordType
	for i, t := range types {
		if i == 0 {
			firstCoordType = t.CoordType
		}
		if !t.Equal(types[0]) {
			allEqual = false
		}
		variants[t.Variant] = true
		dims[t.Dimension] = true
		coordTypesSeen[t.CoordType] = true
	}

	// Rule 1.
	if allEqual {
		return types[0], nil
	}

	resolvedCoordType := firstCoordType

	// Rule 2.
	if variants[VariantGeometry] {
		return NewType(VariantGeometry, types[0].Dimension, lexFirstCoordType(coordTypesSeen), types[0].Metadata), nil
	}

	// Rule 3.
	if len(dims) > 1 {
		return NewType(VariantGeometry, types[0].Dimension, resolvedCoordType, types[0].Metadata), nil
	}
	dim := types[0].Dimension

	// Rule 4.
	if len(variants) == 2 {
		for _, pair := range multiPairs {
			if variants[pair[0]] && variants[pair[1]] {
				return NewType(pair[1], dim, resolvedCoordType, types[0].Metadata), nil
			}
		}
	}

	// Rule 5.
	if variants[VariantGeometryCollection] {
		return NewType(VariantGeometryCollection, dim, resolvedCoordType, types[0].Metadata), nil
	}

	// Rule 6.
	return NewType(VariantGeometry, dim, resolvedCoordType, types[0].Metadata), nil
}

func lexFirstCoordType(seen map[CoordType]bool) CoordType {
	best := CoordInterleaved
	bestStr := ""
	first := true
	for ct := range seen {
		s := ct.String()
		if first || s < bestStr {
			best, bestStr, first = ct, s, false
		}
	}
	return best
}
