package geoarrow

// ChunkedArray is an ordered sequence of same-typed Array chunks,
// composing length/null-count/slicing chunk-wise (spec §4.6). Chunks
// are never merged; there is no operation that concatenates them into
// one contiguous Array.
type ChunkedArray struct {
	dataType GeoArrowType
	chunks   []Array
	length   int
}

// NewChunkedArray groups chunks that must already share one
// GeoArrowType (use ResolveCommonType first if they don't).
func NewChunkedArray(dataType GeoArrowType, chunks []Array) *ChunkedArray {
	total := 0
	for _, c := range chunks {
		total += c.Len()
	}
	return &ChunkedArray{dataType: dataType, chunks: chunks, length: total}
}

func (c *ChunkedArray) DataType() GeoArrowType { return c.dataType }
func (c *ChunkedArray) Len() int               { return c.length }
func (c *ChunkedArray) NumChunks() int         { return len(c.chunks) }
func (c *ChunkedArray) Chunk(i int) Array      { return c.chunks[i] }

func (c *ChunkedArray) NullCount() int {
	n := 0
	for _, chunk := range c.chunks {
		n += chunk.NullCount()
	}
	return n
}

// Slice returns a new ChunkedArray over [offset, offset+length),
// slicing only the chunks the window touches; whole chunks fully
// inside the window are reused without copying.
func (c *ChunkedArray) Slice(offset, length int) *ChunkedArray {
	var out []Array
	pos := 0
	remaining := length
	for _, chunk := range c.chunks {
		chunkLen := chunk.Len()
		if pos+chunkLen <= offset {
			pos += chunkLen
			continue
		}
		if remaining <= 0 {
			break
		}
		start := 0
		if offset > pos {
			start = offset - pos
		}
		take := chunkLen - start
		if take > remaining {
			take = remaining
		}
		if start == 0 && take == chunkLen {
			out = append(out, chunk)
		} else {
			out = append(out, chunk.Slice(start, take))
		}
		remaining -= take
		pos += chunkLen
	}
	return &ChunkedArray{dataType: c.dataType, chunks: out, length: length}
}

// RowGroupCount reports how many chunks compose this column, the unit
// at which a FileReader's row groups line up with Table batches.
func (c *ChunkedArray) RowGroupCount() int { return len(c.chunks) }
