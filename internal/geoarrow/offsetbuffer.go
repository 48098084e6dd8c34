package geoarrow

import "math"

// offsetBuffer is a monotone non-decreasing sequence of signed 32-bit
// offsets delimiting a variable-length child (spec §4.2). The logical
// row count is len(values)-1; row i spans [values[i], values[i+1]) of
// the immediate child.
//
// Slicing an array windows an offsetBuffer by (start, length) without
// touching the backing slice (spec §3 Lifecycle): row i of the slice
// reads values[start+i] and values[start+i+1] of the shared backing
// array.
type offsetBuffer struct {
	values []int32
	start  int // index of row 0 within values
	length int // number of logical rows
}

func newOffsetBuffer(rows int) *offsetBuffer {
	values := make([]int32, 1, rows+1)
	values[0] = 0
	return &offsetBuffer{values: values}
}

// wrapOffsets constructs an offsetBuffer over an already-complete
// values slice (as read back from storage), spanning every row.
func wrapOffsets(values []int32) *offsetBuffer {
	if len(values) == 0 {
		values = []int32{0}
	}
	return &offsetBuffer{values: values, length: len(values) - 1}
}

func (o *offsetBuffer) len() int {
	return o.length
}

// bounds returns the (start,end) child range for logical row i.
func (o *offsetBuffer) bounds(i int) (int32, int32) {
	idx := o.start + i
	return o.values[idx], o.values[idx+1]
}

func (o *offsetBuffer) last() int32 {
	idx := o.start + o.length
	return o.values[idx]
}

// push appends a new offset equal to the running child count; it is
// the caller's responsibility to pass the post-append child length.
func (o *offsetBuffer) push(childLen int) error {
	if childLen > math.MaxInt32 {
		return newError(Overflow, "offset %d exceeds the 32-bit limit", childLen)
	}
	o.values = append(o.values, int32(childLen))
	o.length++
	return nil
}

// pushSame duplicates the last offset, used for null rows so the
// child buffers stay aligned (spec §4.4 push_null).
func (o *offsetBuffer) pushSame() {
	o.values = append(o.values, o.last())
	o.length++
}

func (o *offsetBuffer) reserve(n int) {
	if cap(o.values) < len(o.values)+n {
		grown := make([]int32, len(o.values), len(o.values)+n)
		copy(grown, o.values)
		o.values = grown
	}
}

func (o *offsetBuffer) slice(offset, length int) *offsetBuffer {
	return &offsetBuffer{values: o.values, start: o.start + offset, length: length}
}

// materialize returns the logical window as its own []int32 of length
// o.length+1, starting at 0, suitable for lowering into storage.
func (o *offsetBuffer) materialize() []int32 {
	base := o.values[o.start]
	out := make([]int32, o.length+1)
	for i := 0; i <= o.length; i++ {
		out[i] = o.values[o.start+i] - base
	}
	return out
}
