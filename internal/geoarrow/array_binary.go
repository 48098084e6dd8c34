package geoarrow

// WKBArray and WKTArray store opaque, unvalidated per-row payloads
// delimited by a single offsets buffer into a shared byte/string
// buffer (spec §3). Malformed payloads are accepted at construction
// and only surface a ParseError lazily, on first scalar decode (spec
// §7), via the wkbparse.go/wktparse.go helpers.

type WKBArray struct {
	arrayBase
	data    []byte
	offsets *offsetBuffer
}

var _ Array = (*WKBArray)(nil)

func (a *WKBArray) Slice(offset, length int) Array {
	return &WKBArray{arrayBase: a.sliceBase(offset, length), data: a.data, offsets: a.offsets.slice(offset, length)}
}

func (a *WKBArray) Get(i int) ([]byte, bool) {
	if a.IsNull(i) {
		return nil, false
	}
	return a.Value(i), true
}

func (a *WKBArray) Value(i int) []byte {
	start, end := a.offsets.bounds(i)
	return a.data[start:end]
}

type WKBBuilder struct {
	metadata *Metadata
	data     []byte
	offsets  *offsetBuffer
	nulls    *nullBitmap
	allValid bool
}

func NewWKBBuilder(md *Metadata) *WKBBuilder {
	return &WKBBuilder{metadata: md, offsets: newOffsetBuffer(0), nulls: newNullBitmap(0), allValid: true}
}

func NewWKBBuilderWithCapacity(md *Metadata, cap BinaryCapacity) *WKBBuilder {
	b := NewWKBBuilder(md)
	b.data = make([]byte, 0, cap.Bytes)
	b.offsets.reserve(cap.Rows)
	return b
}

func (b *WKBBuilder) Push(value []byte) error {
	b.data = append(b.data, value...)
	if err := b.offsets.push(len(b.data)); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *WKBBuilder) PushNull() {
	b.offsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *WKBBuilder) Len() int { return b.offsets.len() }

func (b *WKBBuilder) Finish() *WKBArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &WKBArray{
		arrayBase: arrayBase{dataType: NewType(VariantWKB, DimXY, CoordInterleaved, b.metadata), length: b.offsets.len(), nulls: nulls},
		data:      b.data,
		offsets:   b.offsets,
	}
}

type WKTArray struct {
	arrayBase
	data    []byte
	offsets *offsetBuffer
}

var _ Array = (*WKTArray)(nil)

func (a *WKTArray) Slice(offset, length int) Array {
	return &WKTArray{arrayBase: a.sliceBase(offset, length), data: a.data, offsets: a.offsets.slice(offset, length)}
}

func (a *WKTArray) Get(i int) (string, bool) {
	if a.IsNull(i) {
		return "", false
	}
	return a.Value(i), true
}

func (a *WKTArray) Value(i int) string {
	start, end := a.offsets.bounds(i)
	return string(a.data[start:end])
}

type WKTBuilder struct {
	metadata *Metadata
	data     []byte
	offsets  *offsetBuffer
	nulls    *nullBitmap
	allValid bool
}

func NewWKTBuilder(md *Metadata) *WKTBuilder {
	return &WKTBuilder{metadata: md, offsets: newOffsetBuffer(0), nulls: newNullBitmap(0), allValid: true}
}

func NewWKTBuilderWithCapacity(md *Metadata, cap BinaryCapacity) *WKTBuilder {
	b := NewWKTBuilder(md)
	b.data = make([]byte, 0, cap.Bytes)
	b.offsets.reserve(cap.Rows)
	return b
}

func (b *WKTBuilder) Push(value string) error {
	b.data = append(b.data, value...)
	if err := b.offsets.push(len(b.data)); err != nil {
		return err
	}
	b.nulls.appendValid(true)
	return nil
}

func (b *WKTBuilder) PushNull() {
	b.offsets.pushSame()
	b.nulls.appendValid(false)
	b.allValid = false
}

func (b *WKTBuilder) Len() int { return b.offsets.len() }

func (b *WKTBuilder) Finish() *WKTArray {
	var nulls *nullBitmap
	if !b.allValid {
		nulls = b.nulls
	}
	return &WKTArray{
		arrayBase: arrayBase{dataType: NewType(VariantWKT, DimXY, CoordInterleaved, b.metadata), length: b.offsets.len(), nulls: nulls},
		data:      b.data,
		offsets:   b.offsets,
	}
}
