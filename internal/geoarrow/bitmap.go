package geoarrow

import "math/bits"

// nullBitmap is a packed-bit validity bitmap: bit i set means row i is
// valid (non-null). A nil bitmap means "all valid" (spec §3, §4.4).
//
// Per spec §3 Lifecycle, slicing an array must be O(1) and alias the
// same underlying buffer; nullBitmap supports that by carrying a
// logical (start, length) window over a shared bits slice rather than
// copying on slice.
type nullBitmap struct {
	bits  []byte
	start int // logical bit offset of row 0 within bits
	len   int
}

func newNullBitmap(n int) *nullBitmap {
	return &nullBitmap{bits: make([]byte, (n+7)/8), len: n}
}

func (b *nullBitmap) bitIndex(i int) int {
	return b.start + i
}

func (b *nullBitmap) isValid(i int) bool {
	if b == nil {
		return true
	}
	idx := b.bitIndex(i)
	return b.bits[idx/8]&(1<<uint(idx%8)) != 0
}

func (b *nullBitmap) setValid(i int, valid bool) {
	idx := b.bitIndex(i)
	if valid {
		b.bits[idx/8] |= 1 << uint(idx%8)
	} else {
		b.bits[idx/8] &^= 1 << uint(idx%8)
	}
}

// appendValid grows the bitmap by one bit, set according to valid.
// Only legal on a bitmap with start == 0 (i.e. one under construction
// by a builder, never one produced by slice).
func (b *nullBitmap) appendValid(valid bool) {
	idx := b.len
	if (idx+1+7)/8 > len(b.bits) {
		b.bits = append(b.bits, 0)
	}
	b.len++
	b.setValid(idx, valid)
}

// nullCount returns the number of unset bits within the logical window.
func (b *nullBitmap) nullCount() int {
	if b == nil {
		return 0
	}
	set := 0
	for i := 0; i < b.len; i++ {
		if b.isValid(i) {
			set++
		}
	}
	return b.len - set
}

// fastNullCount is an optimized path for start==0 whole-bitmap counts,
// used when building (no window yet).
func (b *nullBitmap) fastNullCount() int {
	if b == nil || b.start != 0 {
		return b.nullCount()
	}
	set := 0
	for i, by := range b.bits {
		if i == len(b.bits)-1 {
			remaining := b.len - i*8
			if remaining < 8 {
				by &= byte(1<<uint(remaining)) - 1
			}
		}
		set += bits.OnesCount8(by)
	}
	return b.len - set
}

// allValid reports whether the bitmap is either nil or has no unset bits,
// i.e. it is safe to drop at finish (spec §4.4).
func (b *nullBitmap) allValid() bool {
	return b == nil || b.fastNullCount() == 0
}

// slice returns a bitmap window over the same underlying bits: O(1),
// aliasing, per spec §3 Lifecycle.
func (b *nullBitmap) slice(offset, length int) *nullBitmap {
	if b == nil {
		return nil
	}
	return &nullBitmap{bits: b.bits, start: b.start + offset, len: length}
}

func (b *nullBitmap) length() int {
	if b == nil {
		return 0
	}
	return b.len
}
