package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a set of row positions.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New creates an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// Of creates a bitmap holding rows.
func Of(rows ...uint32) *Bitmap {
	return &Bitmap{rb: roaring.BitmapOf(rows...)}
}

// Range creates a bitmap holding [lo, hi).
func Range(lo, hi uint32) *Bitmap {
	b := New()
	if hi > lo {
		b.rb.AddRange(uint64(lo), uint64(hi))
	}
	return b
}

// Add adds a row.
func (b *Bitmap) Add(row uint32) {
	b.rb.Add(row)
}

// Contains reports whether row is in the set.
func (b *Bitmap) Contains(row uint32) bool {
	return b.rb.Contains(row)
}

// IsEmpty returns true if the bitmap is empty.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// Cardinality returns the number of rows in the set.
func (b *Bitmap) Cardinality() int {
	return int(b.rb.GetCardinality())
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// And intersects b with other in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or unions other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// Intersect returns a new bitmap with the rows present in every input.
// With no inputs it returns an empty bitmap.
func Intersect(bs ...*Bitmap) *Bitmap {
	if len(bs) == 0 {
		return New()
	}
	rbs := make([]*roaring.Bitmap, len(bs))
	for i, b := range bs {
		rbs[i] = b.rb
	}
	return &Bitmap{rb: roaring.FastAnd(rbs...)}
}

// Union returns a new bitmap with the rows present in any input.
func Union(bs ...*Bitmap) *Bitmap {
	rbs := make([]*roaring.Bitmap, len(bs))
	for i, b := range bs {
		rbs[i] = b.rb
	}
	return &Bitmap{rb: roaring.FastOr(rbs...)}
}

// Rows returns an ascending iterator over the set.
func (b *Bitmap) Rows() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToSlice returns the rows in ascending order.
func (b *Bitmap) ToSlice() []uint32 {
	return b.rb.ToArray()
}

// Optimize compresses runs. Call once after the bitmap is fully built.
func (b *Bitmap) Optimize() {
	b.rb.RunOptimize()
}

// SizeInBytes returns the serialized size of the bitmap.
func (b *Bitmap) SizeInBytes() uint64 {
	return b.rb.GetSizeInBytes()
}
