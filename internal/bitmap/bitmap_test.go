package bitmap

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	b := New()
	assert.True(t, b.IsEmpty())

	b.Add(7)
	b.Add(3)
	b.Add(7)

	assert.Equal(t, 2, b.Cardinality())
	assert.True(t, b.Contains(3))
	assert.False(t, b.Contains(4))
	assert.Equal(t, []uint32{3, 7}, b.ToSlice())
	assert.Equal(t, []uint32{3, 7}, slices.Collect(b.Rows()))
}

func TestBitmap_SetOps(t *testing.T) {
	a := Of(1, 2, 3, 4)
	b := Of(3, 4, 5)
	c := Range(0, 4)

	assert.Equal(t, []uint32{3}, Intersect(a, b, c).ToSlice())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, Union(a, b, c).ToSlice())
	assert.True(t, Intersect().IsEmpty())

	// Set operations leave their inputs untouched.
	assert.Equal(t, 4, a.Cardinality())

	clone := a.Clone()
	clone.And(b)
	assert.Equal(t, []uint32{3, 4}, clone.ToSlice())
	assert.Equal(t, 4, a.Cardinality())

	clone.Or(Of(9))
	assert.Equal(t, []uint32{3, 4, 9}, clone.ToSlice())
}

func TestBitmap_EarlyStop(t *testing.T) {
	b := Range(0, 100)
	b.Optimize()

	var seen []uint32
	for r := range b.Rows() {
		if r == 3 {
			break
		}
		seen = append(seen, r)
	}
	assert.Equal(t, []uint32{0, 1, 2}, seen)
	assert.True(t, Range(5, 5).IsEmpty())
	assert.NotZero(t, b.SizeInBytes())
}
