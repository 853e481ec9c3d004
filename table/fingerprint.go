package table

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a content hash of the canonical table.
func (t CanonicalTable) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, r := range t {
		writeString(h, r.Name)
		writeString(h, r.City)
		writeString(h, r.Cuisine)
		writeFloat(h, &buf, r.Rating)
		binary.LittleEndian.PutUint64(buf[:], uint64(r.RatingCount))
		_, _ = h.Write(buf[:])
		writeFloat(h, &buf, r.Cost)
	}
	return h.Sum64()
}

// Fingerprint returns a content hash of the feature table.
func (t FeatureTable) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, n := range t.Names {
		writeString(h, n)
	}
	for _, c := range t.Columns {
		writeString(h, c.Name)
		_, _ = h.Write([]byte{byte(c.Kind)})
		for _, v := range c.Numeric {
			writeFloat(h, &buf, v)
		}
		for _, s := range c.Text {
			writeString(h, s)
		}
	}
	return h.Sum64()
}

// Fingerprint returns a content hash of the assignment.
func (a Assignment) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range []int{a.K, len(a.Names), len(a.Labels)} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	for _, n := range a.Names {
		writeString(h, n)
	}
	for _, l := range a.Labels {
		binary.LittleEndian.PutUint64(buf[:], uint64(l))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Combine mixes several digests and integer parameters into one key.
func Combine(parts ...uint64) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// writeString length-prefixes s so ("ab","c") and ("a","bc") hash differently.
func writeString(h *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString(s)
}

func writeFloat(h *xxhash.Digest, buf *[8]byte, v float64) {
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, _ = h.Write(buf[:])
}
