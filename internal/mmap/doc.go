// Package mmap provides read-only memory-mapped file access.
//
// On unix platforms files are mapped with golang.org/x/sys/unix. Elsewhere
// Open falls back to reading the whole file into memory, so callers see the
// same API everywhere.
//
// # Usage
//
//	m, err := mmap.Open("restaurants.csv.zst")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
package mmap
