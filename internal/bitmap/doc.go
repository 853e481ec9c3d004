// Package bitmap provides row-position sets backed by Roaring bitmaps.
//
// The query engine keeps one Bitmap per city and per cuisine. Filters are
// evaluated by intersecting posting lists and then scanning the surviving
// rows in ascending order, so results keep table order.
package bitmap
