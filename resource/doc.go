// Package resource bounds the work a process spends loading datasets.
//
// A Controller combines three independent limits:
//
//   - a memory budget for raw dataset bytes held during parsing
//   - a fixed number of concurrent load slots
//   - an IO throughput limit for remote downloads
//
// A nil *Controller imposes no limits.
package resource
