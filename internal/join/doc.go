// Package join attaches cluster labels to the canonical restaurant table.
//
// The join is a left join on the exact, case-sensitive restaurant name.
// Every canonical row survives; rows without a match carry the null label.
// A name that appears more than once in the assignment produces one output
// row per match, which Left reports in its Report.
package join
