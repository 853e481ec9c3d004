// Package scale standardizes numeric feature columns to zero mean and unit
// variance before clustering.
//
// Statistics are population statistics (divide by n), fitted on the same
// table that is later transformed. Columns with (numerically) zero variance
// are either zero-filled and reported, or rejected, depending on Policy.
package scale
