// Package dataset loads the canonical restaurant table and the clustering
// feature table from a blobstore.
//
// Files are CSV (or TSV, by the ".tsv" extension) with a header row and may be
// compressed; the codec is chosen by the outermost suffix:
//
//	zomato.csv        plain
//	zomato.csv.gz     gzip
//	zomato.csv.zst    zstd
//	zomato.csv.lz4    lz4 frame
//
// The canonical file must carry the columns name, city, cuisine, rating,
// rating_count and cost; other columns are ignored. The feature file must
// carry name; every other column becomes a feature column, numeric when each
// non-empty cell parses as a float and text otherwise.
package dataset
