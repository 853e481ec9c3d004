// Package blobstore provides read access to the dataset files a recommender is built from.
//
// BlobStore is the interface for opening immutable data blobs (the canonical
// restaurant table and the clustering feature table). Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory blobs for tests
//   - BreakerStore: circuit breaker around any remote store
//   - s3.Store: Amazon S3 with range reads and concurrent downloads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Stores that can fetch a whole blob faster than a sequence of ranged reads
// implement Fetcher; ReadAll prefers it.
package blobstore
