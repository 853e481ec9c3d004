// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/bangalore/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	loader := dataset.NewLoader(store)
//
// # Features
//
//   - Range reads for random access through blobstore.Blob
//   - Concurrent multi-part downloads for whole files (blobstore.Fetcher)
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
