// Package storage wraps the MinIO Go client for the optional upload of
// diagnostic snapshots to S3-compatible object storage.
//
// Snapshots are always written to the local error directory first; when
// storage is enabled a copy is uploaded so post-mortems do not depend on the
// operator's workstation.
//
// # Client Interface
//
// Client is the subset of MinIO the application uses. It is mocked in
// core/storage/mocks for unit tests.
//
//   - BucketExists / MakeBucket: EnsureBucket creates the bucket on first use.
//   - PutObject: uploads a snapshot.
//   - ListObjects: lists uploaded snapshots for the status command.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
