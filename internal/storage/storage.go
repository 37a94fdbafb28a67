package storage

import "context"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ProgressFunc reports transfer progress. It may be called zero or more
// times with the bytes transferred so far and the total object size.
type ProgressFunc func(current, total int64)

// ObjectStorage captures the minimal S3-compatible operations the tool needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string, progress ProgressFunc) error
}
