package storage

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/xitongsys/parquet-go/source"
)

// objectFile is a read-only source.ParquetFile over an S3 object.
type objectFile struct {
	ctx    context.Context
	client *minio.Client
	bucket string
	key    string
	obj    *minio.Object
}

var _ source.ParquetFile = (*objectFile)(nil)

func openObject(ctx context.Context, client *minio.Client, bucket, key string) (*objectFile, error) {
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return &objectFile{ctx: ctx, client: client, bucket: bucket, key: key, obj: obj}, nil
}

func (f *objectFile) Read(p []byte) (int, error) { return f.obj.Read(p) }

func (f *objectFile) Seek(offset int64, whence int) (int64, error) {
	return f.obj.Seek(offset, whence)
}

func (f *objectFile) Write([]byte) (int, error) {
	return 0, errors.New("storage: object is read-only")
}

func (f *objectFile) Close() error { return f.obj.Close() }

// Open reopens the object. An empty name reopens the same key.
func (f *objectFile) Open(name string) (source.ParquetFile, error) {
	key := f.key
	if name != "" {
		key = name
	}
	return openObject(f.ctx, f.client, f.bucket, key)
}

func (f *objectFile) Create(string) (source.ParquetFile, error) {
	return nil, errors.New("storage: object is read-only")
}
