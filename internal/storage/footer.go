// Package storage reads parquet footers of table data files, from S3
// compatible object storage or the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/logger"
)

// Config holds object storage settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool

	// Timeout bounds one footer read. Zero disables it.
	Timeout time.Duration
}

// FooterReader implements catalog.FooterReader. The S3 client is created on
// first use so a session that never reads footers needs no credentials.
type FooterReader struct {
	cfg Config

	once      sync.Once
	client    *minio.Client
	clientErr error
}

var _ catalog.FooterReader = (*FooterReader)(nil)

// NewFooterReader returns a reader using cfg for s3 paths.
func NewFooterReader(cfg Config) *FooterReader {
	return &FooterReader{cfg: cfg}
}

// Supports reports whether path is an s3, s3a, file or absolute local path.
func (r *FooterReader) Supports(path string) bool {
	switch {
	case strings.HasPrefix(path, "s3://"), strings.HasPrefix(path, "s3a://"):
		return true
	case strings.HasPrefix(path, "file://"), strings.HasPrefix(path, "/"):
		return true
	}
	return false
}

// ReadFooter reads the footer of the parquet file at path.
func (r *FooterReader) ReadFooter(ctx context.Context, path string) (catalog.ParquetMetadata, error) {
	if err := ctx.Err(); err != nil {
		return catalog.ParquetMetadata{}, catalog.Wrap("read_footer", path, catalog.ErrCanceled, err)
	}
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	pf, err := r.open(ctx, path)
	if err != nil {
		return catalog.ParquetMetadata{}, classify(path, err)
	}
	defer pf.Close()

	footer, err := readFooter(pf)
	if err != nil {
		return catalog.ParquetMetadata{}, classify(path, err)
	}
	logger.Debug("storage: footer read", "path", path, "duration", time.Since(start))

	md := convertFooter(footer)
	md.Path = path
	return md, nil
}

func (r *FooterReader) open(ctx context.Context, path string) (source.ParquetFile, error) {
	if strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "s3a://") {
		bucket, key, err := ParseS3Path(path)
		if err != nil {
			return nil, err
		}
		client, err := r.s3()
		if err != nil {
			return nil, err
		}
		return openObject(ctx, client, bucket, key)
	}
	return local.NewLocalFileReader(localPath(path))
}

func (r *FooterReader) s3() (*minio.Client, error) {
	r.once.Do(func() {
		endpoint, secure := endpointHost(r.cfg.Endpoint, r.cfg.UseSSL)
		opts := &minio.Options{Secure: secure, Region: r.cfg.Region}
		if r.cfg.AccessKeyID != "" {
			opts.Creds = credentials.NewStaticV4(r.cfg.AccessKeyID, r.cfg.SecretAccessKey, "")
		} else {
			opts.Creds = credentials.NewEnvAWS()
		}
		r.client, r.clientErr = minio.New(endpoint, opts)
		if r.clientErr != nil {
			r.clientErr = fmt.Errorf("create s3 client: %w", r.clientErr)
		}
	})
	return r.client, r.clientErr
}

// endpointHost returns the host[:port] minio expects and whether to use TLS.
// A scheme in endpoint decides TLS; useSSL only applies to a bare host.
func endpointHost(endpoint string, useSSL bool) (string, bool) {
	if endpoint == "" {
		return "s3.amazonaws.com", true
	}
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}
	return endpoint, useSSL
}

// ParseS3Path splits s3://bucket/key into bucket and key.
func ParseS3Path(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 path: %w", err)
	}
	if u.Scheme != "s3" && u.Scheme != "s3a" {
		return "", "", fmt.Errorf("invalid s3 path %q: unexpected scheme %q", path, u.Scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 path %q: bucket and key required", path)
	}
	return bucket, key, nil
}

func localPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "file://"); ok {
		return rest
	}
	return path
}

// readFooter decodes the footer of pf. Corrupt input can make the thrift
// decoder panic; that is reported as an error.
func readFooter(pf source.ParquetFile) (footer *parquet.FileMetaData, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decode footer: %v", p)
		}
	}()

	pr := &reader.ParquetReader{PFile: pf}
	if err := pr.ReadFooter(); err != nil {
		return nil, fmt.Errorf("decode footer: %w", err)
	}
	return pr.Footer, nil
}

func convertFooter(f *parquet.FileMetaData) catalog.ParquetMetadata {
	md := catalog.ParquetMetadata{
		Version:   f.Version,
		NumRows:   f.NumRows,
		RowGroups: len(f.RowGroups),
		KeyValue:  make(map[string]string, len(f.KeyValueMetadata)),
	}
	if f.CreatedBy != nil {
		md.CreatedBy = *f.CreatedBy
	}
	for _, rg := range f.RowGroups {
		if rg != nil {
			md.TotalByteSize += rg.TotalByteSize
		}
	}
	// The first schema element is the root.
	for i, el := range f.Schema {
		if i == 0 || el == nil {
			continue
		}
		if el.NumChildren == nil || *el.NumChildren == 0 {
			md.Columns = append(md.Columns, el.Name)
		}
	}
	for _, kv := range f.KeyValueMetadata {
		if kv == nil {
			continue
		}
		v := ""
		if kv.Value != nil {
			v = *kv.Value
		}
		md.KeyValue[kv.Key] = v
	}
	return md
}

func classify(path string, err error) error {
	kind := catalog.ErrProtocol
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey", "NoSuchBucket":
			kind = catalog.ErrNotFound
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			kind = catalog.ErrConnect
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		kind = catalog.ErrNotFound
	}
	return catalog.Wrap("read_footer", path, kind, err)
}
