package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xitongsys/parquet-go/parquet"

	"github.com/tanic-org/tanic/internal/catalog"
)

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		path    string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://warehouse/db/t/data/f.parquet", "warehouse", "db/t/data/f.parquet", false},
		{"s3a://warehouse/f.parquet", "warehouse", "f.parquet", false},
		{"s3://warehouse", "", "", true},
		{"s3:///key", "", "", true},
		{"gs://bucket/key", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, key, err := ParseS3Path(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseS3Path(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("ParseS3Path(%q) = %q, %q; want %q, %q", tt.path, bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestFooterReader_Supports(t *testing.T) {
	r := NewFooterReader(Config{})
	tests := []struct {
		path string
		want bool
	}{
		{"s3://b/k.parquet", true},
		{"s3a://b/k.parquet", true},
		{"file:///tmp/k.parquet", true},
		{"/tmp/k.parquet", true},
		{"memory://demo/k.parquet", false},
		{"gs://b/k.parquet", false},
		{"relative.parquet", false},
	}
	for _, tt := range tests {
		if got := r.Supports(tt.path); got != tt.want {
			t.Errorf("Supports(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFooterReader_MissingLocalFile(t *testing.T) {
	r := NewFooterReader(Config{})
	path := filepath.Join(t.TempDir(), "missing.parquet")

	_, err := r.ReadFooter(context.Background(), "file://"+path)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFooterReader_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.parquet")
	if err := os.WriteFile(path, []byte("definitely not a parquet file"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFooterReader(Config{}).ReadFooter(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for non-parquet file")
	}
}

func TestFooterReader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFooterReader(Config{}).ReadFooter(ctx, "/tmp/x.parquet")
	if !catalog.IsCanceled(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestConvertFooter(t *testing.T) {
	createdBy := "parquet-mr version 1.13.1"
	two := int32(2)
	val := "v"
	f := &parquet.FileMetaData{
		Version: 1,
		NumRows: 300,
		Schema: []*parquet.SchemaElement{
			{Name: "schema", NumChildren: &two},
			{Name: "id"},
			{Name: "name"},
		},
		RowGroups: []*parquet.RowGroup{
			{TotalByteSize: 100},
			{TotalByteSize: 50},
		},
		KeyValueMetadata: []*parquet.KeyValue{{Key: "k", Value: &val}, {Key: "empty"}},
		CreatedBy:        &createdBy,
	}

	md := convertFooter(f)
	if md.NumRows != 300 || md.RowGroups != 2 || md.TotalByteSize != 150 {
		t.Errorf("unexpected counts: %+v", md)
	}
	if md.CreatedBy != createdBy {
		t.Errorf("CreatedBy = %q", md.CreatedBy)
	}
	if len(md.Columns) != 2 || md.Columns[0] != "id" || md.Columns[1] != "name" {
		t.Errorf("Columns = %v", md.Columns)
	}
	if md.KeyValue["k"] != "v" || md.KeyValue["empty"] != "" {
		t.Errorf("KeyValue = %v", md.KeyValue)
	}
}

func TestFooterReader_EndpointScheme(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
		wantHost string
	}{
		{"http://localhost:9000", true, "http", "localhost:9000"},
		{"http://localhost:9000", false, "http", "localhost:9000"},
		{"https://minio.internal:9000", false, "https", "minio.internal:9000"},
		{"localhost:9000", true, "https", "localhost:9000"},
		{"localhost:9000", false, "http", "localhost:9000"},
		{"", false, "https", "s3.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/ssl=%v", tt.endpoint, tt.useSSL), func(t *testing.T) {
			r := NewFooterReader(Config{
				Endpoint:        tt.endpoint,
				UseSSL:          tt.useSSL,
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
			})
			client, err := r.s3()
			if err != nil {
				t.Fatalf("s3() error = %v", err)
			}
			u := client.EndpointURL()
			if u.Scheme != tt.want {
				t.Errorf("endpoint %q with UseSSL=%v dialed as %s, want %s", tt.endpoint, tt.useSSL, u.Scheme, tt.want)
			}
			if u.Host != tt.wantHost {
				t.Errorf("endpoint host = %q, want %q", u.Host, tt.wantHost)
			}
		})
	}
}
