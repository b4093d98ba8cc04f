package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanic-org/tanic/internal/catalog"
	"github.com/tanic-org/tanic/internal/catalog/memcatalog"
)

func TestMux_Dispatch(t *testing.T) {
	mem := memcatalog.NewConnector()
	mem.Register(memcatalog.DemoURI, memcatalog.Demo())

	fallback := memcatalog.NewConnector()
	fallback.Register("http://rest:8181", &memcatalog.Data{})

	mux := catalog.NewMux(fallback)
	mux.Handle("MEMORY", mem)

	_, err := mux.Connect(context.Background(), memcatalog.DemoURI)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Calls(memcatalog.OpConnect))

	_, err = mux.Connect(context.Background(), "http://rest:8181")
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Calls(memcatalog.OpConnect))
}

func TestMux_Errors(t *testing.T) {
	mux := catalog.NewMux(nil)

	_, err := mux.Connect(context.Background(), "ftp://x")
	assert.ErrorIs(t, err, catalog.ErrConnect)

	_, err = mux.Connect(context.Background(), "::bad uri")
	assert.ErrorIs(t, err, catalog.ErrConnect)
}

func TestConnectRetry_Backoff(t *testing.T) {
	r := catalog.NewConnectRetry(8)
	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second, 30 * time.Second,
	}
	for i, w := range want {
		require.True(t, r.NextAttempt(), "attempt %d", i+1)
		assert.Equal(t, w, r.NextDelay, "attempt %d", i+1)
	}
	assert.False(t, r.HasAttemptsRemaining())
	assert.False(t, r.NextAttempt())

	r.Reset()
	assert.Equal(t, 0, r.Attempt)
	assert.True(t, r.HasAttemptsRemaining())
}

func TestConnectRetry_MinimumOneAttempt(t *testing.T) {
	r := catalog.NewConnectRetry(0)
	assert.Equal(t, 1, r.MaxAttempts)
}

func fastRetry(attempts int) *catalog.ConnectRetry {
	r := catalog.NewConnectRetry(attempts)
	r.BaseDelay = time.Millisecond
	r.MaxDelay = 5 * time.Millisecond
	return r
}

func TestConnectWithRetry_SucceedsAfterFailures(t *testing.T) {
	mem := memcatalog.NewConnector()
	mem.Register(memcatalog.DemoURI, memcatalog.Demo())
	failures := 2
	mem.SetHook(func(_ context.Context, op, _ string) error {
		if op == memcatalog.OpConnect && failures > 0 {
			failures--
			return errors.New("connection refused")
		}
		return nil
	})

	r := fastRetry(5)
	cat, err := catalog.ConnectWithRetry(context.Background(), mem, memcatalog.DemoURI, r)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, 3, mem.Calls(memcatalog.OpConnect))
	assert.Equal(t, 0, r.Attempt)
}

func TestConnectWithRetry_GivesUp(t *testing.T) {
	mem := memcatalog.NewConnector()

	_, err := catalog.ConnectWithRetry(context.Background(), mem, "memory://missing", fastRetry(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrConnect)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, mem.Calls(memcatalog.OpConnect))
}

func TestConnectWithRetry_Canceled(t *testing.T) {
	mem := memcatalog.NewConnector()
	ctx, cancel := context.WithCancel(context.Background())
	mem.SetHook(func(context.Context, string, string) error {
		cancel()
		return errors.New("unreachable")
	})

	r := catalog.NewConnectRetry(5)
	_, err := catalog.ConnectWithRetry(ctx, mem, "memory://x", r)
	assert.True(t, catalog.IsCanceled(err))
	assert.Equal(t, 1, mem.Calls(memcatalog.OpConnect))
}

func TestWrap(t *testing.T) {
	base := errors.New("eof")

	assert.NoError(t, catalog.Wrap("op", "r", catalog.ErrProtocol, nil))

	err := catalog.Wrap("list_tables", "ns", catalog.ErrProtocol, base)
	assert.ErrorIs(t, err, catalog.ErrProtocol)
	assert.ErrorIs(t, err, base)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "list_tables ns: eof", err.Error())

	again := catalog.Wrap("outer", "x", catalog.ErrConnect, err)
	assert.Same(t, err, again)

	canceled := catalog.Wrap("load_table", "t", catalog.ErrProtocol, fmt.Errorf("get: %w", context.Canceled))
	assert.ErrorIs(t, canceled, catalog.ErrCanceled)
	assert.True(t, catalog.IsCanceled(canceled))
}

func TestFormatCatalogError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &catalog.Error{Op: "load_table", Kind: catalog.ErrNotFound}, "Not found"},
		{"refused", errors.New("dial tcp: connection refused"), "Connection refused"},
		{"auth", errors.New("unexpected status 401"), "Authentication failed"},
		{"timeout", errors.New("context deadline exceeded"), "Timeout"},
		{"connect", &catalog.Error{Op: "connect", Kind: catalog.ErrConnect, Err: errors.New("x")}, "Catalog connection error"},
		{"other", errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.FormatCatalogError(tt.err)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("FormatCatalogError() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestFooterReaders(t *testing.T) {
	mem := memcatalog.NewConnector()
	mem.Register(memcatalog.DemoURI, memcatalog.Demo())
	cat, err := mem.Connect(context.Background(), memcatalog.DemoURI)
	require.NoError(t, err)

	readers := catalog.FooterReaders{nil, cat.(catalog.FooterReader)}
	assert.True(t, readers.Supports("memory://demo/x.parquet"))
	assert.False(t, readers.Supports("s3://bucket/x.parquet"))

	_, err = readers.ReadFooter(context.Background(), "s3://bucket/x.parquet")
	assert.ErrorIs(t, err, catalog.ErrProtocol)

	_, err = readers.ReadFooter(context.Background(), "memory://demo/x.parquet")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
