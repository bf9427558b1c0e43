package index_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/index"
	"go.trai.ch/tandem/internal/core/domain"
)

func pin(name, version string) domain.PinnedPackage {
	return domain.PinnedPackage{Name: name, Version: domain.MustParseVersion(version)}
}

func TestDirSource_Fetch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "apilib"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apilib", "apilib-1.2.3.tar.zst"), []byte("zst"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "apilib", "apilib-1.2.4.tar.gz"), []byte("newer"), domain.FilePerm))

	src := index.NewDirSource(root)

	var buf bytes.Buffer
	name, err := src.Fetch(context.Background(), pin("apilib", "1.2.3"), &buf)
	require.NoError(t, err)
	assert.Equal(t, "apilib-1.2.3.tar.zst", name)
	assert.Equal(t, "zst", buf.String())

	_, err = src.Fetch(context.Background(), pin("apilib", "1.2.5"), &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestDirSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := index.NewDirSource(t.TempDir()).Fetch(ctx, pin("apilib", "1.0"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource_Fetch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/simple/apilib/apilib-1.2.3.tar.zst":
			_, _ = w.Write([]byte("payload"))
		case "/simple/broken/broken-1.0.tar.gz":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := index.NewHTTPSourceWithClient(srv.URL+"/simple/", 0, 1, srv.Client())

	var buf bytes.Buffer
	name, err := src.Fetch(context.Background(), pin("apilib", "1.2.3"), &buf)
	require.NoError(t, err)
	assert.Equal(t, "apilib-1.2.3.tar.zst", name)
	assert.Equal(t, "payload", buf.String())
	assert.Equal(t, int32(2), requests.Load())

	_, err = src.Fetch(context.Background(), pin("missing", "1.0"), &buf)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	_, err = src.Fetch(context.Background(), pin("broken", "1.0"), &buf)
	assert.ErrorIs(t, err, domain.ErrArtifactFetchFailed)
}

func TestHTTPSource_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src := index.NewHTTPSourceWithClient(srv.URL, 1.0/3600, 1, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx, pin("apilib", "1.0"), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactFetchFailed)
}

func TestOpener_Open(t *testing.T) {
	o := index.NewOpener()

	src, err := o.Open(domain.IndexConfig{Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &index.DirSource{}, src)

	src, err = o.Open(domain.IndexConfig{URL: "https://pkgs.example/simple", Rate: 5, Burst: 2})
	require.NoError(t, err)
	assert.IsType(t, &index.HTTPSource{}, src)

	_, err = o.Open(domain.IndexConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = o.Open(domain.IndexConfig{Path: "a", URL: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
