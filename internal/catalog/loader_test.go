package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `{"commands": {"A": {"method": "get", "meta": {"title": "A", "domain": {"id": "d", "name": "D"}}}}}`

func TestHTTPLoader_LoadOverHTTP(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(minimalCatalog))
	}))
	defer srv.Close()

	loader := NewHTTPLoader(LoaderConfig{UserAgent: "apidocs-test"}, nil)
	cat, err := loader.Load(context.Background(), srv.URL+"/commands/")
	require.NoError(t, err)
	require.Len(t, cat.Commands, 1)
	assert.Equal(t, "A", cat.Commands[0].Name)
	assert.Equal(t, "apidocs-test", userAgent)
}

func TestHTTPLoader_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPLoader(DefaultLoaderConfig(), nil).Load(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URI)
}

func TestHTTPLoader_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPLoader(DefaultLoaderConfig(), nil).Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestHTTPLoader_PayloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalCatalog))
	}))
	defer srv.Close()

	loader := NewHTTPLoader(LoaderConfig{MaxBytes: 10}, nil)
	_, err := loader.Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestHTTPLoader_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalCatalog))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPLoader(DefaultLoaderConfig(), nil).Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0644))

	loader := NewHTTPLoader(DefaultLoaderConfig(), nil)

	cat, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, cat.Commands, 1)

	cat, err = loader.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Len(t, cat.Commands, 1)
}

func TestHTTPLoader_MissingFile(t *testing.T) {
	_, err := NewHTTPLoader(DefaultLoaderConfig(), nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPLoader_UnsupportedScheme(t *testing.T) {
	_, err := NewHTTPLoader(DefaultLoaderConfig(), nil).Load(context.Background(), "ftp://example.com/catalog.json")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
		ok       bool
	}{
		{"", "", false},
		{"catalog.json", "catalog.json", true},
		{"/tmp/catalog.json", "/tmp/catalog.json", true},
		{"file:///tmp/catalog.json", "/tmp/catalog.json", true},
		{"http://x/api", "", false},
		{"https://x/api", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			path, ok := FilePath(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestLoaderFunc(t *testing.T) {
	want := &Catalog{}
	var loader Loader = LoaderFunc(func(ctx context.Context, uri string) (*Catalog, error) {
		assert.Equal(t, "x", uri)
		return want, nil
	})

	got, err := loader.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestHTTPLoader_FilesDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0644))

	cfg := DefaultLoaderConfig()
	cfg.AllowFiles = false
	loader := NewHTTPLoader(cfg, nil)

	for _, uri := range []string{path, "file://" + path} {
		t.Run(uri, func(t *testing.T) {
			cat, err := loader.Load(context.Background(), uri)
			assert.Nil(t, cat)
			assert.ErrorIs(t, err, ErrUnsupportedScheme)
		})
	}
}

func TestHTTPLoader_AllowedHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalCatalog))
	}))
	defer srv.Close()

	allowed := NewHTTPLoader(LoaderConfig{AllowedHosts: []string{"127.0.0.1"}}, nil)
	_, err := allowed.Load(context.Background(), srv.URL)
	require.NoError(t, err)

	denied := NewHTTPLoader(LoaderConfig{AllowedHosts: []string{"docs.example.com"}}, nil)
	_, err = denied.Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}

func TestHTTPLoader_RedirectOutsideAllowedHosts(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(minimalCatalog))
	}))
	defer internal.Close()

	// localhost and 127.0.0.1 are different hosts to the allow-list
	redirectTo := strings.Replace(internal.URL, "127.0.0.1", "localhost", 1)
	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, redirectTo, http.StatusFound)
	}))
	defer front.Close()

	loader := NewHTTPLoader(LoaderConfig{AllowedHosts: []string{"127.0.0.1"}}, nil)
	_, err := loader.Load(context.Background(), front.URL)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}
