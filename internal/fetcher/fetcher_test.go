package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belegwerk/belegscan/internal/config"
)

func testFetchConfig(dir string) config.FetchConfig {
	return config.FetchConfig{
		Dir:           dir,
		Concurrency:   2,
		RatePerSecond: 100,
		Retries:       1,
		TimeoutSecs:   5,
	}
}

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "standard ftp url",
			url:      "ftp://ftp.example.com/belege/rechnung.pdf",
			wantHost: "ftp.example.com:21",
			wantPath: "/belege/rechnung.pdf",
		},
		{
			name:     "ftp url with port",
			url:      "ftp://ftp.example.com:2121/belege/rechnung.pdf",
			wantHost: "ftp.example.com:2121",
			wantPath: "/belege/rechnung.pdf",
		},
		{
			name:     "directory url",
			url:      "ftp://ftp.example.com/belege/2024",
			wantHost: "ftp.example.com:21",
			wantPath: "/belege/2024",
		},
		{
			name:    "http scheme rejected",
			url:     "http://example.com/rechnung.pdf",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://ftp.example.com",
			wantErr: true,
		},
		{
			name:    "invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcher_DefaultTimeout(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
}

func TestHTTPFetcher_DownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("%PDF-1.4 content")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{RatePerSec: 100})
	path := filepath.Join(t.TempDir(), "out.pdf")
	n, err := f.DownloadToFile(context.Background(), srv.URL+"/rechnung.pdf", path)
	require.NoError(t, err)
	assert.Equal(t, int64(16), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3, RatePerSec: 100})
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()
	assert.Equal(t, int64(2), calls.Load())
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 1, RatePerSec: 100})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestService_Fetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("%PDF-1.4")) //nolint:errcheck
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewService(testFetchConfig(dir))

	n, err := s.Fetch(context.Background(), srv.URL+"/belege/mai.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(dir, "mai.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	// No stray partial files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestService_Fetch_SkipsExisting(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte("%PDF-1.4")) //nolint:errcheck
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mai.pdf"), []byte("%PDF-1.4"), 0o644))

	s := NewService(testFetchConfig(dir))
	n, err := s.Fetch(context.Background(), srv.URL+"/belege/mai.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(0), calls.Load())
}

func TestService_Fetch_HTTPManifest(t *testing.T) {
	var baseURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/belege/list.txt":
			fmt.Fprintf(w, "# inbox\n%s/belege/a.pdf\n\n%s/belege/b.pdf\n", baseURL, baseURL)
		default:
			w.Write([]byte("%PDF-1.4")) //nolint:errcheck
		}
	}))
	defer srv.Close()
	baseURL = srv.URL

	dir := t.TempDir()
	s := NewService(testFetchConfig(dir))

	// A non-.pdf http URL is a manifest: each listed entry is downloaded,
	// the manifest itself is not.
	n, err := s.Fetch(context.Background(), srv.URL+"/belege/list.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected %s to be downloaded", name)
	}
	_, err = os.Stat(filepath.Join(dir, "list.txt"))
	assert.True(t, os.IsNotExist(err), "manifest must not land in the inbox")
}

func TestService_Fetch_HTTPManifest_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# nothing here\n\n")) //nolint:errcheck
	}))
	defer srv.Close()

	s := NewService(testFetchConfig(t.TempDir()))
	_, err := s.Fetch(context.Background(), srv.URL+"/list.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lists no urls")
}

func TestService_Fetch_UnsupportedScheme(t *testing.T) {
	s := NewService(testFetchConfig(t.TempDir()))
	_, err := s.Fetch(context.Background(), "gopher://example.com/rechnung.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported scheme "gopher"`)
}

func TestService_FetchManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("%PDF-1.4")) //nolint:errcheck
	}))
	defer srv.Close()

	dir := t.TempDir()
	manifest := filepath.Join(dir, "urls.txt")
	content := "# invoices\n" + srv.URL + "/a.pdf\n\n" + srv.URL + "/missing.pdf\n"
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0o644))

	s := NewService(testFetchConfig(filepath.Join(dir, "out")))
	n, err := s.FetchManifest(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(dir, "out", "a.pdf"))
	require.NoError(t, err)
}

func TestService_FetchManifest_Empty(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "urls.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("# nothing here\n\n"), 0o644))

	s := NewService(testFetchConfig(dir))
	_, err := s.FetchManifest(context.Background(), manifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lists no urls")
}

func TestReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# comment\nhttp://a/x.pdf\n\n  http://b/y.pdf  \n# trailing\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	urls, err := readManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a/x.pdf", "http://b/y.pdf"}, urls)
}
