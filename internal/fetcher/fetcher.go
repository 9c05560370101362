package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/belegwerk/belegscan/internal/config"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Service downloads remote invoice documents into a local directory.
type Service struct {
	cfg  config.FetchConfig
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// NewService creates a Service from config.
func NewService(cfg config.FetchConfig) *Service {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	return &Service{
		cfg: cfg,
		http: NewHTTPFetcher(HTTPOptions{
			Timeout:    timeout,
			MaxRetries: cfg.Retries,
			RatePerSec: cfg.RatePerSecond,
		}),
		ftp: NewFTPFetcher(FTPOptions{Timeout: timeout}),
	}
}

// Fetch downloads source into the configured directory and returns the
// number of files written. A URL naming a .pdf downloads that file. Any
// other ftp URL is treated as a directory and its PDF files are
// mirrored; any other http(s) URL is fetched and parsed as a manifest
// listing one URL per line.
func (s *Service) Fetch(ctx context.Context, source string) (int, error) {
	u, err := url.Parse(source)
	if err != nil {
		return 0, eris.Wrapf(err, "fetch: parse url %s", source)
	}

	switch u.Scheme {
	case "http", "https":
		if strings.EqualFold(path.Ext(u.Path), ".pdf") {
			return s.fetchAll(ctx, []string{source})
		}
		urls, err := s.remoteManifest(ctx, source)
		if err != nil {
			return 0, err
		}
		return s.fetchAll(ctx, urls)
	case "ftp":
		if strings.EqualFold(path.Ext(u.Path), ".pdf") {
			return s.fetchAll(ctx, []string{source})
		}
		names, err := s.ftp.ListPDFNames(ctx, source)
		if err != nil {
			return 0, err
		}
		if len(names) == 0 {
			return 0, eris.Errorf("fetch: no PDF files at %s", source)
		}
		base := strings.TrimSuffix(source, "/")
		urls := make([]string, len(names))
		for i, name := range names {
			urls[i] = base + "/" + name
		}
		return s.fetchAll(ctx, urls)
	default:
		return 0, eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
}

// FetchManifest downloads every URL listed in a manifest file, one URL
// per line with # comments.
func (s *Service) FetchManifest(ctx context.Context, manifestPath string) (int, error) {
	urls, err := readManifest(manifestPath)
	if err != nil {
		return 0, err
	}
	if len(urls) == 0 {
		return 0, eris.Errorf("fetch: manifest %s lists no urls", manifestPath)
	}
	return s.fetchAll(ctx, urls)
}

func (s *Service) fetchAll(ctx context.Context, urls []string) (int, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return 0, eris.Wrapf(err, "fetch: create dir %s", s.cfg.Dir)
	}

	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("fetching",
		zap.Int("urls", len(urls)),
		zap.String("dir", s.cfg.Dir),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var downloaded, skipped, failed atomic.Int64

	for _, rawURL := range urls {
		rawURL := rawURL
		g.Go(func() error {
			switch err := s.fetchOne(gctx, rawURL); {
			case err == nil:
				downloaded.Add(1)
			case eris.Is(err, errAlreadyPresent):
				skipped.Add(1)
			default:
				failed.Add(1)
				zap.L().Warn("download failed", zap.String("url", rawURL), zap.Error(err))
			}
			return nil // don't abort the batch on individual failure
		})
	}
	if err := g.Wait(); err != nil {
		return int(downloaded.Load()), eris.Wrap(err, "fetch: batch")
	}

	zap.L().Info("fetch complete",
		zap.Int64("downloaded", downloaded.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
	)

	if downloaded.Load() == 0 && failed.Load() > 0 {
		return 0, eris.New("fetch: all downloads failed")
	}
	return int(downloaded.Load()), nil
}

var errAlreadyPresent = eris.New("fetch: file already present")

// fetchOne downloads a single URL into the target directory, writing to
// a .part file first so an interrupted download never looks like a PDF.
func (s *Service) fetchOne(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return eris.Errorf("fetch: cannot derive file name from %s", rawURL)
	}
	dest := filepath.Join(s.cfg.Dir, name)

	if _, err := os.Stat(dest); err == nil {
		zap.L().Debug("already present, skipping", zap.String("file", name))
		return errAlreadyPresent
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = s.http
	case "ftp":
		f = s.ftp
	default:
		return eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}

	part := dest + ".part"
	n, err := f.DownloadToFile(ctx, rawURL, part)
	if err != nil {
		os.Remove(part)
		return err
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return eris.Wrapf(err, "fetch: finalize %s", dest)
	}

	zap.L().Debug("downloaded", zap.String("file", name), zap.Int64("bytes", n))
	return nil
}

// remoteManifest downloads an HTTP-hosted manifest and parses its URLs.
// The manifest file itself never lands in the target directory.
func (s *Service) remoteManifest(ctx context.Context, rawURL string) ([]string, error) {
	body, err := s.http.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read manifest %s", rawURL)
	}

	urls := parseManifest(string(data))
	if len(urls) == 0 {
		return nil, eris.Errorf("fetch: manifest %s lists no urls", rawURL)
	}
	return urls, nil
}

// readManifest parses a local manifest file into its URLs.
func readManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read manifest %s", path)
	}
	return parseManifest(string(data)), nil
}

// parseManifest splits manifest content into URLs, one per line, with
// blank lines and # comments skipped.
func parseManifest(data string) []string {
	var urls []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}
