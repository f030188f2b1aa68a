package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Loader retrieves and parses a catalog. Implementations perform a single
// retrieval per call and never retry.
type Loader interface {
	Load(ctx context.Context, uri string) (*Catalog, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, uri string) (*Catalog, error)

// Load calls f(ctx, uri)
func (f LoaderFunc) Load(ctx context.Context, uri string) (*Catalog, error) {
	return f(ctx, uri)
}

// LoaderConfig holds configuration for the default loader
type LoaderConfig struct {
	// Timeout bounds a single retrieval
	Timeout time.Duration

	// MaxBytes caps the size of an accepted payload
	MaxBytes int64

	// UserAgent is sent with HTTP requests
	UserAgent string

	// Client overrides the HTTP client (optional)
	Client *http.Client

	// AllowFiles lets file:// URIs and plain paths be read from disk.
	// When false they fail with ErrUnsupportedScheme.
	AllowFiles bool

	// AllowedHosts restricts http(s) retrieval to these hosts (host or
	// host:port). Empty allows any host.
	AllowedHosts []string
}

// DefaultLoaderConfig returns the loader defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Timeout:   15 * time.Second,
		MaxBytes:  32 << 20,
		UserAgent:  "apidocs",
		AllowFiles: true,
	}
}

// HTTPLoader fetches catalogs over http(s) and from local files
type HTTPLoader struct {
	client       *http.Client
	maxBytes     int64
	userAgent    string
	allowFiles   bool
	allowedHosts []string
	logger       *zap.Logger
}

// NewHTTPLoader creates a loader. A nil logger disables logging.
func NewHTTPLoader(config LoaderConfig, logger *zap.Logger) *HTTPLoader {
	defaults := DefaultLoaderConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaults.MaxBytes
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &HTTPLoader{
		client:       client,
		maxBytes:     config.MaxBytes,
		userAgent:    config.UserAgent,
		allowFiles:   config.AllowFiles,
		allowedHosts: config.AllowedHosts,
		logger:       logger,
	}

	// Redirects must stay inside the allow-list too
	if config.Client == nil && len(config.AllowedHosts) > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			if !l.hostAllowed(req.URL) {
				return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Host)
			}
			return nil
		}
	}
	return l
}

// Load retrieves uri and parses it as a catalog
func (l *HTTPLoader) Load(ctx context.Context, uri string) (*Catalog, error) {
	started := time.Now()

	data, err := l.fetch(ctx, uri)
	if err != nil {
		l.logger.Warn("catalog fetch failed", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}

	cat, err := Parse(data)
	if err != nil {
		l.logger.Warn("catalog parse failed", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}

	l.logger.Debug("catalog loaded",
		zap.String("uri", uri),
		zap.Int("commands", len(cat.Commands)),
		zap.Int("domains", len(cat.Domains)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return cat, nil
}

func (l *HTTPLoader) fetch(ctx context.Context, uri string) ([]byte, error) {
	if path, ok := FilePath(uri); ok {
		if !l.allowFiles {
			return nil, &FetchError{URI: uri, Err: fmt.Errorf("%w: local files are disabled", ErrUnsupportedScheme)}
		}
		return l.readFile(uri, path)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{URI: uri, Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)}
	}
	if !l.hostAllowed(u) {
		return nil, &FetchError{URI: uri, Err: fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Host)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URI: uri, StatusCode: resp.StatusCode}
	}

	return l.readLimited(uri, resp.Body)
}

func (l *HTTPLoader) hostAllowed(u *url.URL) bool {
	if len(l.allowedHosts) == 0 {
		return true
	}
	for _, host := range l.allowedHosts {
		if strings.EqualFold(host, u.Host) || strings.EqualFold(host, u.Hostname()) {
			return true
		}
	}
	return false
}

func (l *HTTPLoader) readFile(uri, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	defer f.Close()

	return l.readLimited(uri, f)
}

func (l *HTTPLoader) readLimited(uri string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformedCatalog, l.maxBytes)
	}
	return data, nil
}

// FilePath reports whether uri names a local file and returns its path.
// Both file:// URIs and scheme-less paths qualify.
func FilePath(uri string) (string, bool) {
	if uri == "" {
		return "", false
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}

	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return u.Opaque, u.Opaque != ""
		}
		return u.Path, true
	case "":
		return uri, true
	default:
		// Windows drive letters parse as a one-letter scheme.
		if len(u.Scheme) == 1 {
			return uri, true
		}
		return "", false
	}
}
