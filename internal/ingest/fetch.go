package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/klauspost/pgzip"

	"github.com/lox/forecastcards/internal/metrics"
	"github.com/lox/forecastcards/internal/models"
)

var ErrUnsupportedSource = errors.New("unsupported dataset source")

const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeFTP   = "ftp"
)

const defaultTimeout = 30 * time.Second

// Location identifies where a dataset lives.
type Location struct {
	Raw    string
	Scheme string
	url    *url.URL
}

// ParseLocation classifies a local path or an http(s)/ftp URL.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	}
	if !strings.Contains(s, "://") {
		return Location{Raw: s, Scheme: SchemeFile}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("parse location: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeFile:
		return Location{Raw: u.Path, Scheme: SchemeFile}, nil
	case SchemeHTTP, SchemeHTTPS, SchemeFTP:
		if u.Host == "" {
			return Location{}, fmt.Errorf("%w: %s has no host", ErrUnsupportedSource, s)
		}
		return Location{Raw: s, Scheme: strings.ToLower(u.Scheme), url: u}, nil
	default:
		return Location{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

// Remote reports whether fetching the location goes over the network.
func (l Location) Remote() bool {
	return l.Scheme != SchemeFile
}

// name is the final path element, used to pick a decoder.
func (l Location) name() string {
	if l.url != nil {
		return path.Base(l.url.Path)
	}
	return path.Base(l.Raw)
}

// StatusError is returned for a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether a later attempt could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Fetcher retrieves raw dataset bytes from a Location.
type Fetcher struct {
	client     *http.Client
	ftpTimeout time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: defaultTimeout},
		ftpTimeout: defaultTimeout,
	}
}

// Fetch reads the whole resource at loc.
func (f *Fetcher) Fetch(ctx context.Context, loc Location) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	switch loc.Scheme {
	case SchemeFile:
		body, err = os.ReadFile(loc.Raw)
	case SchemeHTTP, SchemeHTTPS:
		body, err = f.fetchHTTP(ctx, loc)
	case SchemeFTP:
		body, err = f.fetchFTP(ctx, loc)
	default:
		err = fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, loc.Scheme)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.FetchTotal.WithLabelValues(loc.Scheme, status).Inc()
	return body, err
}

func (f *Fetcher) fetchHTTP(ctx context.Context, loc Location) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.Raw, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) fetchFTP(ctx context.Context, loc Location) ([]byte, error) {
	host := loc.url.Host
	if loc.url.Port() == "" {
		host += ":21"
	}

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.ftpTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if loc.url.User != nil {
		user = loc.url.User.Username()
		if p, ok := loc.url.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(loc.url.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Decode turns fetched bytes into records, choosing the decoder from the
// location's file name: .parquet, .gz (gzip-compressed delimited text) or
// plain delimited text.
func Decode(loc Location, data []byte) ([]models.WeatherRecord, error) {
	name := strings.ToLower(loc.name())

	if strings.HasSuffix(name, ".parquet") {
		return ReadParquet(bytes.NewReader(data), int64(len(data)))
	}

	if strings.HasSuffix(name, ".gz") {
		gz, err := pgzip.NewReaderN(bytes.NewReader(data), 256*1024, runtime.NumCPU())
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		return ParseCSV(gz)
	}

	return ParseCSV(bytes.NewReader(data))
}
