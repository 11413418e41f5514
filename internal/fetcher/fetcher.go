// Package fetcher performs HTTP requests behind a permanent on-disk response cache.
package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"basler/crawler/internal/cache"
	"basler/crawler/internal/metrics"
)

// ErrFetchFailed is returned when the server answers with a non-2xx status.
var ErrFetchFailed = errors.New("fetch failed")

type Kind int

const (
	KindHTML Kind = iota // stored gzip-compressed
	KindJSON             // stored as plain JSON text
)

func (k Kind) extension() string {
	if k == KindJSON {
		return ".json"
	}
	return ".html.gz"
}

// Request identifies one fetch. Bucket selects the cache sub-directory.
type Request struct {
	Kind    Kind
	Bucket  string
	Method  string
	URL     string
	Payload map[string]any
}

type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
	FetchHTML(ctx context.Context, bucket, url string) (string, error)
	FetchJSON(ctx context.Context, bucket, url string, payload map[string]any) ([]byte, error)
}

type Config struct {
	Timeout              time.Duration
	MaxRequestsPerSecond int
	UserAgent            string
}

type CachedFetcher struct {
	httpClient *resty.Client
	store      *cache.Store
	rl         ratelimit.Limiter
}

func NewCachedFetcher(cfg Config, store *cache.Store) *CachedFetcher {
	client := resty.New().
		SetRetryCount(0).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &CachedFetcher{
		httpClient: client,
		store:      store,
		rl:         rl,
	}
}

// Fingerprint derives the cache key of a request: sha256 of the URL, plus the
// sorted-key JSON of the payload for JSON requests.
func Fingerprint(kind Kind, url string, payload map[string]any) (string, error) {
	input := url
	if kind == KindJSON {
		// encoding/json writes map keys in sorted order, nested maps included
		canonical, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize payload: %w", err)
		}
		input += string(canonical)
	}

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]), nil
}

func (f *CachedFetcher) FetchHTML(ctx context.Context, bucket, url string) (string, error) {
	body, err := f.Fetch(ctx, Request{Kind: KindHTML, Bucket: bucket, Method: http.MethodGet, URL: url})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (f *CachedFetcher) FetchJSON(ctx context.Context, bucket, url string, payload map[string]any) ([]byte, error) {
	return f.Fetch(ctx, Request{Kind: KindJSON, Bucket: bucket, Method: http.MethodGet, URL: url, Payload: payload})
}

// Fetch returns the cached body for req when present, otherwise downloads and caches it.
func (f *CachedFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	fingerprint, err := Fingerprint(req.Kind, req.URL, req.Payload)
	if err != nil {
		return nil, err
	}
	name := fingerprint + req.Kind.extension()

	cached, ok, err := f.store.Get(req.Bucket, name)
	if err != nil {
		return nil, err
	}
	if ok {
		log.Debugf("Cache hit %s for %s", fingerprint, req.URL)
		body, err := decode(req.Kind, cached)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cache entry %s: %w", fingerprint, err)
		}
		metrics.ObserveFetch(req.Bucket, "cache_hit", 0)
		return body, nil
	}

	log.Debugf("Cache miss %s, requesting %s", fingerprint, req.URL)
	body, err := f.do(ctx, req)
	if err != nil {
		metrics.ObserveFetch(req.Bucket, "failed", 0)
		return nil, err
	}
	metrics.ObserveFetch(req.Bucket, "network", len(body))

	encoded, err := encode(req.Kind, body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry %s: %w", fingerprint, err)
	}
	if err := f.store.Put(req.Bucket, name, encoded); err != nil {
		return nil, fmt.Errorf("failed to store cache entry %s: %w", fingerprint, err)
	}

	return body, nil
}

func (f *CachedFetcher) do(ctx context.Context, req Request) ([]byte, error) {
	f.rl.Take()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	r := f.httpClient.R().SetContext(ctx)
	if req.Payload != nil {
		if method == http.MethodGet {
			for key, value := range req.Payload {
				param, err := queryValue(value)
				if err != nil {
					return nil, fmt.Errorf("failed to encode query parameter %s: %w", key, err)
				}
				r.SetQueryParam(key, param)
			}
		} else {
			r.SetBody(req.Payload)
		}
	}

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL %s: %w", req.URL, err)
	}

	if !resp.IsSuccess() {
		log.Warnf("⚠️ HTTP status %d for %s", resp.StatusCode(), req.URL)
		return nil, fmt.Errorf("%w: HTTP %d for %s", ErrFetchFailed, resp.StatusCode(), req.URL)
	}

	body := resp.Bytes()
	if req.Kind == KindJSON && !json.Valid(body) {
		return nil, fmt.Errorf("response from %s is not valid JSON", req.URL)
	}

	return body, nil
}

// queryValue sends strings as they are and everything else as the JSON the fingerprint covers.
func queryValue(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Close releases the underlying HTTP client.
func (f *CachedFetcher) Close() error {
	return f.httpClient.Close()
}

func encode(kind Kind, body []byte) ([]byte, error) {
	if kind != KindHTML {
		return body, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(kind Kind, stored []byte) ([]byte, error) {
	if kind != KindHTML {
		return stored, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}
