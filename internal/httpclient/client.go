package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/oukeidos/panetrans/internal/version"
)

const (
	// DefaultTimeout bounds a single backend call. Whole-document translation
	// runs through the model on the backend side, so this stays generous.
	DefaultTimeout = 10 * time.Minute
	// MaxResponseBytes caps JSON response bodies.
	MaxResponseBytes = 8 * 1024 * 1024
	// MaxDownloadBytes caps exported files (Word documents can be large).
	MaxDownloadBytes = 64 * 1024 * 1024
	// Transport tuning for stable, long-lived connections.
	MaxIdleConns          = 100
	MaxIdleConnsPerHost   = 20
	IdleConnTimeout       = 120 * time.Second
	TLSHandshakeTimeout   = 30 * time.Second
	ExpectContinueTimeout = 2 * time.Second
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
	overrideClient    *http.Client
)

// NewClient returns a new http.Client with the specified timeout.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// GetDefaultClient returns the shared client used when none is configured.
func GetDefaultClient() *http.Client {
	if overrideClient != nil {
		return overrideClient
	}
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(DefaultTimeout)
	})
	return defaultClient
}

// SetDefaultClientForTesting overrides the singleton client for tests.
// It returns a restore function to reset the previous client.
func SetDefaultClientForTesting(client *http.Client) func() {
	prevOverride := overrideClient
	overrideClient = client
	return func() {
		overrideClient = prevOverride
	}
}

// UserAgent identifies this client to the backend.
func UserAgent() string {
	return "panetrans/" + version.Version
}

// DoAndRead performs an HTTP request and reads at most MaxResponseBytes of the
// body. The body is always closed.
func DoAndRead(client *http.Client, req *http.Request) ([]byte, *http.Response, error) {
	return DoAndReadLimit(client, req, MaxResponseBytes)
}

// DoAndReadLimit is DoAndRead with an explicit body limit.
func DoAndReadLimit(client *http.Client, req *http.Request, limit int64) ([]byte, *http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent())
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > limit {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", limit)
	}

	limited := &io.LimitedReader{R: resp.Body, N: limit + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, resp, fmt.Errorf("response body too large (limit %d bytes)", limit)
	}

	return body, resp, nil
}
