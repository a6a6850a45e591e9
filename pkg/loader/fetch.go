package loader

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultFetchTimeout bounds a single resource fetch. There is no
	// retry; a failed fetch is reported and the caller decides whether to
	// try again.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultUserAgent identifies the client as a browser so sites that
	// reject unidentified clients remain reachable.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Fetcher retrieves raw resource bytes over HTTP. One attempt per call.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherOption is a function that configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) FetcherOption {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewFetcher creates a Fetcher with the default timeout and user agent.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultFetchTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the URL and returns the response body together with the
// Content-Type header. Transport failures and non-2xx statuses return a
// FetchError carrying the cause.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, "", &FetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{URL: url, Err: err}
	}

	return body, resp.Header.Get("Content-Type"), nil
}
