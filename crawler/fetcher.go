package crawler

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/quarrylabs/corpus/core"
)

const (
	defaultUserAgent      = "corpus-crawler/1.0"
	defaultFetchTimeout   = 30 * time.Second
	defaultMaxContentSize = 5 << 20 // 5 MiB
	maxRedirects          = 5
)

// Fetcher retrieves the raw body of a page. Implementations must be
// thread-safe; the crawler fetches pages concurrently.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches web pages over HTTP with timeouts, a redirect cap,
// and a response size limit.
type HTTPFetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher with the default timeout, user agent,
// and content size limit.
func NewHTTPFetcher() *HTTPFetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: defaultFetchTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   defaultFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent:      defaultUserAgent,
		maxContentSize: defaultMaxContentSize,
	}
}

// Fetch retrieves the body of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", core.ErrFetchFailure, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	limitReader := io.LimitReader(resp.Body, f.maxContentSize+1)
	body, err := io.ReadAll(limitReader)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", core.ErrFetchFailure, err)
	}

	if int64(len(body)) > f.maxContentSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrContentTooLarge, f.maxContentSize)
	}

	return body, nil
}
