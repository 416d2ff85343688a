// Package crawler fetches pages and drives the batch audit: an HTTP client
// for single fetches and an orchestrator that runs a URL list through a
// bounded worker pool.
package crawler

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is what a successful fetch hands to extraction.
type Response struct {
	StatusCode  int
	ContentType string
	FinalURL    string
	Body        io.ReadCloser
}

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

// NewHTTPClient builds a client with a total request timeout, a dial timeout
// and a response body size cap in bytes.
func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// Fetch retrieves rawURL. Redirects are followed; any final status outside
// 2xx is an error. The returned body is size-capped and gzip-decoded, and
// closing it closes the underlying connection.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body := &cappedBody{closer: resp.Body}
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		body.Reader = io.LimitReader(gz, h.sizeCap)
	} else {
		body.Reader = io.LimitReader(resp.Body, h.sizeCap)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Body:        body,
	}, nil
}

type cappedBody struct {
	io.Reader
	closer io.Closer
}

func (b *cappedBody) Close() error { return b.closer.Close() }
