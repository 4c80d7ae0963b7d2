package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps HTTP operations with the headers and limits used against the
// image-of-the-day service.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - JSON metadata retrieval
//   - Streaming image bodies for the storage layer
//
// Example usage:
//
//	client := NewClient(WithTimeout(30 * time.Second))
//
//	// Fetch archive metadata
//	body, err := client.Get(ctx, "https://www.bing.com/HPImageArchive.aspx?format=js&n=1")
//
//	// Stream an image
//	rc, size, err := client.Open(ctx, imageURL)
//	defer rc.Close()
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client, e.g. with one bound to
// an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new HTTP client.
//
// The client is configured by default with:
//   - 60 second timeout
//   - "bing-wallpaper" User-Agent header
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: "bing-wallpaper",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressReader wraps a reader to track download progress.
//
// Example:
//
//	pr := &ProgressReader{
//	    Reader: response.Body,
//	    Total:  contentLength,
//	    OnUpdate: func(read, total int64) {
//	        fmt.Printf("%d / %d bytes\n", read, total)
//	    },
//	}
//	io.Copy(file, pr)
type ProgressReader struct {
	// Reader is the underlying reader to read data from.
	Reader io.Reader

	// Total is the expected total bytes (from Content-Length header), -1 if unknown.
	Total int64

	// BytesRead is the current number of bytes read.
	BytesRead int64

	// OnUpdate is called after each Read with current progress.
	OnUpdate func(read, total int64)
}

// Read implements io.Reader, tracking progress and calling OnUpdate.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.BytesRead += int64(n)
	if n > 0 && pr.OnUpdate != nil {
		pr.OnUpdate(pr.BytesRead, pr.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// accept, when not empty, is sent as the Accept header.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, error) {
	resp, err := c.do(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Open performs a GET request and returns the response body for streaming
// along with its Content-Length (-1 when unknown). The caller must close
// the body.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	resp, err := c.do(ctx, url, "")
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d: %s", url, resp.StatusCode, resp.Status)
	}

	return resp, nil
}
