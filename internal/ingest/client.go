package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ScottDudley1/demo-dashboard/internal/utils"
)

// maxBodyBytes caps a fetched CSV document.
var maxBodyBytes int64 = 64 << 20

var errBodyTooLarge = errors.New("response body too large")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Fetcher reads a CSV source: an http(s) URL through the client, anything
// else as a local file.
type Fetcher struct {
	c       HTTPClient
	backoff utils.Backoff
}

func NewFetcher(c HTTPClient, retries int) *Fetcher {
	return &Fetcher{c: c, backoff: utils.NewBackoff(100*time.Millisecond, retries)}
}

func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, &ParseError{Source: source, Err: errors.New("empty source")}
	}
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		return b, nil
	}

	var body []byte
	err := f.backoff.Do(ctx, func(int) error {
		b, err := getBody(ctx, f.c, source)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return body, nil
}

func getBody(ctx context.Context, c HTTPClient, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(bytes.TrimSpace(b)))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxBodyBytes {
		return nil, fmt.Errorf("%w: over %d bytes", errBodyTooLarge, maxBodyBytes)
	}
	return b, nil
}
