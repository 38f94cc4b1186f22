package httpds

import (
	"context"
	"fmt"
	"io"

	"energyeda/pkg/records"
)

// URL is a data source backed by one HTTP(S) download.
type URL struct {
	client *Client
	url    string
}

// NewURL returns a source that fetches url with c.
func NewURL(c *Client, url string) *URL { return &URL{client: c, url: url} }

// Location returns the configured URL.
func (u *URL) Location() string { return u.url }

// Open downloads the export. Transport failures and non-2xx responses are
// reported as *records.IOError naming the URL. Context cancellation is
// returned as is.
func (u *URL) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := u.client.Get(ctx, u.url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &records.IOError{Path: u.url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &records.IOError{Path: u.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return resp.Body, nil
}
