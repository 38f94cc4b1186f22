// Package datasource opens the raw bytes of a configured source.
package datasource

import (
	"context"
	"io"
	"time"

	"energyeda/internal/config"
	"energyeda/internal/datasource/file"
	"energyeda/internal/datasource/httpds"
)

// Source opens one input. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Location() string
}

// New returns the Source implementation for s.Kind: httpds.URL for "http",
// file.Local otherwise.
func New(s config.Source) Source {
	if s.Kind == "http" {
		c := httpds.NewClient(httpds.Config{
			Timeout:            time.Duration(s.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries:         s.HTTP.MaxRetries,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
		})
		return httpds.NewURL(c, s.HTTP.URL)
	}
	return file.NewLocal(s.File.Path)
}
