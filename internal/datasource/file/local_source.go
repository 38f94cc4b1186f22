// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"io"
	"os"

	"energyeda/pkg/records"
)

// Local opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Location returns the configured path.
func (l *Local) Location() string { return l.path }

// Open opens the configured path for reading. A canceled context returns
// ctx.Err() without touching the filesystem. Filesystem failures come back
// as *records.IOError, so both errors.Is(err, records.ErrIO) and
// errors.Is(err, os.ErrNotExist) hold for a missing file.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, &records.IOError{Path: l.path, Err: err}
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &records.IOError{Path: l.path, Err: err}
	}
	if st.IsDir() {
		f.Close()
		return nil, &records.IOError{Path: l.path, Err: errIsDir}
	}
	return f, nil
}
