package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// File is a filesystem-backed Source.
type File struct{ path string }

// NewFile returns a Source bound to the given filesystem path.
func NewFile(path string) *File { return &File{path: path} }

// Open opens the configured path for reading and advises the kernel that
// the file will be scanned sequentially.
//
// If ctx is already done, Open returns its error without touching the
// filesystem. Filesystem errors are wrapped with the path while remaining
// transparent to errors.Is checks (e.g. errors.Is(err, os.ErrNotExist)).
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	adviseSequential(fh)
	return fh, nil
}
