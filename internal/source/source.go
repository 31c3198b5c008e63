// Package source abstracts where lexicon bytes come from. A Source yields a
// readable stream; callers own closing it. Two implementations exist: local
// files and HTTP endpoints.
package source

import (
	"context"
	"io"
)

// Source opens a lexicon input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
