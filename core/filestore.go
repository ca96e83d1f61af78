package core

import (
	"context"
	"io"
)

// FileStore persists uploaded binaries and hands back a stable URL.
// The content itself is never inspected here.
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (url string, err error)
}
