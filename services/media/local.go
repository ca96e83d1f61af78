package mediasvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// LocalFileStore writes uploads under a media root on local disk and
// serves them from a base URL.
type LocalFileStore struct {
	root    string
	baseURL string
}

var _ core.FileStore = (*LocalFileStore)(nil)

func NewLocalFileStore(conf *core.Config) *LocalFileStore {
	return &LocalFileStore{root: conf.Media.Root, baseURL: strings.TrimRight(conf.Media.BaseURL, "/")}
}

func (fs *LocalFileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	filename = filepath.Base(filename) // no path traversal
	path := filepath.Join(fs.root, filename)

	if err := os.MkdirAll(fs.root, 0o755); err != nil {
		return "", errors.Wrap(err, "creating media root")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return fs.baseURL + "/" + filename, nil
}
