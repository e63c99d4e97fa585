package source

import (
	"context"
	"io"
	"os"
)

// File reads the dataset from the local filesystem.
type File struct {
	Path string
}

// Open opens the file. The context is only checked before opening.
func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(f.Path)
}

func (f File) String() string { return f.Path }
