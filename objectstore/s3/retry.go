package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/distcol/mrengine/objectstore"
)

func withRetryKey(ctx context.Context, key, op string, fn func() error) error {
	err := objectstore.Retry(ctx, fn)
	if err != nil {
		return &objectstore.ErrIO{Op: op, Key: key, Cause: err}
	}
	return nil
}

func bytesReader(data []byte) io.Reader { return bytes.NewReader(data) }
