package minio

import (
	"context"

	"github.com/distcol/mrengine/objectstore"
)

func withRetryKey(ctx context.Context, key, op string, fn func() error) error {
	err := objectstore.Retry(ctx, fn)
	if err != nil {
		return &objectstore.ErrIO{Op: op, Key: key, Cause: err}
	}
	return nil
}

func unwrapIO(err error) error {
	if ioErr, ok := err.(*objectstore.ErrIO); ok {
		return ioErr.Cause
	}
	return err
}
