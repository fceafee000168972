package objectstore

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// MaxRetries bounds how many times Retry re-attempts a failed
// operation before giving up (spec.md §4.C retry policy).
const MaxRetries = 3

// eofBackoff is the fixed delay after an EOF or timeout, distinct from
// the exponential backoff used for other I/O errors — mirrors
// PersistS3's split retry policy (a dropped connection mid-stream is
// expected to clear quickly; other I/O failures back off harder).
const eofBackoff = 500 * time.Millisecond

// Retry runs op up to MaxRetries+1 times, retrying on EOF/timeout with
// a fixed backoff and on any other error with exponential backoff
// (256ms * 2^attempt), honoring ctx cancellation between attempts. s3
// and minio wrap every network call with it.
func Retry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(lastErr, attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retriable(err) {
			return err
		}
	}
	return lastErr
}

func retryDelay(err error, attempt int) time.Duration {
	if isEOFOrTimeout(err) {
		return eofBackoff
	}
	return 256 * time.Millisecond * time.Duration(1<<attempt)
}

func retriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func isEOFOrTimeout(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
