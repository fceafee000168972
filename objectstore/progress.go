package objectstore

import (
	"context"
	"io"
	"time"
)

// ProgressFunc is invoked with the number of bytes transferred so far,
// for streaming reads/writes that want to report progress (spec.md
// §4.C "progress-callback-aware streaming"). n is cumulative, not a
// delta.
type ProgressFunc func(n int64)

// progressReader wraps an io.Reader, invoking fn with the cumulative
// byte count read so far after every Read.
type progressReader struct {
	r    io.Reader
	fn   ProgressFunc
	read int64
}

// NewProgressReader wraps r so every Read reports cumulative progress
// through fn. A nil fn makes this a no-op passthrough.
func NewProgressReader(r io.Reader, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, fn: fn}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read)
	}
	return n, err
}

// ProgressReader is implemented by Blobs that can reopen their
// underlying ranged request transparently, so RangeReaderWithProgress
// can hand back a streaming reader that survives a dropped connection
// mid-read rather than failing the whole fetch (spec.md §4.C: "re-open
// the underlying range request transparently on each retry... propagate
// the offset across reopenings"). s3.Store and minio.Store's Blobs both
// implement it; Blobs that don't (local/in-memory backends, where a
// dropped connection can't happen) are served by RangeReaderWithProgress's
// plain-ReadRange fallback instead.
type ProgressReader interface {
	ReadRangeProgress(ctx context.Context, off, length int64, progress ProgressFunc) (io.ReadCloser, error)
}

// RangeReaderWithProgress opens a streaming read of blob[off:off+length)
// that reports the cumulative byte count read so far through progress
// after every successful Read (spec.md §4.C, testable scenario S6). If
// blob implements ProgressReader, its reopen-on-retry implementation is
// used; otherwise this wraps a single ReadRange call with
// NewProgressReader, with no retry-and-reopen support, since a Blob
// that doesn't implement ProgressReader has no way to reopen a dropped
// stream transparently.
func RangeReaderWithProgress(ctx context.Context, blob Blob, off, length int64, progress ProgressFunc) (io.ReadCloser, error) {
	if pr, ok := blob.(ProgressReader); ok {
		return pr.ReadRangeProgress(ctx, off, length, progress)
	}
	rc, err := blob.ReadRange(ctx, off, length)
	if err != nil {
		return nil, err
	}
	return &readCloser{Reader: NewProgressReader(rc, progress), Closer: rc}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// RangeOpener issues exactly one ranged request for [off, off+length)
// (length <= 0 meaning "to the end"), with no retry of its own —
// NewRetryingRangeReader supplies the retry-and-reopen loop around it.
// s3.blob and minio.blob's unexported openRange methods satisfy this.
type RangeOpener func(ctx context.Context, off, length int64) (io.ReadCloser, error)

// NewRetryingRangeReader returns a streaming reader over [off,
// off+length) that calls open again, at an updated offset, on any
// retriable error (mid-stream or on open itself), up to MaxRetries
// times, and reports the cumulative byte count read so far through
// progress after every successful Read. This is the reopen-on-retry
// mechanism ProgressReader implementations build ReadRangeProgress on.
func NewRetryingRangeReader(ctx context.Context, off, length int64, progress ProgressFunc, open RangeOpener) io.ReadCloser {
	return &retryingRangeReader{ctx: ctx, off: off, length: length, open: open, pr: &progressReader{fn: progress}}
}

type retryingRangeReader struct {
	ctx    context.Context
	off    int64
	length int64
	open   RangeOpener
	pr     *progressReader
}

func (r *retryingRangeReader) Read(p []byte) (int, error) {
	for attempt := 0; ; attempt++ {
		if r.pr.r == nil {
			body, err := r.open(r.ctx, r.off, r.length)
			if err != nil {
				if attempt >= MaxRetries || !retriable(err) {
					return 0, err
				}
				if !r.backoff(err, attempt) {
					return 0, r.ctx.Err()
				}
				continue
			}
			r.pr.r = body
		}

		n, err := r.pr.Read(p)
		if n > 0 {
			r.off += int64(n)
			if r.length > 0 {
				r.length -= int64(n)
			}
		}
		switch err {
		case nil, io.EOF:
			return n, err
		default:
			r.closeCurrent()
			if n > 0 {
				// Hand the caller what was read before deciding whether
				// to reopen; the next Read call resumes from r.off.
				return n, nil
			}
			if attempt >= MaxRetries || !retriable(err) {
				return n, err
			}
			if !r.backoff(err, attempt) {
				return n, r.ctx.Err()
			}
		}
	}
}

func (r *retryingRangeReader) backoff(err error, attempt int) bool {
	select {
	case <-time.After(retryDelay(err, attempt)):
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *retryingRangeReader) closeCurrent() {
	if c, ok := r.pr.r.(io.Closer); ok && c != nil {
		c.Close()
	}
	r.pr.r = nil
}

func (r *retryingRangeReader) Close() error {
	r.closeCurrent()
	return nil
}
