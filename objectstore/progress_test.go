package objectstore

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestProgressReaderReportsCumulativeBytes(t *testing.T) {
	data := []byte("hello world")
	var last int64
	r := NewProgressReader(bytes.NewReader(data), func(n int64) { last = n })

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
	if last != int64(len(data)) {
		t.Errorf("last progress = %d, want %d", last, len(data))
	}
}

// TestRetryingRangeReaderReopensOnDroppedStream is the S6 regression test:
// a streaming read whose underlying range request drops mid-stream (an
// EOF where more data was expected) must transparently reopen at the
// updated offset rather than failing the read, and the progress callback
// must still see a final cumulative total equal to the full payload
// length once the read completes.
func TestRetryingRangeReaderReopensOnDroppedStream(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefghij"), 5)

	var opens int
	open := func(_ context.Context, off, length int64) (io.ReadCloser, error) {
		opens++
		end := int64(len(payload))
		if length > 0 && off+length < end {
			end = off + length
		}
		chunk := payload[off:end]
		if opens == 1 {
			return &flakyReader{r: bytes.NewReader(chunk), limit: 5}, nil
		}
		return io.NopCloser(bytes.NewReader(chunk)), nil
	}

	var total int64
	progress := func(n int64) { total = n }

	rc := NewRetryingRangeReader(context.Background(), 0, int64(len(payload)), progress, open)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
	if total != int64(len(payload)) {
		t.Errorf("final progress total = %d, want %d", total, len(payload))
	}
	if opens < 2 {
		t.Errorf("expected a reopen after the dropped stream, opens = %d", opens)
	}
}

// flakyReader returns io.ErrUnexpectedEOF once limit bytes have been
// read, simulating a connection dropped mid-range-request.
type flakyReader struct {
	r     *bytes.Reader
	limit int
	read  int
}

func (f *flakyReader) Read(p []byte) (int, error) {
	if f.read >= f.limit {
		return 0, io.ErrUnexpectedEOF
	}
	if f.read+len(p) > f.limit {
		p = p[:f.limit-f.read]
	}
	n, err := f.r.Read(p)
	f.read += n
	return n, err
}

func (f *flakyReader) Close() error { return nil }
