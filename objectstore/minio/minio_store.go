// Package minio implements objectstore.Store against any S3-compatible
// endpoint via minio-go, adapted from blobstore/minio/minio_store.go and
// wrapped with the package's retry policy on every read, exercised as a
// second concrete objectstore.Store backend alongside objectstore/s3.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/distcol/mrengine/config"
	"github.com/distcol/mrengine/objectstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements objectstore.Store for MinIO and other S3-compatible
// endpoints.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a MinIO-backed object store. rootPrefix is prepended
// to every key.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: rootPrefix}
}

// NewStoreFromEnv builds a MinIO-backed object store against endpoint,
// with socket/connect timeouts and max connection count taken from
// config.LoadS3 (spec.md §6).
func NewStoreFromEnv(endpoint, accessKey, secretKey, bucket, rootPrefix string, useSSL bool, optFns ...config.Option) (*Store, error) {
	tunables := config.LoadS3(optFns...)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:    useSSL,
		Transport: transportFor(tunables),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore/minio: new client: %w", err)
	}
	return NewStore(client, bucket, rootPrefix), nil
}

func transportFor(c config.S3) *http.Transport {
	dialer := &net.Dialer{}
	if c.ConnectTimeout > 0 {
		dialer.Timeout = c.ConnectTimeout
	}
	t := &http.Transport{DialContext: dialer.DialContext}
	if c.MaxHTTPConnections > 0 {
		t.MaxConnsPerHost = c.MaxHTTPConnections
	}
	return t
}

func (s *Store) Bucket() string { return s.bucket }

func (s *Store) key(name string) string { return path.Join(s.prefix, name) }

func (s *Store) URL(name string) string { return objectstore.URL(s.bucket, s.key(name)) }

func (s *Store) Open(ctx context.Context, name string) (objectstore.Blob, error) {
	key := s.key(name)

	var info minio.ObjectInfo
	err := withRetryKey(ctx, key, "open", func() error {
		i, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		info = i
		return err
	})
	if err != nil {
		errResp := minio.ToErrorResponse(unwrapIO(err))
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, objectstore.ErrNotFound
		}
		return nil, err
	}

	return objectstore.WrapHex(ctx, name, &blob{client: s.client, bucket: s.bucket, key: key, size: info.Size})
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	return withRetryKey(ctx, key, "put", func() error {
		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
		return err
	})
}

func (s *Store) Delete(ctx context.Context, name string) error {
	key := s.key(name)
	return withRetryKey(ctx, key, "delete", func() error {
		err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		if err != nil {
			errResp := minio.ToErrorResponse(err)
			if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
				return nil
			}
			return err
		}
		return nil
	})
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: fullPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// blob implements objectstore.Blob for one MinIO object.
type blob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Close() error { return nil }
func (b *blob) Size() int64  { return b.size }

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	end := off + int64(len(p)) - 1
	if end >= b.size {
		end = b.size - 1
	}

	var n int
	err := withRetryKey(ctx, b.key, "readAt", func() error {
		opts := minio.GetObjectOptions{}
		if err := opts.SetRange(off, end); err != nil {
			return err
		}
		obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
		if err != nil {
			return err
		}
		defer obj.Close()
		n, err = io.ReadFull(obj, p[:end-off+1])
		return err
	})
	return n, err
}

func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := withRetryKey(ctx, b.key, "readRange", func() error {
		rc, err := b.openRange(ctx, off, length)
		body = rc
		return err
	})
	return body, err
}

// ReadRangeProgress implements objectstore.ProgressReader: it streams
// [off, off+length) reporting cumulative bytes read through progress,
// and, unlike ReadRange, transparently reopens the ranged GET at the
// updated offset if the connection drops mid-stream (spec.md §4.C).
func (b *blob) ReadRangeProgress(ctx context.Context, off, length int64, progress objectstore.ProgressFunc) (io.ReadCloser, error) {
	return objectstore.NewRetryingRangeReader(ctx, off, length, progress, b.openRange), nil
}

// openRange issues exactly one ranged GetObject call for [off,
// off+length); length <= 0 means "to the end of the object".
func (b *blob) openRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	end := off + length - 1
	if length <= 0 || end >= b.size {
		end = b.size - 1
	}
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return nil, err
	}
	return b.client.GetObject(ctx, b.bucket, b.key, opts)
}
