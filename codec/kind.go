// Package codec carries the compression applied to chunk payloads
// (Kind/Encode/Decode), the only wire encoding this core defines.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind identifies the compression applied to a chunk's bytes. A ChunkView
// carries a Kind tag so map() can transparently decompress a chunk
// regardless of how its bytes were stored: file-backed chunks are always
// Raw, while object-store-backed chunks may be compressed on write
// (mirroring PersistS3's packed ".hex" format).
type Kind byte

const (
	// Raw means the chunk payload is stored uncompressed.
	Raw Kind = 0
	// LZ4 means the payload was compressed with github.com/pierrec/lz4.
	LZ4 Kind = 1
	// Zstd means the payload was compressed with
	// github.com/klauspost/compress/zstd.
	Zstd Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec.Kind(%d)", byte(k))
	}
}

// EncodeChunk compresses data per kind. Raw returns data unchanged.
func EncodeChunk(kind Kind, data []byte) ([]byte, error) {
	switch kind {
	case Raw:
		return data, nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("codec: lz4 encode: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("codec: lz4 encode: %w", err)
		}
		return buf.Bytes(), nil
	case Zstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd encode: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("codec: unknown kind %v", kind)
	}
}

// DecodeChunk decompresses data per kind. Raw returns data unchanged.
func DecodeChunk(kind Kind, data []byte) ([]byte, error) {
	switch kind {
	case Raw:
		return data, nil
	case LZ4:
		r := lz4.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("codec: lz4 decode: %w", err)
		}
		return out, nil
	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decode: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unknown kind %v", kind)
	}
}
