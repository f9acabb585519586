// Package compress provides the payload compression codec used when a
// client requests compressed uploads. Compressed payloads are stored
// as raw DEFLATE streams.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultLevel is the library default DEFLATE compression level.
const DefaultLevel = flate.DefaultCompression

// Codec compresses and decompresses file payloads.
type Codec interface {
	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress returns the original payload from its compressed form.
	Decompress(data []byte) ([]byte, error)
}

// DeflateCodec implements Codec using raw DEFLATE streams.
type DeflateCodec struct {
	level int
}

// NewDeflate creates a DEFLATE codec with the default compression level.
func NewDeflate() *DeflateCodec {
	return &DeflateCodec{level: flate.DefaultCompression}
}

// NewDeflateLevel creates a DEFLATE codec with an explicit level.
// Valid levels range from flate.BestSpeed to flate.BestCompression.
func NewDeflateLevel(level int) (*DeflateCodec, error) {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, fmt.Errorf("invalid compression level %d", level)
	}
	return &DeflateCodec{level: level}, nil
}

// Compress deflates data into a new buffer.
func (c *DeflateCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a DEFLATE stream back into the original payload.
func (c *DeflateCodec) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

// Ensure DeflateCodec implements Codec.
var _ Codec = (*DeflateCodec)(nil)
