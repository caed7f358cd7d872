// Package encoding provides the codecs run state is serialized with: plain
// JSON, and zstd-compressed JSON for storage at rest.
package encoding

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// maxDecompressedSize is the maximum amount of memory allocated by the zstd
// decoder. The limit sits far above the encoded size of a snapshot over any
// realistic entity count.
const maxDecompressedSize = 1 << 20

type EncodeDecoder[T any] interface {
	Encode(v T) ([]byte, error)
	Decode([]byte, T) error
}

type JSON[T any] struct{}

func NewJSON[T any]() *JSON[T] {
	return &JSON[T]{}
}

func (c *JSON[T]) Encode(m T) (_ []byte, _err error) {
	defer recordEncodingTime(time.Now(), attrCodecJSON, attrActionEncode, &_err)
	return json.Marshal(m)
}

func (c *JSON[T]) Decode(v []byte, t T) (_err error) {
	defer recordEncodingTime(time.Now(), attrCodecJSON, attrActionDecode, &_err)
	return json.Unmarshal(v, t)
}

type ZSTD[T any] struct {
	jsonEncoding *JSON[T]
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

func NewZSTD[T any]() (*ZSTD[T], error) {
	writer, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	reader, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecompressedSize))
	if err != nil {
		return nil, err
	}
	return &ZSTD[T]{
		jsonEncoding: &JSON[T]{},
		compressor:   writer,
		decompressor: reader,
	}, nil
}

func (c *ZSTD[T]) Encode(m T) (_ []byte, _err error) {
	defer recordEncodingTime(time.Now(), attrCodecZstd, attrActionEncode, &_err)
	jsonEncoded, err := c.jsonEncoding.Encode(m)
	if err != nil {
		return nil, err
	}
	if len(jsonEncoded) > maxDecompressedSize {
		// Error out early if the encoded value is too large to be decompressed.
		return nil, fmt.Errorf("encoded value cannot exceed maximum size: %d > %d", len(jsonEncoded), maxDecompressedSize)
	}
	compressed := c.compressor.EncodeAll(jsonEncoded, make([]byte, 0, len(jsonEncoded)))
	recordCompressionRatio(len(compressed), len(jsonEncoded))
	return compressed, nil
}

func (c *ZSTD[T]) Decode(v []byte, t T) (_err error) {
	defer recordEncodingTime(time.Now(), attrCodecZstd, attrActionDecode, &_err)
	jsonEncoded, err := c.decompressor.DecodeAll(v, make([]byte, 0, len(v)))
	if err != nil {
		return err
	}
	return c.jsonEncoding.Decode(jsonEncoded, t)
}
