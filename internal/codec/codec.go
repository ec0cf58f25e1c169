// Package codec decodes the block compression applied to record payloads.
// Identity, snappy and zstd tags are understood; anything else is reported
// as unsupported so callers can fall back to scanning the raw bytes.
package codec

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/carvetools/vaultcarve/internal/types"
)

// Decoder decodes record payloads based on their compression tag.
type Decoder struct {
	zstd *zstd.Decoder
}

// NewDecoder creates a decoder. The zstd decoder is reused across calls;
// decompression within one segment is single-threaded anyway.
func NewDecoder() *Decoder {
	zd, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(64<<20),
	)
	return &Decoder{zstd: zd}
}

// Decode returns the logical payload bytes for a record.
//
// An unknown tag fails with types.ErrUnsupportedCodec; a recognized codec
// that cannot decode its input fails with types.ErrCorruptBlock. Neither is
// fatal to the caller: unsupported payloads are scanned raw, corrupt ones
// are skipped.
func (d *Decoder) Decode(tag types.CodecTag, payload []byte) ([]byte, error) {
	switch tag {
	case types.CodecNone:
		return payload, nil

	case types.CodecSnappy:
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: snappy: %v", types.ErrCorruptBlock, err)
		}
		return decoded, nil

	case types.CodecZstd:
		decoded, err := d.zstd.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", types.ErrCorruptBlock, err)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: tag %d", types.ErrUnsupportedCodec, tag)
	}
}
