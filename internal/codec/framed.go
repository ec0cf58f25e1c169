package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
)

// FramedMagic is the stream-identifier chunk that opens a snappy framed
// stream ("....sNaPpY"). Firefox writes IndexedDB sidecar files in this
// framing.
var FramedMagic = []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}

const (
	chunkStreamID     = 0xff
	chunkCompressed   = 0x00
	chunkUncompressed = 0x01

	// Uncompressed chunk data is capped at 64 KiB by the framing format.
	maxChunkSize = 65536
)

// SniffFramed reports whether the buffer opens with the framed-stream magic.
func SniffFramed(head []byte) bool {
	return len(head) >= len(FramedMagic) && bytes.Equal(head[:len(FramedMagic)], FramedMagic)
}

// DecodeFramed decompresses a snappy framed stream, tolerantly: chunk
// checksums are not verified and the first structural damage ends the
// stream instead of failing it. Whatever decoded before the damage is
// returned; err is non-nil only when nothing at all could be read.
//
// The caller scans the returned bytes either way, so a half-decodable file
// still contributes.
func DecodeFramed(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	var header [4]byte

	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			// Clean EOF or a torn header both end the stream.
			break
		}
		chunkType := header[0]
		length := int(binary.LittleEndian.Uint32(header[:]) >> 8)

		switch {
		case chunkType == chunkStreamID:
			if length != 6 || skip(r, length) != nil {
				return done(&out)
			}

		case chunkType == chunkCompressed:
			if length < 4 || length > maxChunkSize+8 {
				return done(&out)
			}
			body := make([]byte, length)
			if _, err := io.ReadFull(r, body); err != nil {
				return done(&out)
			}
			// First 4 bytes are the checksum, deliberately ignored.
			decoded, err := snappy.Decode(nil, body[4:])
			if err != nil {
				return done(&out)
			}
			out.Write(decoded)

		case chunkType == chunkUncompressed:
			if length < 4 || length-4 > maxChunkSize {
				return done(&out)
			}
			body := make([]byte, length)
			if _, err := io.ReadFull(r, body); err != nil {
				return done(&out)
			}
			out.Write(body[4:])

		case chunkType >= 0x80 && chunkType <= 0xfe:
			// Padding and reserved skippable chunks.
			if skip(r, length) != nil {
				return done(&out)
			}

		default:
			// Reserved unskippable chunk: stop here, keep what we have.
			return done(&out)
		}
	}

	return done(&out)
}

func done(out *bytes.Buffer) ([]byte, error) {
	if out.Len() == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return out.Bytes(), nil
}

func skip(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}
