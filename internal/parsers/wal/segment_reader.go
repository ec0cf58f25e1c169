// Package wal reads LevelDB-style write-ahead log segments: fixed-size
// blocks holding checksummed, possibly fragmented physical records. The
// reader is deliberately forgiving; partially written, compacted or damaged
// segments are the expected input, not the exception.
package wal

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/carvetools/vaultcarve/internal/types"
)

// SegmentReader produces the physical records of one log segment file in
// file order. It owns the underlying file handle; Close releases it.
type SegmentReader struct {
	file *os.File
	path string
	size int64

	block    []byte // contents of the current block
	blockPos int    // read position within block
	blockOff int64  // file offset of the current block start
	nextOff  int64  // file offset of the next block to load

	truncated bool
	records   int
}

// OpenSegment opens a log segment file for reading.
func OpenSegment(path string) (*SegmentReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log segment: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat log segment: %w", err)
	}

	return &SegmentReader{
		file: file,
		path: path,
		size: info.Size(),
	}, nil
}

// Path returns the segment file path.
func (r *SegmentReader) Path() string {
	return r.path
}

// Size returns the segment file length in bytes.
func (r *SegmentReader) Size() int64 {
	return r.size
}

// Truncated reports whether the scan stopped at a damaged or incomplete
// record rather than a clean end of file.
func (r *SegmentReader) Truncated() bool {
	return r.truncated
}

// Records returns the number of records surfaced so far.
func (r *SegmentReader) Records() int {
	return r.records
}

// Next returns the next physical record, or io.EOF once the segment is
// exhausted. A structurally invalid header or a record declaring more
// payload than the file holds ends the scan cleanly: Next returns io.EOF
// and Truncated reports true. Records read before the damage stay valid.
func (r *SegmentReader) Next() (*types.PhysicalRecord, error) {
	for {
		// Fewer bytes than a header needs at the block tail form the
		// trailer; skip to the next block.
		if len(r.block)-r.blockPos < types.HeaderSize {
			if err := r.loadBlock(); err != nil {
				return nil, err
			}
		}

		header := r.block[r.blockPos : r.blockPos+types.HeaderSize]
		checksum := binary.LittleEndian.Uint32(header[0:4])
		length := int(binary.LittleEndian.Uint16(header[4:6]))
		typ := types.RecordType(header[6])
		codec := types.CodecTag(header[7])

		// An all-zero header is trailer padding, not damage.
		if checksum == 0 && length == 0 && typ == 0 {
			r.blockPos = len(r.block)
			continue
		}

		if !typ.Validate() {
			r.truncated = true
			return nil, io.EOF
		}

		payloadStart := r.blockPos + types.HeaderSize
		if length > len(r.block)-payloadStart {
			// Declared payload runs past the bytes we have: the tail of
			// the segment was never fully written. End of segment.
			r.truncated = true
			return nil, io.EOF
		}

		payload := make([]byte, length)
		copy(payload, r.block[payloadStart:payloadStart+length])

		record := &types.PhysicalRecord{
			Type:     typ,
			Codec:    codec,
			Checksum: checksum,
			Payload:  payload,
			Offset:   r.blockOff + int64(r.blockPos),
		}
		if !ValidateRecord(header[6], header[7], payload, checksum) {
			record.LowConfidence = true
		}

		r.blockPos = payloadStart + length
		r.records++
		return record, nil
	}
}

// loadBlock reads the next block from the file. The final block may be
// shorter than BlockSize. Returns io.EOF when no bytes remain.
func (r *SegmentReader) loadBlock() error {
	if r.nextOff >= r.size {
		return io.EOF
	}

	buf := make([]byte, types.BlockSize)
	n, err := r.file.ReadAt(buf, r.nextOff)
	if n == 0 {
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read log block: %w", err)
		}
		return io.EOF
	}

	r.block = buf[:n]
	r.blockPos = 0
	r.blockOff = r.nextOff
	r.nextOff += int64(n)
	return nil
}

// Close releases the segment's file handle.
func (r *SegmentReader) Close() error {
	return r.file.Close()
}
