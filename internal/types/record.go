// Package types defines the on-disk structures of LevelDB-style write-ahead
// log segments as written by Chromium extension storage, together with the
// error taxonomy shared by the scanning pipeline.
package types

// A log segment is a sequence of fixed-size blocks; records never span a
// block boundary, so an entry that does not fit is split into fragments.
const (
	// BlockSize is the fixed size of one log block.
	BlockSize = 32 * 1024

	// HeaderSize is the size of the per-record header:
	// checksum uint32 | length uint16 | type uint8 | codec uint8,
	// all little-endian.
	HeaderSize = 8

	// MaxPayloadSize is the largest payload a single record can carry.
	MaxPayloadSize = BlockSize - HeaderSize
)

// RecordType tags a physical record as a complete entry or a fragment of one.
type RecordType uint8

const (
	// RecordFull carries an entire logical entry.
	RecordFull RecordType = 1
	// RecordFirst is the opening fragment of a split entry.
	RecordFirst RecordType = 2
	// RecordMiddle is an interior fragment.
	RecordMiddle RecordType = 3
	// RecordLast closes a split entry.
	RecordLast RecordType = 4
)

// Validate checks if the record type is one the format defines.
func (t RecordType) Validate() bool {
	return t >= RecordFull && t <= RecordLast
}

// String returns the format's name for the record type.
func (t RecordType) String() string {
	switch t {
	case RecordFull:
		return "FULL"
	case RecordFirst:
		return "FIRST"
	case RecordMiddle:
		return "MIDDLE"
	case RecordLast:
		return "LAST"
	default:
		return "UNKNOWN"
	}
}

// CodecTag identifies the block compression applied to a record payload.
type CodecTag uint8

const (
	// CodecNone marks an uncompressed payload.
	CodecNone CodecTag = 0
	// CodecSnappy marks a raw snappy block.
	CodecSnappy CodecTag = 1
	// CodecZstd marks a zstandard block.
	CodecZstd CodecTag = 2
)

// String returns the codec name.
func (c CodecTag) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// PhysicalRecord is the smallest on-disk unit of a log segment: one header
// plus its payload, as read from a block.
type PhysicalRecord struct {
	// Type tags the record as FULL or a FIRST/MIDDLE/LAST fragment.
	Type RecordType
	// Codec tags the payload compression.
	Codec CodecTag
	// Checksum is the stored masked CRC32-C of type, codec and payload.
	Checksum uint32
	// Payload is the raw (still compressed) record body.
	Payload []byte
	// Offset is the record's byte position within its segment file.
	Offset int64
	// LowConfidence is set when the stored checksum does not match the
	// computed one. The record is kept; damaged payloads are the point.
	LowConfidence bool
}

// LogicalEntry is one reassembled key/value payload: a lone FULL record, or
// the concatenation of a FIRST..LAST fragment run in file order.
type LogicalEntry struct {
	// Payload is the decoded entry body.
	Payload []byte
	// Offset is the file offset of the first contributing record.
	Offset int64
	// Fragments counts the physical records that contributed.
	Fragments int
	// LowConfidence is set when any contributing record failed its checksum.
	LowConfidence bool
}
