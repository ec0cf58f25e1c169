package types

import "errors"

// Error taxonomy of the scanning pipeline. Everything here is recoverable at
// some enclosing level: a bad unit is skipped and the larger scan continues.
var (
	// ErrProfileNotFound reports that a hypothesized storage root does not
	// exist or is not a directory. The root is skipped.
	ErrProfileNotFound = errors.New("profile storage root not found")

	// ErrSegmentTruncated reports a segment whose final record declares more
	// payload than the file holds, or whose header is structurally invalid.
	// Records read before the damage remain valid.
	ErrSegmentTruncated = errors.New("log segment truncated")

	// ErrCorruptBlock reports a payload that a recognized codec failed to
	// decode. The record is skipped; the segment scan continues.
	ErrCorruptBlock = errors.New("corrupt compressed block")

	// ErrUnsupportedCodec reports a compression tag the decoder does not
	// know. The caller falls back to scanning the raw bytes.
	ErrUnsupportedCodec = errors.New("unsupported compression codec")

	// ErrFilesystemUnreadable reports that a root could not be read at all.
	// Fatal for that root only, never for the whole run.
	ErrFilesystemUnreadable = errors.New("filesystem unreadable")
)
