package wal

import "hash/crc32"

// The log format stores CRC32-Castagnoli checksums in masked form so that a
// checksum of data that itself embeds checksums stays well distributed.
const crcMaskDelta = 0xa282ead8

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// ChecksumRecord computes the masked CRC32-C over a record's type byte,
// codec byte and payload, matching what the writer stores in the header.
func ChecksumRecord(typ, codec byte, payload []byte) uint32 {
	crc := crc32.Update(0, castagnoli, []byte{typ, codec})
	crc = crc32.Update(crc, castagnoli, payload)
	return mask(crc)
}

// ValidateRecord returns true if the stored checksum matches the computed one.
func ValidateRecord(typ, codec byte, payload []byte, stored uint32) bool {
	return ChecksumRecord(typ, codec, payload) == stored
}

// mask rotates the CRC right by 15 bits and adds a constant.
func mask(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + crcMaskDelta
}

// unmask reverses mask.
func unmask(masked uint32) uint32 {
	crc := masked - crcMaskDelta
	return (crc >> 17) | (crc << 15)
}
