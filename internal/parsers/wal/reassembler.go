package wal

import (
	"bytes"

	"github.com/carvetools/vaultcarve/internal/types"
)

// Reassembler rebuilds logical entries from the physical record stream of
// one segment. The format does not interleave fragmented entries, so a
// single accumulation slot suffices: Idle until a FIRST fragment arrives,
// Accumulating until the matching LAST.
//
// Damage is absorbed rather than reported: orphan MIDDLE/LAST fragments are
// dropped and counted, and a FIRST arriving mid-accumulation discards the
// incomplete buffer on the assumption the writer abandoned the prior entry
// (compaction does this). Lossy by intent.
type Reassembler struct {
	buf           bytes.Buffer
	accumulating  bool
	startOffset   int64
	fragments     int
	lowConfidence bool

	orphans   int
	discarded int
}

// NewReassembler returns a reassembler in the Idle state.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Feed consumes one physical record whose payload has already been decoded.
// It returns a completed logical entry and true when the record finishes
// one, and nil and false otherwise. Feed never fails.
func (a *Reassembler) Feed(rec *types.PhysicalRecord, payload []byte) (*types.LogicalEntry, bool) {
	switch rec.Type {
	case types.RecordFull:
		if a.accumulating {
			// A FULL record mid-accumulation means the open entry was
			// abandoned by the writer.
			a.reset()
			a.discarded++
		}
		return &types.LogicalEntry{
			Payload:       payload,
			Offset:        rec.Offset,
			Fragments:     1,
			LowConfidence: rec.LowConfidence,
		}, true

	case types.RecordFirst:
		if a.accumulating {
			a.discarded++
		}
		a.reset()
		a.accumulating = true
		a.startOffset = rec.Offset
		a.buf.Write(payload)
		a.fragments = 1
		a.lowConfidence = rec.LowConfidence
		return nil, false

	case types.RecordMiddle:
		if !a.accumulating {
			a.orphans++
			return nil, false
		}
		a.buf.Write(payload)
		a.fragments++
		a.lowConfidence = a.lowConfidence || rec.LowConfidence
		return nil, false

	case types.RecordLast:
		if !a.accumulating {
			a.orphans++
			return nil, false
		}
		a.buf.Write(payload)
		entry := &types.LogicalEntry{
			Payload:       append([]byte(nil), a.buf.Bytes()...),
			Offset:        a.startOffset,
			Fragments:     a.fragments + 1,
			LowConfidence: a.lowConfidence || rec.LowConfidence,
		}
		a.reset()
		return entry, true
	}

	return nil, false
}

// Orphans returns the count of MIDDLE/LAST fragments seen with no open
// accumulation.
func (a *Reassembler) Orphans() int {
	return a.orphans
}

// Discarded returns the count of incomplete entries abandoned when a new
// FIRST or FULL record arrived mid-accumulation.
func (a *Reassembler) Discarded() int {
	return a.discarded
}

// Pending reports whether an accumulation is open. A segment ending with a
// pending accumulation simply loses that entry.
func (a *Reassembler) Pending() bool {
	return a.accumulating
}

func (a *Reassembler) reset() {
	a.buf.Reset()
	a.accumulating = false
	a.startOffset = 0
	a.fragments = 0
	a.lowConfidence = false
}
