package wal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carvetools/vaultcarve/internal/types"
)

func rec(typ types.RecordType, payload string) *types.PhysicalRecord {
	return &types.PhysicalRecord{Type: typ, Payload: []byte(payload)}
}

func feed(a *Reassembler, r *types.PhysicalRecord) (*types.LogicalEntry, bool) {
	return a.Feed(r, r.Payload)
}

func TestReassemblerFullRecord(t *testing.T) {
	a := NewReassembler()

	entry, ok := feed(a, rec(types.RecordFull, "standalone"))

	require.True(t, ok)
	assert.Equal(t, []byte("standalone"), entry.Payload)
	assert.Equal(t, 1, entry.Fragments)
}

func TestReassemblerFragmentRuns(t *testing.T) {
	// Reassembly must equal the concatenation of the fragment payloads for
	// any run length.
	tests := []struct {
		name    string
		middles int
	}{
		{name: "first and last only", middles: 0},
		{name: "one middle", middles: 1},
		{name: "many middles", middles: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewReassembler()
			var want bytes.Buffer

			_, ok := feed(a, rec(types.RecordFirst, "head|"))
			require.False(t, ok)
			want.WriteString("head|")

			for i := 0; i < tt.middles; i++ {
				_, ok = feed(a, rec(types.RecordMiddle, "mid|"))
				require.False(t, ok)
				want.WriteString("mid|")
			}

			entry, ok := feed(a, rec(types.RecordLast, "tail"))
			want.WriteString("tail")

			require.True(t, ok)
			assert.Equal(t, want.Bytes(), entry.Payload)
			assert.Equal(t, tt.middles+2, entry.Fragments)
		})
	}
}

func TestReassemblerOrphanFragmentsDropped(t *testing.T) {
	a := NewReassembler()

	_, ok := feed(a, rec(types.RecordLast, "orphan tail"))
	assert.False(t, ok)
	_, ok = feed(a, rec(types.RecordMiddle, "orphan middle"))
	assert.False(t, ok)

	assert.Equal(t, 2, a.Orphans())

	// The slot stays usable afterwards.
	entry, ok := feed(a, rec(types.RecordFull, "fine"))
	require.True(t, ok)
	assert.Equal(t, []byte("fine"), entry.Payload)
}

func TestReassemblerNewFirstDiscardsIncomplete(t *testing.T) {
	a := NewReassembler()

	_, _ = feed(a, rec(types.RecordFirst, "abandoned-"))
	_, _ = feed(a, rec(types.RecordMiddle, "entry"))

	// A fresh FIRST means the writer gave up on the open entry.
	_, ok := feed(a, rec(types.RecordFirst, "new-"))
	require.False(t, ok)
	entry, ok := feed(a, rec(types.RecordLast, "entry"))

	require.True(t, ok)
	assert.Equal(t, []byte("new-entry"), entry.Payload)
	assert.Equal(t, 1, a.Discarded())
}

func TestReassemblerFullDiscardsIncomplete(t *testing.T) {
	a := NewReassembler()

	_, _ = feed(a, rec(types.RecordFirst, "half an"))
	entry, ok := feed(a, rec(types.RecordFull, "whole"))

	require.True(t, ok)
	assert.Equal(t, []byte("whole"), entry.Payload)
	assert.Equal(t, 1, a.Discarded())
	assert.False(t, a.Pending())
}

func TestReassemblerLowConfidencePropagates(t *testing.T) {
	a := NewReassembler()

	first := rec(types.RecordFirst, "a")
	first.LowConfidence = true
	_, _ = a.Feed(first, first.Payload)

	entry, ok := feed(a, rec(types.RecordLast, "b"))

	require.True(t, ok)
	assert.True(t, entry.LowConfidence)
}
