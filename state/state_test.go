package state_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cascade/bv"
	"github.com/sarchlab/cascade/state"
)

func TestWriteReadRoundTrip(t *testing.T) {
	snap := state.Snapshot{
		1: bv.New(8, bv.Unsigned, 0x42),
		2: bv.New(16, bv.Signed, 0xffff),
	}
	var buf bytes.Buffer
	require.NoError(t, state.Write(&buf, snap))

	got, err := state.Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[1].Equal(snap[1]))
	require.True(t, got[2].Equal(snap[2]))
}

func TestWriteRejectsReservedVid(t *testing.T) {
	snap := state.Snapshot{0: bv.New(1, bv.Unsigned, 0)}
	var buf bytes.Buffer
	require.Error(t, state.Write(&buf, snap))
}

func TestReadRejectsTrailingGarbage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, state.Write(&buf, state.Snapshot{}))
	buf.Write([]byte{0xff, 0xff, 0xff})

	_, err := state.Read(&buf)
	require.Error(t, err)
}

func TestReadEmptyStreamIsTerminatorOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, state.Write(&buf, state.Snapshot{}))

	got, err := state.Read(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}
